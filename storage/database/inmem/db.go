package inmemdb

import (
	"sync"

	"github.com/shulehub/shule/core/gradebook"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/core/refdata"
)

// DB is an in-memory stand-in for the relational store. One mutex guards
// all tables so multi-table writes stay consistent, mirroring what a
// transaction gives the real store.
type DB struct {
	mutex sync.RWMutex

	orgs       map[string]*org.Organization
	teachers   map[string]*person.Teacher
	students   map[string]*person.Student
	records    map[string]*refdata.Record
	loads      map[string]*load.Load
	activities map[string]*gradebook.Activity
	grades     map[string]*gradebook.StudentGrade

	// FailNextBatch, when set, makes the next multi-row write return this
	// error before touching anything. Tests use it to assert that cascades
	// are all-or-nothing.
	FailNextBatch error
}

func NewDB() *DB {
	return &DB{
		orgs:       make(map[string]*org.Organization),
		teachers:   make(map[string]*person.Teacher),
		students:   make(map[string]*person.Student),
		records:    make(map[string]*refdata.Record),
		loads:      make(map[string]*load.Load),
		activities: make(map[string]*gradebook.Activity),
		grades:     make(map[string]*gradebook.StudentGrade),
	}
}

func (db *DB) takeBatchFailure() error {
	err := db.FailNextBatch
	db.FailNextBatch = nil
	return err
}
