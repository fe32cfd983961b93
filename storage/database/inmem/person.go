package inmemdb

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/person"
)

type personRepository struct {
	db *DB
}

var _ person.Repository = (*personRepository)(nil) // interface compliance check

func NewPersonRepository(db *DB) *personRepository {
	return &personRepository{db: db}
}

func (repo *personRepository) CreateTeacher(ctx context.Context, t person.Teacher) (person.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.teachers[t.UID] = &t
	return t, nil
}

func (repo *personRepository) GetTeacher(ctx context.Context, uid string) (person.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.teachers[uid]; ok {
		return *t, nil
	}
	return person.Teacher{}, person.ErrTeacherNotFound
}

func (repo *personRepository) QueryTeachers(ctx context.Context, orgID string) ([]person.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]person.Teacher, 0)
	for _, t := range repo.db.teachers {
		if t.OrgID == orgID {
			teachers = append(teachers, *t)
		}
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
	return teachers, nil
}

func (repo *personRepository) DeleteTeacher(ctx context.Context, uid string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.teachers, uid)
	return nil
}

func (repo *personRepository) CreateStudent(ctx context.Context, s person.Student) (person.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.students[s.UID] = &s
	return s, nil
}

func (repo *personRepository) GetStudent(ctx context.Context, uid string) (person.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[uid]; ok {
		return *s, nil
	}
	return person.Student{}, person.ErrStudentNotFound
}

func (repo *personRepository) QueryStudents(ctx context.Context, orgID string) ([]person.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]person.Student, 0)
	for _, s := range repo.db.students {
		if s.OrgID == orgID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *personRepository) FilterStudentsByGrade(ctx context.Context, orgID, gradeID string) ([]person.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]person.Student, 0)
	for _, s := range repo.db.students {
		if s.OrgID == orgID && s.GradeID == gradeID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *personRepository) DeleteStudent(ctx context.Context, uid string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.students, uid)
	return nil
}
