package inmemdb

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/refdata"
)

type refDataRepository struct {
	db *DB
}

var _ refdata.Repository = (*refDataRepository)(nil) // interface compliance check

func NewRefDataRepository(db *DB) *refDataRepository {
	return &refDataRepository{db: db}
}

func (repo *refDataRepository) CreateRecord(ctx context.Context, rec refdata.Record) (refdata.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *refDataRepository) GetRecord(ctx context.Context, kind refdata.Kind, id string) (refdata.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.records[id]; ok && rec.Kind == kind {
		return *rec, nil
	}
	return refdata.Record{}, refdata.ErrNotFound
}

func (repo *refDataRepository) QueryRecords(ctx context.Context, kind refdata.Kind, orgID string) ([]refdata.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]refdata.Record, 0)
	for _, rec := range repo.db.records {
		if rec.Kind == kind && rec.OrgID == orgID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs, nil
}

func (repo *refDataRepository) UpdateRecord(ctx context.Context, rec refdata.Record) (refdata.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.records[rec.ID]; !ok {
		return refdata.Record{}, refdata.ErrNotFound
	}
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *refDataRepository) DeleteRecord(ctx context.Context, kind refdata.Kind, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if rec, ok := repo.db.records[id]; ok && rec.Kind == kind {
		delete(repo.db.records, id)
	}
	return nil
}
