package inmemdb

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/org"
)

type orgRepository struct {
	db *DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *DB) *orgRepository {
	return &orgRepository{db: db}
}

func (repo *orgRepository) CreateOrganization(ctx context.Context, o org.Organization) (org.Organization, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.orgs[o.ID] = &o
	return o, nil
}

func (repo *orgRepository) GetOrganization(ctx context.Context, id string) (org.Organization, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if o, ok := repo.db.orgs[id]; ok {
		return *o, nil
	}
	return org.Organization{}, org.ErrNotFound
}

func (repo *orgRepository) QueryAllOrganizations(ctx context.Context) ([]org.Organization, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	orgs := make([]org.Organization, 0, len(repo.db.orgs))
	for _, o := range repo.db.orgs {
		orgs = append(orgs, *o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}

func (repo *orgRepository) UpdateOrganizationStatus(ctx context.Context, id string, status org.Status) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	o, ok := repo.db.orgs[id]
	if !ok {
		return org.ErrNotFound
	}
	o.Status = status
	return nil
}

func (repo *orgRepository) IncrementUserCount(ctx context.Context, id string, delta int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	o, ok := repo.db.orgs[id]
	if !ok {
		return org.ErrNotFound
	}
	o.UserCount += delta
	return nil
}

func (repo *orgRepository) DeleteOrganization(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.orgs, id)
	return nil
}
