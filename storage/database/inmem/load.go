package inmemdb

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/load"
)

type loadRepository struct {
	db *DB
}

var _ load.Repository = (*loadRepository)(nil) // interface compliance check

func NewLoadRepository(db *DB) *loadRepository {
	return &loadRepository{db: db}
}

func (repo *loadRepository) CreateLoad(ctx context.Context, ld load.Load) (load.Load, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.loads[ld.ID] = &ld
	return ld, nil
}

func (repo *loadRepository) GetLoad(ctx context.Context, id string) (load.Load, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ld, ok := repo.db.loads[id]; ok {
		return *ld, nil
	}
	return load.Load{}, load.ErrNotFound
}

func (repo *loadRepository) QueryLoadsByOrg(ctx context.Context, orgID string) ([]load.Load, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	loads := make([]load.Load, 0)
	for _, ld := range repo.db.loads {
		if ld.OrgID == orgID {
			loads = append(loads, *ld)
		}
	}
	sortLoads(loads)
	return loads, nil
}

func (repo *loadRepository) QueryLoadsByTeacher(ctx context.Context, orgID, teacherUID string) ([]load.Load, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	loads := make([]load.Load, 0)
	for _, ld := range repo.db.loads {
		if ld.OrgID == orgID && ld.TeacherUID == teacherUID {
			loads = append(loads, *ld)
		}
	}
	sortLoads(loads)
	return loads, nil
}

func (repo *loadRepository) DeleteLoad(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.loads, id)
	return nil
}

func sortLoads(loads []load.Load) {
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].CreatedAt.Equal(loads[j].CreatedAt) {
			return loads[i].ID < loads[j].ID
		}
		return loads[i].CreatedAt.Before(loads[j].CreatedAt)
	})
}
