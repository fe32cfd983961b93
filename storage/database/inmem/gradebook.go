package inmemdb

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/gradebook"
)

type gradebookRepository struct {
	db *DB
}

var _ gradebook.Repository = (*gradebookRepository)(nil) // interface compliance check

func NewGradebookRepository(db *DB) *gradebookRepository {
	return &gradebookRepository{db: db}
}

func (repo *gradebookRepository) CreateActivity(ctx context.Context, act gradebook.Activity) (gradebook.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.activities[act.ID] = &act
	return act, nil
}

func (repo *gradebookRepository) GetActivity(ctx context.Context, id string) (gradebook.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if act, ok := repo.db.activities[id]; ok {
		return *act, nil
	}
	return gradebook.Activity{}, gradebook.ErrActivityNotFound
}

func (repo *gradebookRepository) QueryActivitiesByLoad(ctx context.Context, loadID string) ([]gradebook.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	acts := make([]gradebook.Activity, 0)
	for _, act := range repo.db.activities {
		if act.LoadID == loadID {
			acts = append(acts, *act)
		}
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].Name < acts[j].Name })
	return acts, nil
}

func (repo *gradebookRepository) UpdateActivity(ctx context.Context, act gradebook.Activity) (gradebook.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.activities[act.ID]; !ok {
		return gradebook.Activity{}, gradebook.ErrActivityNotFound
	}
	repo.db.activities[act.ID] = &act
	return act, nil
}

func (repo *gradebookRepository) DeleteActivityWithGrades(ctx context.Context, activityID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.db.takeBatchFailure(); err != nil {
		return err // nothing touched, as a rolled-back transaction would leave it
	}

	if _, ok := repo.db.activities[activityID]; !ok {
		return gradebook.ErrActivityNotFound
	}
	delete(repo.db.activities, activityID)
	for id, sg := range repo.db.grades {
		if sg.ActivityID == activityID {
			delete(repo.db.grades, id)
		}
	}
	return nil
}

func (repo *gradebookRepository) CreateStudentGrade(ctx context.Context, sg gradebook.StudentGrade) (gradebook.StudentGrade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.grades[sg.ID] = &sg
	return sg, nil
}

func (repo *gradebookRepository) GetStudentGradeByStudentActivity(ctx context.Context, studentUID, activityID string) (gradebook.StudentGrade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sg := range repo.db.grades {
		if sg.StudentUID == studentUID && sg.ActivityID == activityID {
			return *sg, nil
		}
	}
	return gradebook.StudentGrade{}, gradebook.ErrGradeNotFound
}

func (repo *gradebookRepository) QueryGradesByLoad(ctx context.Context, loadID string) ([]gradebook.StudentGrade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]gradebook.StudentGrade, 0)
	for _, sg := range repo.db.grades {
		if sg.LoadID == loadID {
			grades = append(grades, *sg)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades, nil
}

func (repo *gradebookRepository) UpdateStudentGrade(ctx context.Context, sg gradebook.StudentGrade) (gradebook.StudentGrade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[sg.ID]; !ok {
		return gradebook.StudentGrade{}, gradebook.ErrGradeNotFound
	}
	repo.db.grades[sg.ID] = &sg
	return sg, nil
}
