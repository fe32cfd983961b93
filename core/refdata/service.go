package refdata

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shulehub/shule/core"
)

var ErrNotFound = core.NewNotFoundError("record")

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, kind Kind, id string) (Record, error)
		QueryRecords(ctx context.Context, kind Kind, orgID string) ([]Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		DeleteRecord(ctx context.Context, kind Kind, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, orgID string, kind Kind, nr NewRecord) (Record, error) {
	if !kind.Valid() {
		return Record{}, core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "unknown collection"})
	}

	now := time.Now().UTC()
	rec := Record{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Kind:        kind,
		Name:        nr.Name,
		Description: nr.Description,
		Code:        nr.Code,
		Level:       nr.Level,
		MinScore:    nr.MinScore,
		MaxScore:    nr.MaxScore,
		StartsOn:    nr.StartsOn,
		EndsOn:      nr.EndsOn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateRecord(ctx, rec)
}

// Get loads a record and rejects callers from another tenant.
func (svc *Service) Get(ctx context.Context, orgID string, kind Kind, id string) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, kind, id)
	if err != nil {
		return Record{}, err
	}
	if rec.OrgID != orgID {
		return Record{}, core.NewPermissionError()
	}
	return rec, nil
}

func (svc *Service) Query(ctx context.Context, orgID string, kind Kind) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, kind, orgID)
}

// Update loads the record first and compares its stored tenant id against
// the caller's before mutating anything.
func (svc *Service) Update(ctx context.Context, orgID string, kind Kind, id string, ur UpdateRecord) (Record, error) {
	rec, err := svc.Get(ctx, orgID, kind, id)
	if err != nil {
		return Record{}, err
	}

	rec.Name = ur.Name
	rec.Description = ur.Description
	rec.Code = ur.Code
	rec.Level = ur.Level
	rec.MinScore = ur.MinScore
	rec.MaxScore = ur.MaxScore
	rec.StartsOn = ur.StartsOn
	rec.EndsOn = ur.EndsOn
	rec.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateRecord(ctx, rec)
}

// Delete loads the record first; same tenant check as Update.
func (svc *Service) Delete(ctx context.Context, orgID string, kind Kind, id string) error {
	if _, err := svc.Get(ctx, orgID, kind, id); err != nil {
		return err
	}
	return svc.repo.DeleteRecord(ctx, kind, id)
}
