package load

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/core/refdata"
)

var ErrNotFound = core.NewNotFoundError("academic load")

type (
	Repository interface {
		CreateLoad(ctx context.Context, ld Load) (Load, error)
		GetLoad(ctx context.Context, id string) (Load, error)
		QueryLoadsByOrg(ctx context.Context, orgID string) ([]Load, error)
		QueryLoadsByTeacher(ctx context.Context, orgID, teacherUID string) ([]Load, error)
		DeleteLoad(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		persons person.Repository
		refs    refdata.Repository
	}
)

func NewService(repo Repository, persons person.Repository, refs refdata.Repository) *Service {
	return &Service{repo: repo, persons: persons, refs: refs}
}

// Create links a teacher to a subject/grade/period. Every referenced id
// must resolve to a record of the caller's own organization.
func (svc *Service) Create(ctx context.Context, orgID string, nl NewLoad) (Load, error) {
	t, err := svc.persons.GetTeacher(ctx, nl.TeacherUID)
	if err != nil || t.OrgID != orgID {
		return Load{}, core.NewValidationError(errors.New("unknown teacher"),
			core.FieldError{Field: "teacher_uid", Error: "no such teacher in this organization"})
	}

	refs := []struct {
		kind  refdata.Kind
		id    string
		field string
	}{
		{refdata.KindSubject, nl.SubjectID, "subject_id"},
		{refdata.KindGrade, nl.GradeID, "grade_id"},
		{refdata.KindAcademicPeriod, nl.PeriodID, "period_id"},
	}
	for _, ref := range refs {
		rec, err := svc.refs.GetRecord(ctx, ref.kind, ref.id)
		if err != nil || rec.OrgID != orgID {
			return Load{}, core.NewValidationError(errors.New("unknown reference"),
				core.FieldError{Field: ref.field, Error: "no such record in this organization"})
		}
	}

	now := time.Now().UTC()
	ld := Load{
		ID:         uuid.New().String(),
		OrgID:      orgID,
		TeacherUID: nl.TeacherUID,
		SubjectID:  nl.SubjectID,
		GradeID:    nl.GradeID,
		PeriodID:   nl.PeriodID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateLoad(ctx, ld)
}

// Get loads an academic load and rejects callers from another tenant.
func (svc *Service) Get(ctx context.Context, orgID, id string) (Load, error) {
	ld, err := svc.repo.GetLoad(ctx, id)
	if err != nil {
		return Load{}, err
	}
	if ld.OrgID != orgID {
		return Load{}, core.NewPermissionError()
	}
	return ld, nil
}

func (svc *Service) QueryByOrg(ctx context.Context, orgID string) ([]Load, error) {
	return svc.repo.QueryLoadsByOrg(ctx, orgID)
}

// QueryOwn lists the caller's own loads. Both scoping ids come from the
// verified token, never from the request.
func (svc *Service) QueryOwn(ctx context.Context, orgID, teacherUID string) ([]Load, error) {
	return svc.repo.QueryLoadsByTeacher(ctx, orgID, teacherUID)
}

// Delete loads the record first; cross-tenant deletes are rejected before
// anything is mutated.
func (svc *Service) Delete(ctx context.Context, orgID, id string) error {
	if _, err := svc.Get(ctx, orgID, id); err != nil {
		return err
	}
	return svc.repo.DeleteLoad(ctx, id)
}
