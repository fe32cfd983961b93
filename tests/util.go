package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/core/refdata"
)

// NewValidator returns a validator and translator set up the same way the
// API composition root does it.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	return validate, translator
}

func CreateOrg(t *testing.T, repo org.Repository, name string, userLimit int) org.Organization {
	t.Helper()

	now := time.Now().UTC()
	o, err := repo.CreateOrganization(context.Background(), org.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     emailFor(name),
		AdminUID:  uuid.New().String(),
		UserCount: 1,
		UserLimit: userLimit,
		Status:    org.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateOrg() failed: %v", err)
	}
	return o
}

func CreateTeacher(t *testing.T, repo person.Repository, orgID, name string) person.Teacher {
	t.Helper()

	now := time.Now().UTC()
	teacher, err := repo.CreateTeacher(context.Background(), person.Teacher{
		UID:       uuid.New().String(),
		OrgID:     orgID,
		Name:      name,
		Email:     emailFor(name),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

func CreateStudent(t *testing.T, repo person.Repository, orgID, gradeID, name string) person.Student {
	t.Helper()

	now := time.Now().UTC()
	student, err := repo.CreateStudent(context.Background(), person.Student{
		UID:       uuid.New().String(),
		OrgID:     orgID,
		Name:      name,
		Email:     emailFor(name),
		GradeID:   gradeID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return student
}

func CreateRecord(t *testing.T, repo refdata.Repository, orgID string, kind refdata.Kind, name string) refdata.Record {
	t.Helper()

	now := time.Now().UTC()
	rec, err := repo.CreateRecord(context.Background(), refdata.Record{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}

func CreateLoad(t *testing.T, repo load.Repository, orgID, teacherUID, subjectID, gradeID, periodID string) load.Load {
	t.Helper()

	now := time.Now().UTC()
	ld, err := repo.CreateLoad(context.Background(), load.Load{
		ID:         uuid.New().String(),
		OrgID:      orgID,
		TeacherUID: teacherUID,
		SubjectID:  subjectID,
		GradeID:    gradeID,
		PeriodID:   periodID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateLoad() failed: %v", err)
	}
	return ld
}

func emailFor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.cd"
}
