package refdata

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/shule/core"
)

// Kind discriminates the reference-data collections. They all share the
// same shape and authorization rules, so they share one record set.
type Kind string

const (
	KindAcademicPeriod       Kind = "academicPeriod"
	KindGradingSystem        Kind = "gradingSystem"
	KindGrade                Kind = "grade"
	KindSubject              Kind = "subject"
	KindPerformanceIndicator Kind = "performanceIndicator"
)

var AllKinds = []Kind{
	KindAcademicPeriod,
	KindGradingSystem,
	KindGrade,
	KindSubject,
	KindPerformanceIndicator,
}

func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Record is a tenant-scoped reference record. Which descriptive fields are
// meaningful depends on the kind; unused ones stay at their zero value.
type Record struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`      // subjects
	Level       int       `json:"level"`     // grades
	MinScore    float64   `json:"min_score"` // grading systems
	MaxScore    float64   `json:"max_score"` // grading systems
	StartsOn    time.Time `json:"starts_on"` // academic periods
	EndsOn      time.Time `json:"ends_on"`   // academic periods
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewRecord struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Level       int       `json:"level" validate:"omitempty,min=0"`
	MinScore    float64   `json:"min_score" validate:"omitempty,min=0"`
	MaxScore    float64   `json:"max_score" validate:"omitempty,gtefield=MinScore"`
	StartsOn    time.Time `json:"starts_on"`
	EndsOn      time.Time `json:"ends_on"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Code = core.CleanString(nr.Code, true /* lower */)
	return validate.Struct(nr)
}

// UpdateRecord replaces a record's descriptive fields.
type UpdateRecord struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Level       int       `json:"level" validate:"omitempty,min=0"`
	MinScore    float64   `json:"min_score" validate:"omitempty,min=0"`
	MaxScore    float64   `json:"max_score" validate:"omitempty,gtefield=MinScore"`
	StartsOn    time.Time `json:"starts_on"`
	EndsOn      time.Time `json:"ends_on"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	ur.Name = core.CleanString(ur.Name)
	ur.Code = core.CleanString(ur.Code, true /* lower */)
	return validate.Struct(ur)
}
