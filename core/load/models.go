package load

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/shule/core"
)

// Load assigns one teacher to teach one subject to one grade for one
// academic period, within one organization.
type Load struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	TeacherUID string    `json:"teacher_uid"`
	SubjectID  string    `json:"subject_id"`
	GradeID    string    `json:"grade_id"`
	PeriodID   string    `json:"period_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewLoad struct {
	TeacherUID string `json:"teacher_uid" validate:"required"`
	SubjectID  string `json:"subject_id" validate:"required"`
	GradeID    string `json:"grade_id" validate:"required"`
	PeriodID   string `json:"period_id" validate:"required"`
}

func (nl *NewLoad) Validate(validate *validator.Validate) error {
	nl.TeacherUID = core.CleanString(nl.TeacherUID)
	nl.SubjectID = core.CleanString(nl.SubjectID)
	nl.GradeID = core.CleanString(nl.GradeID)
	nl.PeriodID = core.CleanString(nl.PeriodID)
	return validate.Struct(nl)
}
