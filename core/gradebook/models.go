package gradebook

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/person"
)

// Activity is a graded item (exam, homework, project...) attached to an
// academic load. Percentage is its weight in the final grade, out of 100.
type Activity struct {
	ID         string    `json:"id"`
	LoadID     string    `json:"load_id"`
	Name       string    `json:"name"`
	Percentage float64   `json:"percentage"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// StudentGrade is one student's score on one activity. At most one row
// exists per (student, activity) pair.
type StudentGrade struct {
	ID         string    `json:"id"`
	LoadID     string    `json:"load_id"`
	ActivityID string    `json:"activity_id"`
	StudentUID string    `json:"student_uid"`
	Score      float64   `json:"score"`
	CreatedBy  string    `json:"created_by"`
	UpdatedBy  string    `json:"updated_by"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// UpsertActivity creates an activity when ActivityID is empty and updates
// the existing one otherwise.
type UpsertActivity struct {
	LoadID     string  `json:"load_id" validate:"required"`
	ActivityID string  `json:"activity_id"`
	Name       string  `json:"name" validate:"required"`
	Percentage float64 `json:"percentage"`
}

func (ua *UpsertActivity) Validate(validate *validator.Validate) error {
	ua.LoadID = core.CleanString(ua.LoadID)
	ua.ActivityID = core.CleanString(ua.ActivityID)
	ua.Name = core.CleanString(ua.Name)
	return validate.Struct(ua)
}

// UpsertStudentGrade records or replaces a student's score on an activity.
type UpsertStudentGrade struct {
	LoadID     string  `json:"load_id" validate:"required"`
	ActivityID string  `json:"activity_id" validate:"required"`
	StudentUID string  `json:"student_uid" validate:"required"`
	Score      float64 `json:"score"`
}

func (ug *UpsertStudentGrade) Validate(validate *validator.Validate) error {
	ug.LoadID = core.CleanString(ug.LoadID)
	ug.ActivityID = core.CleanString(ug.ActivityID)
	ug.StudentUID = core.CleanString(ug.StudentUID)
	return validate.Struct(ug)
}

// View is the assembled gradebook for one load: the roster of the load's
// grade, the load's activities and every score recorded so far.
type View struct {
	Students   []person.Student `json:"students"`
	Activities []Activity       `json:"activities"`
	Grades     []StudentGrade   `json:"grades"`
}
