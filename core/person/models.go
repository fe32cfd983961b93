package person

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/shule/core"
)

type Teacher struct {
	UID              string    `json:"uid"` // identity account id
	OrgID            string    `json:"org_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	PhotoURL         string    `json:"photo_url"`
	AssignedSubjects []string  `json:"assigned_subjects"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

type Student struct {
	UID           string    `json:"uid"` // identity account id
	OrgID         string    `json:"org_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	PhotoURL      string    `json:"photo_url"`
	GradeID       string    `json:"grade_id"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewTeacher contains information needed to provision a teacher.
// Photo is an optional base64 image data-URI.
type NewTeacher struct {
	Name             string   `json:"name" validate:"required"`
	Email            string   `json:"email" validate:"required,email"`
	Password         string   `json:"password" validate:"required,min=8"`
	Phone            string   `json:"phone"`
	Photo            string   `json:"photo" validate:"omitempty,imagedatauri"`
	AssignedSubjects []string `json:"assigned_subjects"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return validate.Struct(nt)
}

// NewStudent contains information needed to provision a student.
type NewStudent struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Phone         string `json:"phone"`
	Photo         string `json:"photo" validate:"omitempty,imagedatauri"`
	GradeID       string `json:"grade_id" validate:"required"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}
