package org

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shulehub/shule/core"
)

// Status is an organization's lifecycle status. Only a platform-level
// operator may change it.
type Status string

const (
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
	StatusInArrears Status = "In Arrears"
)

type Organization struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	LogoURL       string    `json:"logo_url"`
	AdminUID      string    `json:"admin_uid"`
	AdminPhotoURL string    `json:"admin_photo_url"`
	UserCount     int       `json:"user_count"`
	UserLimit     int       `json:"user_limit"`
	DataUsedBytes int64     `json:"data_used_bytes"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewOrganization contains information needed to provision a tenant along
// with its administrator account. Image payloads arrive as raw bytes
// extracted from the multipart form by the handler.
type NewOrganization struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	UserLimit int    `json:"user_limit" validate:"omitempty,min=1"`

	AdminName     string `json:"admin_name" validate:"required"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
	AdminPhone    string `json:"admin_phone"`

	Logo       []byte `json:"-"`
	AdminPhoto []byte `json:"-"`
}

func (no *NewOrganization) Validate(validate *validator.Validate) error {
	no.Name = core.CleanString(no.Name)
	no.Email = core.CleanString(no.Email, true /* lower */)
	no.AdminName = core.CleanString(no.AdminName)
	no.AdminEmail = core.CleanString(no.AdminEmail, true /* lower */)
	return validate.Struct(no)
}

// UpdateStatus defines the platform operator's status change request.
type UpdateStatus struct {
	Status Status `json:"status" validate:"required,orgstatus"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = Status(core.CleanString(string(us.Status)))
	return validate.Struct(us)
}
