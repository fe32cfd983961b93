package identitysvc

import (
	"context"

	"github.com/shulehub/shule/core"
)

var (
	ErrAccountNotFound = core.NewNotFoundError("identity account")
	ErrEmailExists     = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "an account with this email already exists"})
)

type (
	// NewAccount contains information needed to create an identity account.
	NewAccount struct {
		Email       string
		Password    string
		DisplayName string
		PhotoURL    string
		PhoneNumber string
	}

	Account struct {
		UID         string `json:"uid"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		PhotoURL    string `json:"photo_url"`
		PhoneNumber string `json:"phone_number"`
		Disabled    bool   `json:"disabled"`
	}

	// Claims are the custom authorization attributes attached to an account.
	// They are embedded into every token the identity provider issues for it.
	Claims struct {
		SuperAdmin bool   `json:"superadmin,omitempty"`
		Admin      bool   `json:"admin,omitempty"`
		Teacher    bool   `json:"teacher,omitempty"`
		Student    bool   `json:"student,omitempty"`
		OrgID      string `json:"org_id,omitempty"`
	}

	// Service is the identity provider's admin surface: account records and
	// their custom claims. Token issuance/verification is not part of it.
	Service interface {
		CreateAccount(ctx context.Context, acct NewAccount) (Account, error)
		GetAccount(ctx context.Context, uid string) (Account, error)
		SetClaims(ctx context.Context, uid string, claims Claims) error
		DeleteAccount(ctx context.Context, uid string) error
	}
)
