package org

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/services/objectstore"
)

var ErrNotFound = core.NewNotFoundError("organization")

type (
	Repository interface {
		CreateOrganization(ctx context.Context, o Organization) (Organization, error)
		GetOrganization(ctx context.Context, id string) (Organization, error)
		QueryAllOrganizations(ctx context.Context) ([]Organization, error)
		UpdateOrganizationStatus(ctx context.Context, id string, status Status) error
		// IncrementUserCount atomically adds delta to the stored user count.
		// Implementations must not read-modify-write.
		IncrementUserCount(ctx context.Context, id string, delta int) error
		DeleteOrganization(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		identity identitysvc.Service
		store    storesvc.Service
		logger   core.Logger
	}
)

func NewService(repo Repository, idSvc identitysvc.Service, store storesvc.Service, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		identity: idSvc,
		store:    store,
		logger:   logger,
	}
}

// Create provisions a tenant: uploads the logo and the admin's photo (in
// parallel), creates the admin's identity account, persists the
// organization and finally attaches admin claims referencing the new
// organization id. The underlying services share no transaction, so any
// failure after identity creation triggers a compensating rollback that
// removes everything created so far; rollback failures are logged and the
// original error is surfaced.
func (svc *Service) Create(ctx context.Context, no NewOrganization) (Organization, error) {
	id := uuid.New().String()

	logoURL, photoURL, err := svc.uploadImages(ctx, id, no)
	if err != nil {
		return Organization{}, err // nothing persisted yet
	}

	acct, err := svc.identity.CreateAccount(ctx, identitysvc.NewAccount{
		Email:       no.AdminEmail,
		Password:    no.AdminPassword,
		DisplayName: no.AdminName,
		PhotoURL:    photoURL,
		PhoneNumber: core.NormalizePhone(no.AdminPhone, core.Conf.PhoneCountryCode),
	})
	if err != nil {
		return Organization{}, errors.Wrap(err, "creating admin identity account")
	}

	now := time.Now().UTC()
	o := Organization{
		ID:            id,
		Name:          no.Name,
		Email:         no.Email,
		Phone:         core.NormalizePhone(no.Phone, core.Conf.PhoneCountryCode),
		Address:       no.Address,
		LogoURL:       logoURL,
		AdminUID:      acct.UID,
		AdminPhotoURL: photoURL,
		UserCount:     1, // the admin
		UserLimit:     no.UserLimit,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o, err = svc.repo.CreateOrganization(ctx, o)
	if err != nil {
		svc.rollbackIdentity(ctx, acct.UID)
		return Organization{}, errors.Wrap(err, "creating organization")
	}

	claims := identitysvc.Claims{Admin: true, OrgID: o.ID}
	if err = svc.identity.SetClaims(ctx, acct.UID, claims); err != nil {
		if delErr := svc.repo.DeleteOrganization(ctx, o.ID); delErr != nil {
			svc.logger.Error(fmt.Sprintf("rolling back organization %s: %v", o.ID, delErr), delErr)
		}
		svc.rollbackIdentity(ctx, acct.UID)
		return Organization{}, errors.Wrap(err, "setting admin claims")
	}

	return o, nil
}

func (svc *Service) rollbackIdentity(ctx context.Context, uid string) {
	if err := svc.identity.DeleteAccount(ctx, uid); err != nil {
		svc.logger.Error(fmt.Sprintf("rolling back identity account %s: %v", uid, err), err)
	}
}

func (svc *Service) uploadImages(ctx context.Context, orgID string, no NewOrganization) (logoURL, photoURL string, err error) {
	type upload struct {
		url string
		err error
	}

	logoCh := make(chan upload, 1)
	photoCh := make(chan upload, 1)

	go func() {
		if no.Logo == nil {
			logoCh <- upload{}
			return
		}
		url, err := svc.store.Put(ctx, fmt.Sprintf("orgs/%s/logo.png", orgID), no.Logo, "image/png")
		logoCh <- upload{url: url, err: errors.Wrap(err, "uploading logo")}
	}()
	go func() {
		if no.AdminPhoto == nil {
			photoCh <- upload{}
			return
		}
		url, err := svc.store.Put(ctx, fmt.Sprintf("orgs/%s/admin.jpg", orgID), no.AdminPhoto, "image/jpeg")
		photoCh <- upload{url: url, err: errors.Wrap(err, "uploading admin photo")}
	}()

	logo, photo := <-logoCh, <-photoCh
	if logo.err != nil {
		return "", "", logo.err
	}
	if photo.err != nil {
		return "", "", photo.err
	}
	return logo.url, photo.url, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Organization, error) {
	return svc.repo.GetOrganization(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Organization, error) {
	return svc.repo.QueryAllOrganizations(ctx)
}

// SetStatus changes a tenant's lifecycle status. Platform-level only; the
// role check lives at the API layer.
func (svc *Service) SetStatus(ctx context.Context, id string, status Status) error {
	switch status {
	case StatusActive, StatusSuspended, StatusInArrears:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}
	if _, err := svc.repo.GetOrganization(ctx, id); err != nil {
		return err
	}
	return svc.repo.UpdateOrganizationStatus(ctx, id, status)
}
