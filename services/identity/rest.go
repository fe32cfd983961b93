package identitysvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

// restService talks to the identity provider's admin REST API.
type restService struct {
	client *resty.Client
}

var _ Service = (*restService)(nil)

func NewRestService(conf *core.Config) *restService {
	client := resty.New().
		SetHostURL(conf.Identity.BaseURL).
		SetTimeout(conf.Identity.Timeout).
		SetHeader("Authorization", "Bearer "+conf.Identity.APIKey).
		SetHeader("Content-Type", "application/json")
	return &restService{client: client}
}

type apiError struct {
	Error string `json:"error"`
}

func (svc restService) CreateAccount(ctx context.Context, acct NewAccount) (Account, error) {
	var created Account
	var apiErr apiError
	res, err := svc.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":        acct.Email,
			"password":     acct.Password,
			"display_name": acct.DisplayName,
			"photo_url":    acct.PhotoURL,
			"phone_number": acct.PhoneNumber,
		}).
		SetResult(&created).
		SetError(&apiErr).
		Post("/admin/accounts")
	if err != nil {
		return Account{}, errors.Wrap(err, "creating identity account")
	}
	if res.StatusCode() == http.StatusConflict {
		return Account{}, ErrEmailExists
	}
	if res.IsError() {
		return Account{}, errors.Errorf("creating identity account - status: %d - error: %s", res.StatusCode(), apiErr.Error)
	}
	return created, nil
}

func (svc restService) GetAccount(ctx context.Context, uid string) (Account, error) {
	var acct Account
	res, err := svc.client.R().
		SetContext(ctx).
		SetResult(&acct).
		Get(fmt.Sprintf("/admin/accounts/%s", uid))
	if err != nil {
		return Account{}, errors.Wrap(err, "getting identity account")
	}
	if res.StatusCode() == http.StatusNotFound {
		return Account{}, ErrAccountNotFound
	}
	if res.IsError() {
		return Account{}, errors.Errorf("getting identity account - status: %d", res.StatusCode())
	}
	return acct, nil
}

func (svc restService) SetClaims(ctx context.Context, uid string, claims Claims) error {
	res, err := svc.client.R().
		SetContext(ctx).
		SetBody(claims).
		Patch(fmt.Sprintf("/admin/accounts/%s/claims", uid))
	if err != nil {
		return errors.Wrap(err, "setting identity claims")
	}
	if res.StatusCode() == http.StatusNotFound {
		return ErrAccountNotFound
	}
	if res.IsError() {
		return errors.Errorf("setting identity claims - status: %d", res.StatusCode())
	}
	return nil
}

func (svc restService) DeleteAccount(ctx context.Context, uid string) error {
	res, err := svc.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/admin/accounts/%s", uid))
	if err != nil {
		return errors.Wrap(err, "deleting identity account")
	}
	if res.StatusCode() == http.StatusNotFound {
		return ErrAccountNotFound
	}
	if res.IsError() {
		return errors.Errorf("deleting identity account - status: %d", res.StatusCode())
	}
	return nil
}
