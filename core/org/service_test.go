package org_test

import (
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/services/objectstore"
	"github.com/shulehub/shule/storage/database/inmem"
)

type fixture struct {
	repo     org.Repository
	identity *identitysvc.DummyService
	store    *storesvc.DummyService
	svc      *org.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := inmemdb.NewDB()
	repo := inmemdb.NewOrgRepository(db)
	idSvc := identitysvc.NewDummyService()
	store := storesvc.NewDummyService()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))

	return fixture{
		repo:     repo,
		identity: idSvc,
		store:    store,
		svc:      org.NewService(repo, idSvc, store, logger),
	}
}

func newOrg() org.NewOrganization {
	return org.NewOrganization{
		Name:          "Kivu High",
		Email:         "contact@kivuhigh.cd",
		Phone:         "0997000000",
		AdminName:     "Didier Lombe",
		AdminEmail:    "didier@kivuhigh.cd",
		AdminPassword: "s3cr3tpwd",
		Logo:          []byte("png-bytes"),
	}
}

func Test_Service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, newOrg())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if o.Status != org.StatusActive {
		t.Errorf("Status = %q; want %q", o.Status, org.StatusActive)
	}
	if o.UserCount != 1 { // the admin
		t.Errorf("UserCount = %d; want 1", o.UserCount)
	}
	if o.Phone != "+243997000000" {
		t.Errorf("Phone = %q; want +243997000000", o.Phone)
	}

	// admin identity account + claims referencing the new tenant
	acct, err := f.identity.GetAccount(ctx, o.AdminUID)
	if err != nil {
		t.Fatalf("GetAccount() failed: %v", err)
	}
	if acct.Email != "didier@kivuhigh.cd" {
		t.Errorf("acct.Email = %q", acct.Email)
	}
	claims, ok := f.identity.GetClaims(o.AdminUID)
	if !ok || !claims.Admin || claims.OrgID != o.ID {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// logo uploaded under the org's prefix
	if _, ok := f.store.Get("orgs/" + o.ID + "/logo.png"); !ok {
		t.Error("logo not uploaded")
	}

	got, err := f.svc.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.LogoURL == "" {
		t.Error("LogoURL not persisted")
	}
}

func Test_Service_Create_rollsBackOnClaimsFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.identity.FailSetClaims = errors.New("identity provider down")

	_, err := f.svc.Create(ctx, newOrg())
	if err == nil {
		t.Fatal("Create() succeeded; want failure")
	}

	// no organization row survives
	orgs, err := f.svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(orgs) != 0 {
		t.Errorf("len(orgs) = %d; want 0", len(orgs))
	}

	// and no orphaned identity account: the email is free again
	if _, err = f.identity.CreateAccount(ctx, identitysvc.NewAccount{
		Email:    "didier@kivuhigh.cd",
		Password: "s3cr3tpwd",
	}); err != nil {
		t.Errorf("identity account not rolled back: %v", err)
	}
}

func Test_Service_Create_abortsOnUploadFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.store.FailPut = errors.New("bucket unavailable")

	_, err := f.svc.Create(ctx, newOrg())
	if err == nil {
		t.Fatal("Create() succeeded; want failure")
	}

	// upload happens first; nothing else may have been provisioned
	orgs, _ := f.svc.QueryAll(ctx)
	if len(orgs) != 0 {
		t.Errorf("len(orgs) = %d; want 0", len(orgs))
	}
	if _, err = f.identity.CreateAccount(ctx, identitysvc.NewAccount{Email: "didier@kivuhigh.cd"}); err != nil {
		t.Errorf("identity account created despite upload failure: %v", err)
	}
}

func Test_Service_SetStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, newOrg())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err = f.svc.SetStatus(ctx, o.ID, org.StatusSuspended); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	got, err := f.svc.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Status != org.StatusSuspended {
		t.Errorf("Status = %q; want %q", got.Status, org.StatusSuspended)
	}

	if err = f.svc.SetStatus(ctx, o.ID, org.Status("Closed")); err == nil {
		t.Error("SetStatus(Closed) succeeded; want ValidationError")
	}
	if err = f.svc.SetStatus(ctx, "nope", org.StatusActive); !core.IsNotFound(err) {
		t.Errorf("SetStatus(unknown) err = %v; want NotFound", err)
	}
}
