package refdata_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/refdata"
	"github.com/shulehub/shule/storage/database/inmem"
)

func setup() (*refdata.Service, refdata.Repository) {
	db := inmemdb.NewDB()
	repo := inmemdb.NewRefDataRepository(db)
	return refdata.NewService(repo), repo
}

func Test_Service_CRUD(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "org-a", refdata.KindSubject, refdata.NewRecord{Name: "Mathematics", Code: "MATH"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if rec.ID == "" || rec.OrgID != "org-a" || rec.Kind != refdata.KindSubject {
		t.Errorf("unexpected record: %+v", rec)
	}

	got, err := svc.Get(ctx, "org-a", refdata.KindSubject, rec.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Mathematics" {
		t.Errorf("Name = %q", got.Name)
	}

	// same id under another kind does not resolve
	if _, err = svc.Get(ctx, "org-a", refdata.KindGrade, rec.ID); !core.IsNotFound(err) {
		t.Errorf("cross-kind Get() err = %v; want NotFound", err)
	}

	updated, err := svc.Update(ctx, "org-a", refdata.KindSubject, rec.ID, refdata.UpdateRecord{Name: "Math", Code: "MTH"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "Math" || updated.Code != "MTH" {
		t.Errorf("unexpected updated record: %+v", updated)
	}

	if err = svc.Delete(ctx, "org-a", refdata.KindSubject, rec.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = svc.Get(ctx, "org-a", refdata.KindSubject, rec.ID); !core.IsNotFound(err) {
		t.Errorf("Get() after delete err = %v; want NotFound", err)
	}
}

func Test_Service_tenantIsolation(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "org-a", refdata.KindSubject, refdata.NewRecord{Name: "Mathematics"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// another tenant can neither read, update nor delete it
	if _, err = svc.Get(ctx, "org-b", refdata.KindSubject, rec.ID); !core.IsPermissionDenied(err) {
		t.Errorf("Get() err = %v; want PermissionDenied", err)
	}
	if _, err = svc.Update(ctx, "org-b", refdata.KindSubject, rec.ID, refdata.UpdateRecord{Name: "Hacked"}); !core.IsPermissionDenied(err) {
		t.Errorf("Update() err = %v; want PermissionDenied", err)
	}
	if err = svc.Delete(ctx, "org-b", refdata.KindSubject, rec.ID); !core.IsPermissionDenied(err) {
		t.Errorf("Delete() err = %v; want PermissionDenied", err)
	}

	// the record is untouched
	stored, err := repo.GetRecord(ctx, refdata.KindSubject, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord() failed: %v", err)
	}
	if stored.Name != "Mathematics" {
		t.Errorf("Name = %q; want Mathematics", stored.Name)
	}

	// listings are scoped to the caller's tenant
	if _, err = svc.Create(ctx, "org-b", refdata.KindSubject, refdata.NewRecord{Name: "Biology"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	recs, err := svc.Query(ctx, "org-a", refdata.KindSubject)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != rec.ID {
		t.Errorf("unexpected listing: %+v", recs)
	}
}

func Test_Service_Create_unknownKind(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Create(context.Background(), "org-a", refdata.Kind("holidays"), refdata.NewRecord{Name: "X"})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("err = %v; want ValidationError", err)
	}
}

func Test_Service_Update_missing(t *testing.T) {
	svc, _ := setup()

	_, err := svc.Update(context.Background(), "org-a", refdata.KindSubject, "nope", refdata.UpdateRecord{Name: "X"})
	if !core.IsNotFound(err) {
		t.Errorf("err = %v; want NotFound", err)
	}
}
