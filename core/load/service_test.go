package load_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/core/refdata"
	"github.com/shulehub/shule/storage/database/inmem"
	"github.com/shulehub/shule/tests"
)

type fixture struct {
	svc     *load.Service
	orgID   string
	teacher person.Teacher
	subject refdata.Record
	grade   refdata.Record
	period  refdata.Record
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := inmemdb.NewDB()
	orgRepo := inmemdb.NewOrgRepository(db)
	personRepo := inmemdb.NewPersonRepository(db)
	refRepo := inmemdb.NewRefDataRepository(db)
	loadRepo := inmemdb.NewLoadRepository(db)

	o := testutil.CreateOrg(t, orgRepo, "Kivu High", 0)

	return fixture{
		svc:     load.NewService(loadRepo, personRepo, refRepo),
		orgID:   o.ID,
		teacher: testutil.CreateTeacher(t, personRepo, o.ID, "Alice Kalume"),
		subject: testutil.CreateRecord(t, refRepo, o.ID, refdata.KindSubject, "Mathematics"),
		grade:   testutil.CreateRecord(t, refRepo, o.ID, refdata.KindGrade, "Grade 8"),
		period:  testutil.CreateRecord(t, refRepo, o.ID, refdata.KindAcademicPeriod, "Term 1"),
	}
}

func (f fixture) newLoad() load.NewLoad {
	return load.NewLoad{
		TeacherUID: f.teacher.UID,
		SubjectID:  f.subject.ID,
		GradeID:    f.grade.ID,
		PeriodID:   f.period.ID,
	}
}

func Test_Service_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ld, err := f.svc.Create(ctx, f.orgID, f.newLoad())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if ld.ID == "" || ld.OrgID != f.orgID || ld.TeacherUID != f.teacher.UID {
		t.Errorf("unexpected load: %+v", ld)
	}
}

func Test_Service_Create_validatesReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	mutations := []struct {
		name   string
		mutate func(*load.NewLoad)
	}{
		{"unknown teacher", func(nl *load.NewLoad) { nl.TeacherUID = "nope" }},
		{"unknown subject", func(nl *load.NewLoad) { nl.SubjectID = "nope" }},
		{"unknown grade", func(nl *load.NewLoad) { nl.GradeID = "nope" }},
		{"unknown period", func(nl *load.NewLoad) { nl.PeriodID = "nope" }},
		// a grade id is not a subject id even when the record exists
		{"kind mismatch", func(nl *load.NewLoad) { nl.SubjectID = f.grade.ID }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			nl := f.newLoad()
			tt.mutate(&nl)
			_, err := f.svc.Create(context.Background(), f.orgID, nl)
			if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
				t.Errorf("err = %v; want ValidationError", err)
			}
		})
	}

	// references of another tenant do not resolve either
	_, err := f.svc.Create(ctx, "org-b", f.newLoad())
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("cross-tenant err = %v; want ValidationError", err)
	}
}

func Test_Service_QueryOwn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ld, err := f.svc.Create(ctx, f.orgID, f.newLoad())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	own, err := f.svc.QueryOwn(ctx, f.orgID, f.teacher.UID)
	if err != nil {
		t.Fatalf("QueryOwn() failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != ld.ID {
		t.Errorf("unexpected own loads: %+v", own)
	}

	// another teacher of the same org sees nothing
	other, err := f.svc.QueryOwn(ctx, f.orgID, "other-teacher")
	if err != nil {
		t.Fatalf("QueryOwn() failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("len(other) = %d; want 0", len(other))
	}
}

func Test_Service_GetDelete_tenantScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ld, err := f.svc.Create(ctx, f.orgID, f.newLoad())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err = f.svc.Get(ctx, "org-b", ld.ID); !core.IsPermissionDenied(err) {
		t.Errorf("Get() err = %v; want PermissionDenied", err)
	}
	if err = f.svc.Delete(ctx, "org-b", ld.ID); !core.IsPermissionDenied(err) {
		t.Errorf("Delete() err = %v; want PermissionDenied", err)
	}

	if err = f.svc.Delete(ctx, f.orgID, ld.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = f.svc.Get(ctx, f.orgID, ld.ID); !core.IsNotFound(err) {
		t.Errorf("Get() after delete err = %v; want NotFound", err)
	}
}
