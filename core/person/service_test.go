package person_test

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"testing"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/fs"
	"github.com/shulehub/shule/services/email"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/services/objectstore"
	"github.com/shulehub/shule/storage/database/inmem"
	"github.com/shulehub/shule/tests"
)

func TestMain(m *testing.M) {
	core.TemplatesFS = appfs.FS
	os.Exit(m.Run())
}

type fixture struct {
	db       *inmemdb.DB
	orgRepo  org.Repository
	repo     person.Repository
	identity *identitysvc.DummyService
	store    *storesvc.DummyService
	mail     *emailsvc.DummyService
	svc      *person.Service
	org      org.Organization
}

func setup(t *testing.T, userLimit int) fixture {
	t.Helper()

	db := inmemdb.NewDB()
	orgRepo := inmemdb.NewOrgRepository(db)
	repo := inmemdb.NewPersonRepository(db)
	idSvc := identitysvc.NewDummyService()
	store := storesvc.NewDummyService()
	mailSvc := emailsvc.NewDummyService()
	logger := logsvcDiscard()

	o := testutil.CreateOrg(t, orgRepo, "Kivu High", userLimit)

	return fixture{
		db:       db,
		orgRepo:  orgRepo,
		repo:     repo,
		identity: idSvc,
		store:    store,
		mail:     mailSvc,
		svc:      person.NewService(repo, orgRepo, idSvc, store, mailSvc, logger),
		org:      o,
	}
}

func Test_Service_CreateTeacher(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	teacher, err := f.svc.CreateTeacher(ctx, f.org.ID, person.NewTeacher{
		Name:             "Alice Kalume",
		Email:            "alice@test.cd",
		Password:         "s3cr3tpwd",
		Phone:            "0812345678",
		AssignedSubjects: []string{"math"},
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}

	// identity account + claims
	acct, err := f.identity.GetAccount(ctx, teacher.UID)
	if err != nil {
		t.Fatalf("GetAccount() failed: %v", err)
	}
	if acct.Email != "alice@test.cd" {
		t.Errorf("acct.Email = %q", acct.Email)
	}
	claims, ok := f.identity.GetClaims(teacher.UID)
	if !ok || !claims.Teacher || claims.OrgID != f.org.ID {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// phone normalized with the configured country code
	if teacher.Phone != "+243812345678" {
		t.Errorf("teacher.Phone = %q; want +243812345678", teacher.Phone)
	}

	// stored record
	got, err := f.svc.GetTeacher(ctx, teacher.UID)
	if err != nil {
		t.Fatalf("GetTeacher() failed: %v", err)
	}
	if got.OrgID != f.org.ID || got.Name != "Alice Kalume" {
		t.Errorf("unexpected teacher: %+v", got)
	}

	// user count bumped
	o, err := f.orgRepo.GetOrganization(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("GetOrganization() failed: %v", err)
	}
	if o.UserCount != f.org.UserCount+1 {
		t.Errorf("UserCount = %d; want %d", o.UserCount, f.org.UserCount+1)
	}

	// welcome email with credentials
	if len(f.mail.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(f.mail.SentMessages))
	}
	msg := f.mail.SentMessages[0]
	if msg.To[0].Address != "alice@test.cd" || msg.TextContent == "" {
		t.Errorf("unexpected welcome email: %+v", msg)
	}
}

func Test_Service_CreateTeacher_rollsBackOnClaimsFailure(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	f.identity.FailSetClaims = errors.New("identity provider down")

	_, err := f.svc.CreateTeacher(ctx, f.org.ID, person.NewTeacher{
		Name:     "Alice Kalume",
		Email:    "alice@test.cd",
		Password: "s3cr3tpwd",
	})
	if err == nil {
		t.Fatal("CreateTeacher() succeeded; want failure")
	}

	teachers, err := f.svc.QueryTeachers(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("QueryTeachers() failed: %v", err)
	}
	if len(teachers) != 0 {
		t.Errorf("len(teachers) = %d; want 0", len(teachers))
	}

	o, err := f.orgRepo.GetOrganization(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("GetOrganization() failed: %v", err)
	}
	if o.UserCount != f.org.UserCount {
		t.Errorf("UserCount = %d; want %d", o.UserCount, f.org.UserCount)
	}
	if len(f.mail.SentMessages) != 0 {
		t.Errorf("welcome email sent despite rollback")
	}
}

func Test_Service_CreateStudent_rollsBackOnRepoFailure(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	failing := failingPersonRepo{Repository: f.repo}
	svc := person.NewService(failing, f.orgRepo, f.identity, f.store, f.mail, logsvcDiscard())

	_, err := svc.CreateStudent(ctx, f.org.ID, person.NewStudent{
		Name:     "Benny Ilunga",
		Email:    "benny@test.cd",
		Password: "s3cr3tpwd",
		GradeID:  "grade-8",
	})
	if err == nil {
		t.Fatal("CreateStudent() succeeded; want failure")
	}

	// the orphaned identity account must have been deleted again:
	// creating the same email again must not hit ErrEmailExists
	if _, err = f.identity.CreateAccount(ctx, identitysvc.NewAccount{
		Email:    "benny@test.cd",
		Password: "s3cr3tpwd",
	}); err != nil {
		t.Errorf("identity account not rolled back: %v", err)
	}
}

func Test_Service_CreateStudent_userLimit(t *testing.T) {
	f := setup(t, 1) // the admin already holds the only seat
	ctx := context.Background()

	_, err := f.svc.CreateStudent(ctx, f.org.ID, person.NewStudent{
		Name:     "Benny Ilunga",
		Email:    "benny@test.cd",
		Password: "s3cr3tpwd",
		GradeID:  "grade-8",
	})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("err = %v; want ValidationError", err)
	}

	students, err := f.svc.QueryStudents(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("QueryStudents() failed: %v", err)
	}
	if len(students) != 0 {
		t.Errorf("len(students) = %d; want 0", len(students))
	}
}

func Test_Service_CreateTeacher_badPhotoDataURI(t *testing.T) {
	f := setup(t, 0)
	ctx := context.Background()

	_, err := f.svc.CreateTeacher(ctx, f.org.ID, person.NewTeacher{
		Name:     "Alice Kalume",
		Email:    "alice@test.cd",
		Password: "s3cr3tpwd",
		Photo:    "data:image/png;base64,!!not-base64!!",
	})
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("err = %v; want ValidationError", err)
	}

	// nothing provisioned
	if _, err = f.identity.CreateAccount(ctx, identitysvc.NewAccount{Email: "alice@test.cd"}); err != nil {
		t.Errorf("identity account created despite photo failure: %v", err)
	}
}

// failingPersonRepo fails every document write.
type failingPersonRepo struct {
	person.Repository
}

func (failingPersonRepo) CreateTeacher(context.Context, person.Teacher) (person.Teacher, error) {
	return person.Teacher{}, errors.New("document store down")
}

func (failingPersonRepo) CreateStudent(context.Context, person.Student) (person.Student, error) {
	return person.Student{}, errors.New("document store down")
}

func logsvcDiscard() core.Logger {
	return logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
}
