package person

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/services/objectstore"
)

var (
	ErrTeacherNotFound = core.NewNotFoundError("teacher")
	ErrStudentNotFound = core.NewNotFoundError("student")

	errUserLimitReached = core.NewValidationError(errors.New("organization user limit reached"))
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, uid string) (Teacher, error)
		QueryTeachers(ctx context.Context, orgID string) ([]Teacher, error)
		DeleteTeacher(ctx context.Context, uid string) error

		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, uid string) (Student, error)
		QueryStudents(ctx context.Context, orgID string) ([]Student, error)
		FilterStudentsByGrade(ctx context.Context, orgID, gradeID string) ([]Student, error)
		DeleteStudent(ctx context.Context, uid string) error
	}

	Service struct {
		repo     Repository
		orgs     org.Repository
		identity identitysvc.Service
		store    storesvc.Service
		mail     core.EmailService
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	orgs org.Repository,
	idSvc identitysvc.Service,
	store storesvc.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		orgs:     orgs,
		identity: idSvc,
		store:    store,
		mail:     mailSvc,
		logger:   logger,
	}
}

// CreateTeacher provisions a teacher across the identity service, the
// object store and the database. The photo upload (if any) happens before
// the identity account exists, so an upload failure aborts with nothing to
// undo; once the identity account exists, any later failure deletes it
// again before the error is surfaced.
func (svc *Service) CreateTeacher(ctx context.Context, orgID string, nt NewTeacher) (Teacher, error) {
	if err := svc.checkUserLimit(ctx, orgID); err != nil {
		return Teacher{}, err
	}

	photoURL, err := svc.uploadPhoto(ctx, orgID, "teachers", nt.Photo)
	if err != nil {
		return Teacher{}, err
	}

	acct, err := svc.createAccount(ctx, nt.Name, nt.Email, nt.Password, nt.Phone, photoURL)
	if err != nil {
		return Teacher{}, err
	}

	claims := identitysvc.Claims{Teacher: true, OrgID: orgID}
	if err = svc.identity.SetClaims(ctx, acct.UID, claims); err != nil {
		svc.rollbackIdentity(ctx, acct.UID)
		return Teacher{}, errors.Wrap(err, "setting teacher claims")
	}

	now := time.Now().UTC()
	t := Teacher{
		UID:              acct.UID,
		OrgID:            orgID,
		Name:             nt.Name,
		Email:            nt.Email,
		Phone:            acct.PhoneNumber,
		PhotoURL:         photoURL,
		AssignedSubjects: nt.AssignedSubjects,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if t, err = svc.repo.CreateTeacher(ctx, t); err != nil {
		svc.rollbackIdentity(ctx, acct.UID)
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}

	if err = svc.orgs.IncrementUserCount(ctx, orgID, 1); err != nil {
		if delErr := svc.repo.DeleteTeacher(ctx, t.UID); delErr != nil {
			svc.logger.Error(fmt.Sprintf("rolling back teacher %s: %v", t.UID, delErr), delErr)
		}
		svc.rollbackIdentity(ctx, acct.UID)
		return Teacher{}, errors.Wrap(err, "incrementing user count")
	}

	svc.sendWelcomeEmail(nt.Name, nt.Email, nt.Password)
	return t, nil
}

// CreateStudent provisions a student; same sequencing and rollback
// semantics as CreateTeacher.
func (svc *Service) CreateStudent(ctx context.Context, orgID string, ns NewStudent) (Student, error) {
	if err := svc.checkUserLimit(ctx, orgID); err != nil {
		return Student{}, err
	}

	photoURL, err := svc.uploadPhoto(ctx, orgID, "students", ns.Photo)
	if err != nil {
		return Student{}, err
	}

	acct, err := svc.createAccount(ctx, ns.Name, ns.Email, ns.Password, ns.Phone, photoURL)
	if err != nil {
		return Student{}, err
	}

	claims := identitysvc.Claims{Student: true, OrgID: orgID}
	if err = svc.identity.SetClaims(ctx, acct.UID, claims); err != nil {
		svc.rollbackIdentity(ctx, acct.UID)
		return Student{}, errors.Wrap(err, "setting student claims")
	}

	now := time.Now().UTC()
	s := Student{
		UID:           acct.UID,
		OrgID:         orgID,
		Name:          ns.Name,
		Email:         ns.Email,
		Phone:         acct.PhoneNumber,
		PhotoURL:      photoURL,
		GradeID:       ns.GradeID,
		GuardianName:  ns.GuardianName,
		GuardianPhone: core.NormalizePhone(ns.GuardianPhone, core.Conf.PhoneCountryCode),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if s, err = svc.repo.CreateStudent(ctx, s); err != nil {
		svc.rollbackIdentity(ctx, acct.UID)
		return Student{}, errors.Wrap(err, "creating student")
	}

	if err = svc.orgs.IncrementUserCount(ctx, orgID, 1); err != nil {
		if delErr := svc.repo.DeleteStudent(ctx, s.UID); delErr != nil {
			svc.logger.Error(fmt.Sprintf("rolling back student %s: %v", s.UID, delErr), delErr)
		}
		svc.rollbackIdentity(ctx, acct.UID)
		return Student{}, errors.Wrap(err, "incrementing user count")
	}

	svc.sendWelcomeEmail(ns.Name, ns.Email, ns.Password)
	return s, nil
}

func (svc *Service) GetTeacher(ctx context.Context, uid string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, uid)
}

func (svc *Service) QueryTeachers(ctx context.Context, orgID string) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, orgID)
}

func (svc *Service) GetStudent(ctx context.Context, uid string) (Student, error) {
	return svc.repo.GetStudent(ctx, uid)
}

func (svc *Service) QueryStudents(ctx context.Context, orgID string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, orgID)
}

func (svc *Service) checkUserLimit(ctx context.Context, orgID string) error {
	o, err := svc.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return errors.Wrap(err, "getting organization")
	}
	if o.UserLimit > 0 && o.UserCount >= o.UserLimit {
		return errUserLimitReached
	}
	return nil
}

func (svc *Service) uploadPhoto(ctx context.Context, orgID, kind, dataURI string) (string, error) {
	if dataURI == "" {
		return "", nil
	}
	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	jpg, err := processPhoto(raw)
	if err != nil {
		return "", err
	}
	path := fmt.Sprintf("orgs/%s/%s/%s.jpg", orgID, kind, uuid.New().String())
	url, err := svc.store.Put(ctx, path, jpg, "image/jpeg")
	if err != nil {
		return "", errors.Wrap(err, "uploading photo")
	}
	return url, nil
}

func (svc *Service) createAccount(ctx context.Context, name, email, password, phone, photoURL string) (identitysvc.Account, error) {
	acct, err := svc.identity.CreateAccount(ctx, identitysvc.NewAccount{
		Email:       email,
		Password:    password,
		DisplayName: name,
		PhotoURL:    photoURL,
		PhoneNumber: core.NormalizePhone(phone, core.Conf.PhoneCountryCode),
	})
	if err != nil {
		return identitysvc.Account{}, errors.Wrap(err, "creating identity account")
	}
	return acct, nil
}

func (svc *Service) rollbackIdentity(ctx context.Context, uid string) {
	if err := svc.identity.DeleteAccount(ctx, uid); err != nil {
		svc.logger.Error(fmt.Sprintf("rolling back identity account %s: %v", uid, err), err)
	}
}

func (svc *Service) sendWelcomeEmail(name, email, password string) {
	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: email}},
		Subject:      "Welcome to " + core.Conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct {
			Name     string
			Email    string
			Password string
		}{name, email, password},
	})
}
