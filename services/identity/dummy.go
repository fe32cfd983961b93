package identitysvc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DummyService is an in-memory identity provider for dev & tests.
// The Fail* knobs make specific calls fail to exercise rollback paths.
type DummyService struct {
	mutex  sync.RWMutex
	accts  map[string]*Account // keyed by UID
	hashes map[string][]byte   // keyed by UID
	claims map[string]Claims   // keyed by UID

	FailCreateAccount error
	FailSetClaims     error
	FailDeleteAccount error
}

var _ Service = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{
		accts:  make(map[string]*Account),
		hashes: make(map[string][]byte),
		claims: make(map[string]Claims),
	}
}

func (svc *DummyService) CreateAccount(_ context.Context, acct NewAccount) (Account, error) {
	if svc.FailCreateAccount != nil {
		return Account{}, svc.FailCreateAccount
	}

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for _, a := range svc.accts {
		if a.Email == acct.Email {
			return Account{}, ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.MinCost)
	if err != nil {
		return Account{}, err
	}

	created := Account{
		UID:         uuid.New().String(),
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		PhotoURL:    acct.PhotoURL,
		PhoneNumber: acct.PhoneNumber,
	}
	svc.accts[created.UID] = &created
	svc.hashes[created.UID] = hash
	return created, nil
}

func (svc *DummyService) GetAccount(_ context.Context, uid string) (Account, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	if acct, ok := svc.accts[uid]; ok {
		return *acct, nil
	}
	return Account{}, ErrAccountNotFound
}

func (svc *DummyService) SetClaims(_ context.Context, uid string, claims Claims) error {
	if svc.FailSetClaims != nil {
		return svc.FailSetClaims
	}

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if _, ok := svc.accts[uid]; !ok {
		return ErrAccountNotFound
	}
	svc.claims[uid] = claims
	return nil
}

func (svc *DummyService) DeleteAccount(_ context.Context, uid string) error {
	if svc.FailDeleteAccount != nil {
		return svc.FailDeleteAccount
	}

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if _, ok := svc.accts[uid]; !ok {
		return ErrAccountNotFound
	}
	delete(svc.accts, uid)
	delete(svc.hashes, uid)
	delete(svc.claims, uid)
	return nil
}

// GetClaims returns the custom claims attached to an account. Test helper.
func (svc *DummyService) GetClaims(uid string) (Claims, bool) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	claims, ok := svc.claims[uid]
	return claims, ok
}

// CheckPassword verifies an account's password. Test helper.
func (svc *DummyService) CheckPassword(uid, pwd string) error {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return bcrypt.CompareHashAndPassword(svc.hashes[uid], []byte(pwd))
}
