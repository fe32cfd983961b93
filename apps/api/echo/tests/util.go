package tests

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core/gradebook"
	"github.com/shulehub/shule/core/load"
	"github.com/shulehub/shule/core/org"
	"github.com/shulehub/shule/core/person"
	"github.com/shulehub/shule/core/refdata"
	"github.com/shulehub/shule/services/email"
	"github.com/shulehub/shule/services/identity"
	"github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/services/objectstore"
	"github.com/shulehub/shule/storage/database/inmem"
	"github.com/shulehub/shule/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type fixture struct {
	app Server

	db         *inmemdb.DB
	orgRepo    org.Repository
	personRepo person.Repository
	refRepo    refdata.Repository
	loadRepo   load.Repository

	identity *identitysvc.DummyService
	mail     *emailsvc.DummyService
}

func setup(t *testing.T) fixture {
	t.Helper()

	// set up DB & repos
	db := inmemdb.NewDB()
	orgRepo := inmemdb.NewOrgRepository(db)
	personRepo := inmemdb.NewPersonRepository(db)
	refRepo := inmemdb.NewRefDataRepository(db)
	loadRepo := inmemdb.NewLoadRepository(db)
	gradebookRepo := inmemdb.NewGradebookRepository(db)

	// set up services
	idSvc := identitysvc.NewDummyService()
	store := storesvc.NewDummyService()
	mailSvc := emailsvc.NewDummyService()
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	validate, translator := testutil.NewValidator()

	// set up server
	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			OrgSvc:         org.NewService(orgRepo, idSvc, store, logger),
			PersonSvc:      person.NewService(personRepo, orgRepo, idSvc, store, mailSvc, logger),
			RefDataSvc:     refdata.NewService(refRepo),
			LoadSvc:        load.NewService(loadRepo, personRepo, refRepo),
			GradebookSvc:   gradebook.NewService(gradebookRepo, loadRepo, personRepo),
		},
	)

	return fixture{
		app:        app,
		db:         db,
		orgRepo:    orgRepo,
		personRepo: personRepo,
		refRepo:    refRepo,
		loadRepo:   loadRepo,
		identity:   idSvc,
		mail:       mailSvc,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newFormRequest builds a urlencoded-form request; the org creation
// endpoint reads form values rather than a JSON body.
func newFormRequest(method, path, token string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, uid string, claims identitysvc.Claims) string {
	token, err := GenerateToken(GetAccountClaims(uid, claims))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func superAdminToken(t *testing.T) string {
	return getToken(t, "super-uid", identitysvc.Claims{SuperAdmin: true})
}

func adminToken(t *testing.T, uid, orgID string) string {
	return getToken(t, uid, identitysvc.Claims{Admin: true, OrgID: orgID})
}

func teacherToken(t *testing.T, uid, orgID string) string {
	return getToken(t, uid, identitysvc.Claims{Teacher: true, OrgID: orgID})
}

func studentToken(t *testing.T, uid, orgID string) string {
	return getToken(t, uid, identitysvc.Claims{Student: true, OrgID: orgID})
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decodeObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("decodeObj() failed: %v; body = %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) {
	t.Helper()
	if rec.Code != wantCode {
		t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, wantCode, rec.Body.String())
	}
}
