package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/nelc/eoxnelp/apps/api/echo"
	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/certificate"
	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/progress"
	"github.com/nelc/eoxnelp/core/registration"
	"github.com/nelc/eoxnelp/core/user"
	"github.com/nelc/eoxnelp/services/edxapp/memory"
	"github.com/nelc/eoxnelp/storage/database/inmem"
	"github.com/nelc/eoxnelp/tests"
)

const (
	courseID      = "course-v1:NELC+P101+2024"
	otherCourseID = "course-v1:NELC+P102+2024"
	nationalID    = "1234567890"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type apiErr struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// fakeCertificates records the certificates sent to the external service.
type fakeCertificates struct {
	mu   sync.Mutex
	sent []certificate.External
}

func (f *fakeCertificates) CreateExternalCertificate(_ context.Context, cert certificate.External) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cert)
	return map[string]interface{}{"id": cert.ID, "status": "created"}, nil
}

func (f *fakeCertificates) Sent() []certificate.External {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]certificate.External(nil), f.sent...)
}

// fakeFuturex records the progress data pushed to futurex.
type fakeFuturex struct {
	mu   sync.Mutex
	sent []progress.Data
}

func (f *fakeFuturex) EnrollmentProgress(_ context.Context, data progress.Data) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return map[string]interface{}{"status": "ok"}, nil
}

func (f *fakeFuturex) BaseURL() string { return "https://futurex.test" }

func (f *fakeFuturex) Sent() []progress.Data {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]progress.Data(nil), f.sent...)
}

type fixture struct {
	conf         *core.Config
	deps         ServerDeps
	app          *Server
	users        user.Repository
	platform     *memedxapp.Platform
	logger       *testutil.Logger
	certificates *fakeCertificates
	futurex      *fakeFuturex
	dispatcher   *progress.Dispatcher
}

func newTestConfig() *core.Config {
	conf := &core.Config{
		AppName:   "eox-nelp",
		Version:   "4.0.0",
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Registration: core.RegistrationConfig{
			ExtendedProfileFields: []string{"national_id", "arabic_name"},
			Translations: map[string]map[string]string{
				"ar": {"national_id": "رقم الهوية", "arabic_name": "الاسم بالعربية"},
				"es": {"national_id": "número NACIONAL"},
			},
		},
		Certificates: core.CertificatesConfig{
			GroupCodes: map[string]string{courseID: "G-101"},
		},
	}
	conf.SetFeature(program.FeatureOtherCourseSettings, true)
	return conf
}

func setup(t *testing.T) *fixture {
	f := &fixture{
		conf:         newTestConfig(),
		users:        inmemdb.NewUserRepository(inmemdb.Open()),
		platform:     memedxapp.New(),
		logger:       testutil.NewLogger(),
		certificates: &fakeCertificates{},
		futurex:      &fakeFuturex{},
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	records, err := program.NewRecordValidator()
	require.NoError(t, err)

	platform := f.platform.Edxapp()
	usrSvc := user.NewService(f.users)
	conv := program.NewConverter(f.logger, program.UmmAlQura{})

	f.dispatcher = progress.NewDispatcher(
		progress.NewGenerator(usrSvc, platform, conv, f.logger),
		usrSvc, platform.Grades, f.futurex, f.logger, 1,
	)
	t.Cleanup(f.dispatcher.Close)

	f.deps = ServerDeps{
		Conf:       f.conf,
		Logger:     f.logger,
		UserSvc:    usrSvc,
		ProgramSvc: program.NewService(platform, conv, records, f.logger),
		Registry:   registration.NewRegistry(f.conf.Registration),
		Validate:   validate,
		Translator: translator,
		Certificates: certificate.NewReceiver(
			certificate.NewGenerator(usrSvc, platform.Grades, f.conf.Certificates.GroupCodes),
			f.certificates,
			f.logger,
		),
		Progress:       f.dispatcher,
		DisableReqLogs: true,
	}
	f.app = NewServer(f.deps)
	return f
}

func (f *fixture) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	f.app.ServeHTTP(rec, req)
}

func (f *fixture) token(t *testing.T, usr user.User) string {
	return getToken(t, f.conf, usr)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
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

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
