package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andresfq/registry-backend/internal/catalog"
	"github.com/andresfq/registry-backend/internal/users"
	"github.com/andresfq/registry-backend/pkg/config"
	"github.com/andresfq/registry-backend/pkg/db/models"
	"github.com/andresfq/registry-backend/pkg/logger"
	"github.com/andresfq/registry-backend/pkg/pagination"
	"github.com/andresfq/registry-backend/pkg/storage/photos"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data"`
	Message    string           `json:"message"`
	Errors     map[string]any   `json:"errors"`
	Pagination *pagination.Meta `json:"pagination"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.AutoMigrate(
		&models.Institution{},
		&models.AcademicProgram{},
		&models.DocumentType{},
		&models.Gender{},
		&models.UserType{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := photos.NewStore(config.StorageConfig{PhotoDir: t.TempDir()})
	if err != nil {
		t.Fatalf("photo store: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	return NewRouter(cfg, logg, stubPinger{}, nil, nil, nil, Services{
		Institutions:  catalog.NewInstitutionService(database, logg),
		Programs:      catalog.NewProgramService(database, logg),
		DocumentTypes: catalog.NewDocumentTypeService(database, logg),
		Genders:       catalog.NewGenderService(database, logg),
		UserTypes:     catalog.NewUserTypeService(database, logg),
		Users:         users.NewService(database, store, passwordCfg, logg),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 {
		if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %s %s: %v (%s)", method, path, err, resp.Body.String())
		}
	}
	return resp, env
}

func dataField(t *testing.T, env envelope, key string) any {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data)
	}
	return data[key]
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	resp, env := doJSON(t, router, http.MethodGet, "/health/live", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !env.Success {
		t.Fatalf("expected success envelope")
	}
}

func TestHealthReadyWithoutRedis(t *testing.T) {
	router := newTestRouter(t)
	resp, env := doJSON(t, router, http.MethodGet, "/health/ready", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	checks, ok := dataField(t, env, "checks").(map[string]any)
	if !ok {
		t.Fatalf("expected checks map")
	}
	if checks["database"] != "ok" {
		t.Fatalf("expected database ok, got %v", checks)
	}
	if _, hasRedis := checks["redis"]; hasRedis {
		t.Fatalf("redis check should be absent when no cache is wired")
	}
}

func TestInstitutionCreateGetAndValidation(t *testing.T) {
	router := newTestRouter(t)

	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/institutions",
		`{"name":"Tech Institute","acronym":"TI","city":"Medellin","country":"Colombia"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	id := dataField(t, env, "uuid").(string)

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/institutions/"+id, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := dataField(t, env, "name"); got != "Tech Institute" {
		t.Fatalf("unexpected name %v", got)
	}

	resp, env = doJSON(t, router, http.MethodPost, "/api/v1/institutions", `{"acronym":"NN"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if env.Errors == nil {
		t.Fatalf("expected field errors for missing name")
	}

	resp, _ = doJSON(t, router, http.MethodPost, "/api/v1/institutions",
		`{"name":"Tech Institute","country":"Colombia"}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name got %d", resp.Code)
	}
}

func TestInstitutionDeleteBlockedByProgram(t *testing.T) {
	router := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/institutions",
		`{"name":"Tech Institute","country":"Colombia"}`)
	institutionID := dataField(t, env, "uuid").(string)

	resp, _ := doJSON(t, router, http.MethodPost, "/api/v1/academic-programs",
		`{"name":"Systems Engineering","code":"sys-01","institution_id":"`+institutionID+`"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}

	resp, env = doJSON(t, router, http.MethodDelete, "/api/v1/institutions/"+institutionID, "")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if env.Success {
		t.Fatalf("expected success=false")
	}
	if !strings.Contains(env.Message, "academic programs") {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestUserLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/document-types", `{"name":"Passport","code":"PP"}`)
	docTypeID := dataField(t, env, "uuid").(string)
	_, env = doJSON(t, router, http.MethodPost, "/api/v1/user-types", `{"type":"Student"}`)
	userTypeID := dataField(t, env, "uuid").(string)

	body := fmt.Sprintf(`{
		"first_name":"Ana","last_name":"Diaz","email":"ana@example.com",
		"password":"sup3r-secret","document_number":"100",
		"document_type_id":%q,"user_type_id":%q,
		"status":"pending","accepted_terms":true
	}`, docTypeID, userTypeID)
	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/users", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "sup3r-secret") {
		t.Fatalf("password leaked into response")
	}
	if _, hasPassword := env.Data.(map[string]any)["password"]; hasPassword {
		t.Fatalf("password field must never be serialized")
	}
	userID := dataField(t, env, "uuid").(string)
	if got := dataField(t, env, "status"); got != "pending" {
		t.Fatalf("expected pending status got %v", got)
	}

	resp, env = doJSON(t, router, http.MethodGet, "/api/v1/users?search=ana", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env.Pagination == nil || env.Pagination.Total != 1 {
		t.Fatalf("expected pagination with total 1, got %+v", env.Pagination)
	}

	resp, env = doJSON(t, router, http.MethodPatch, "/api/v1/users/"+userID+"/toggle-status", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := dataField(t, env, "status"); got != "active" {
		t.Fatalf("expected active status got %v", got)
	}

	resp, env = doJSON(t, router, http.MethodDelete, "/api/v1/users/"+userID, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env.Message == "" {
		t.Fatalf("expected confirmation message")
	}

	resp, _ = doJSON(t, router, http.MethodGet, "/api/v1/users/"+userID, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", resp.Code)
	}
}

func TestUserCreateRequiresStatusAndAcceptedTerms(t *testing.T) {
	router := newTestRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/document-types", `{"name":"Passport","code":"PP"}`)
	docTypeID := dataField(t, env, "uuid").(string)
	_, env = doJSON(t, router, http.MethodPost, "/api/v1/user-types", `{"type":"Student"}`)
	userTypeID := dataField(t, env, "uuid").(string)

	body := fmt.Sprintf(`{
		"first_name":"Ana","last_name":"Diaz","email":"ana@example.com",
		"password":"sup3r-secret","document_number":"100",
		"document_type_id":%q,"user_type_id":%q
	}`, docTypeID, userTypeID)
	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/users", body)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d (%s)", resp.Code, resp.Body.String())
	}
	if _, ok := env.Errors["status"]; !ok {
		t.Fatalf("expected a status field error, got %v", env.Errors)
	}
	if _, ok := env.Errors["accepted_terms"]; !ok {
		t.Fatalf("expected an accepted_terms field error, got %v", env.Errors)
	}
}

func TestUnknownUserReturns404(t *testing.T) {
	router := newTestRouter(t)
	resp, env := doJSON(t, router, http.MethodGet, "/api/v1/users/999", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if env.Success {
		t.Fatalf("expected success=false")
	}
}

func TestUserStatisticsRoute(t *testing.T) {
	router := newTestRouter(t)
	resp, env := doJSON(t, router, http.MethodGet, "/api/v1/users/statistics", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := dataField(t, env, "total_users"); got != float64(0) {
		t.Fatalf("expected zero users got %v", got)
	}
}

func TestSelectEndpointsReturnOptions(t *testing.T) {
	router := newTestRouter(t)

	_, _ = doJSON(t, router, http.MethodPost, "/api/v1/genders", `{"name":"Female"}`)

	resp, env := doJSON(t, router, http.MethodGet, "/api/v1/genders-select", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	options, ok := env.Data.([]any)
	if !ok || len(options) != 1 {
		t.Fatalf("expected one option, got %v", env.Data)
	}
}
