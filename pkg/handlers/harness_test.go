package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"org-registry-backend/pkg/api"
	"org-registry-backend/pkg/config"
	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/utils"
)

// envelope mirrors utils.APIResponse with the data kept raw so each test
// decodes only the part it asserts on.
type envelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   *utils.APIError            `json:"error"`
}

func newTestServer(t *testing.T) (http.Handler, *database.MemoryStore) {
	t.Helper()

	cfg := &config.Config{
		Environment:    "test",
		Port:           "3000",
		JWTSecret:      "test-secret",
		AllowedOrigins: []string{"*"},
	}
	db := database.NewMemoryStore()
	return api.NewRouter(cfg, db, nil), db
}

// doJSON drives one request through the router. token may be empty for the
// public endpoints; body may be nil.
func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode envelope from %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

// doRaw sends a literal body with no Content-Type header.
func doRaw(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode envelope from %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

// registerAndLogin creates an account and returns its access token.
func registerAndLogin(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}

	rec, env := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	var token string
	if err := json.Unmarshal(env.Data["access_token"], &token); err != nil {
		t.Fatalf("login %s: no access_token in %s", email, rec.Body.String())
	}
	return token
}

// createOrganization returns the new organization's id.
func createOrganization(t *testing.T, h http.Handler, token, title string) string {
	t.Helper()

	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs", token, map[string]interface{}{
		"title":   title,
		"address": "1 Main St",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create organization %q: status %d, body %s", title, rec.Code, rec.Body.String())
	}
	var org struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data["organization"], &org); err != nil || org.ID == "" {
		t.Fatalf("create organization %q: bad payload %s", title, rec.Body.String())
	}
	return org.ID
}

// createEmployee returns the new employee's id.
func createEmployee(t *testing.T, h http.Handler, token string, fields map[string]string) string {
	t.Helper()

	rec, env := doJSON(t, h, http.MethodPost, "/api/employees", token, fields)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create employee: status %d, body %s", rec.Code, rec.Body.String())
	}
	var e struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data["employee"], &e); err != nil || e.ID == "" {
		t.Fatalf("create employee: bad payload %s", rec.Body.String())
	}
	return e.ID
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func wantErrorCode(t *testing.T, env envelope, code string) {
	t.Helper()
	if env.Success {
		t.Fatal("response reports success, want error")
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}
