package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fusionfit/storefront/pkg/auth"
	"github.com/fusionfit/storefront/pkg/middleware"
	"github.com/fusionfit/storefront/pkg/rbac"
)

func identityEcho(t *testing.T, wantID, wantRole string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.UserIDFromCtx(r)
		if !ok || id != wantID {
			t.Errorf("user id = %q, %v", id, ok)
		}
		role, ok := middleware.RoleFromCtx(r)
		if !ok || role != wantRole {
			t.Errorf("role = %q, %v", role, ok)
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	token, err := auth.GenerateToken("64f000000000000000000001", "customer")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := middleware.Auth(identityEcho(t, "64f000000000000000000001", "customer"))
	req := httptest.NewRequest(http.MethodGet, "/api/order", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	handler := middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/order", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", c.name, rec.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: bad body: %v", c.name, err)
		}
		if body["success"] != false {
			t.Fatalf("%s: success = %v", c.name, body["success"])
		}
	}
}

func TestHasRole(t *testing.T) {
	adminToken, _ := auth.GenerateToken("64f000000000000000000002", "admin")
	customerToken, _ := auth.GenerateToken("64f000000000000000000003", "customer")

	handler := middleware.Auth(rbac.HasRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer: status = %d, want 403", rec.Code)
	}
}
