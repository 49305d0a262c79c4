package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
)

func TestRequireRoleAllowsCaseInsensitiveMatch(t *testing.T) {
	mw := RequireRole("ADMIN", "MODERATOR")

	req := httptest.NewRequest(http.MethodGet, "/v1/moderation/queue", nil)
	req = req.WithContext(adminauth.WithIdentity(context.Background(), adminauth.Identity{
		UserID:   1,
		Role:     "moderator",
		Username: "mod-1",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsForbiddenRole(t *testing.T) {
	mw := RequireRole("ADMIN", "MODERATOR")

	req := httptest.NewRequest(http.MethodGet, "/v1/moderation/queue", nil)
	req = req.WithContext(adminauth.WithIdentity(context.Background(), adminauth.Identity{
		UserID:   2,
		Role:     "vendor",
		Username: "shop-2",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for forbidden role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireRoleRejectsMissingIdentity(t *testing.T) {
	mw := RequireRole("ADMIN")

	req := httptest.NewRequest(http.MethodGet, "/v1/strikes", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	authService := adminauth.NewService("test-secret", 0)
	token, _, err := authService.GenerateAccessToken(7, adminauth.RoleAdmin, "root")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	mw := AuthMiddleware(authService, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/moderation/queue", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := adminauth.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != 7 || identity.Role != adminauth.RoleAdmin {
			t.Fatalf("identity mismatch: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	authService := adminauth.NewService("test-secret", 0)
	mw := AuthMiddleware(authService, nil)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/moderation/queue", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				t.Fatalf("handler must not be called")
			})).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}
