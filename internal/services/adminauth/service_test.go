package adminauth

import (
	"errors"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken(42, RoleModerator, "sam")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("token should expire in the future")
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Role != RoleModerator || claims.Username != "sam" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService("test-secret", time.Minute)
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.GenerateAccessToken(42, RoleAdmin, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	verifier := NewService("secret-b", time.Hour)

	token, _, err := issuer.GenerateAccessToken(42, RoleAdmin, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUnconfiguredServiceUnavailable(t *testing.T) {
	svc := NewService("  ", time.Hour)

	if _, _, err := svc.GenerateAccessToken(1, RoleAdmin, ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.ValidateAccessToken("whatever"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRoleChecks(t *testing.T) {
	tests := []struct {
		role        string
		canModerate bool
		isAdmin     bool
	}{
		{role: RoleAdmin, canModerate: true, isAdmin: true},
		{role: RoleModerator, canModerate: true},
		{role: RoleVendor},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			id := Identity{UserID: 1, Role: tt.role}
			if id.CanModerate() != tt.canModerate {
				t.Fatalf("CanModerate() = %v", id.CanModerate())
			}
			if id.IsAdmin() != tt.isAdmin {
				t.Fatalf("IsAdmin() = %v", id.IsAdmin())
			}
		})
	}
}
