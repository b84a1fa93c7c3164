package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        ttl,
		RefreshExpiry: 2 * ttl,
		Issuer:        "test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	token, jti, err := manager.GenerateAccessToken(42, "asha", 3)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a JTI")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "asha" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Fatalf("expected access token type, got %q", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Fatalf("expected token version 3, got %d", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Fatalf("claims ID %q does not match issued JTI %q", claims.ID, jti)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, _, err := manager.GenerateAccessToken(1, "asha", 0)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	manager := newTestManager(time.Hour)
	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Hour, Issuer: "test"})

	token, _, err := manager.GenerateAccessToken(1, "asha", 0)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	if _, err := manager.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	refreshToken, _, err := manager.GenerateRefreshToken(7, "asha", 1)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	accessToken, _, err := manager.RefreshAccessToken(refreshToken, 1)
	if err != nil {
		t.Fatalf("refresh access token: %v", err)
	}

	claims, err := manager.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("validate refreshed token: %v", err)
	}
	if claims.TokenType != "access" || claims.UserID != 7 {
		t.Fatalf("unexpected refreshed claims: %+v", claims)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	manager := newTestManager(time.Hour)

	accessToken, _, err := manager.GenerateAccessToken(7, "asha", 1)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	if _, _, err := manager.RefreshAccessToken(accessToken, 1); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken when refreshing with an access token, got %v", err)
	}
}
