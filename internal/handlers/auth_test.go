package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/models"
)

// TestRefreshTokenUsable проверяет условия повторного использования refresh-токена.
func TestRefreshTokenUsable(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	revokedAt := now.Add(-time.Hour)

	valid := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: auth.HashToken("refresh"),
		ExpiresAt: now.Add(time.Hour),
	}

	expired := valid
	expired.ExpiresAt = now

	revoked := valid
	revoked.RevokedAt = &revokedAt

	cases := []struct {
		name   string
		stored models.RefreshToken
		userID uuid.UUID
		token  string
		want   bool
	}{
		{"valid", valid, userID, "refresh", true},
		{"expired", expired, userID, "refresh", false},
		{"revoked", revoked, userID, "refresh", false},
		{"other user", valid, uuid.New(), "refresh", false},
		{"other token", valid, userID, "refresh2", false},
	}

	for _, tc := range cases {
		if got := refreshTokenUsable(tc.stored, tc.userID, tc.token, now); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

// TestNormalizeName проверяет обрезку пробелов и пустые значения.
func TestNormalizeName(t *testing.T) {
	if normalizeName(nil) != nil {
		t.Fatal("expected nil for nil input")
	}

	blank := "   "
	if normalizeName(&blank) != nil {
		t.Fatal("expected nil for blank input")
	}

	name := "  Anna "
	if got := normalizeName(&name); got == nil || *got != "Anna" {
		t.Fatalf("unexpected name %v", got)
	}
}

// TestRegisterValidation проверяет отказ до обращения к хранилищу.
func TestRegisterValidation(t *testing.T) {
	e := newTestEcho(t)
	handler := NewAuthHandler(nil, nil, nil)

	for name, body := range map[string]string{
		"bad email":      `{"email":"nope","password":"password1"}`,
		"short password": `{"email":"a@b.co","password":"short"}`,
		"malformed":      `{"email":`,
	} {
		c, rec := newContext(e, http.MethodPost, "/api/v1/auth/register", body, uuid.Nil)
		if err := handler.Register(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}
