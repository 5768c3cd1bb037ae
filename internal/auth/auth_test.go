// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coursecast/coursecast/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(Config{Secret: testSecret, AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func testUser() *models.User {
	return &models.User{ID: "u1", Username: "alice", Role: models.RoleInstructor}
}

func TestNewJWTManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTManager(Config{Secret: "short"}); err == nil {
		t.Error("NewJWTManager(short secret) error = nil, want error")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	m := newTestManager(t)

	pair, err := m.GenerateTokens(testUser())
	if err != nil {
		t.Fatalf("GenerateTokens() error = %v", err)
	}

	claims, err := m.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess() error = %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.Role != models.RoleInstructor {
		t.Errorf("claims = %+v, want u1/alice/instructor", claims)
	}

	if _, err := m.ValidateRefresh(pair.RefreshToken); err != nil {
		t.Errorf("ValidateRefresh() error = %v", err)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	m := newTestManager(t)
	pair, err := m.GenerateTokens(testUser())
	if err != nil {
		t.Fatalf("GenerateTokens() error = %v", err)
	}

	if _, err := m.ValidateAccess(pair.RefreshToken); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ValidateAccess(refresh token) error = %v, want ErrWrongTokenType", err)
	}
	if _, err := m.ValidateRefresh(pair.AccessToken); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("ValidateRefresh(access token) error = %v, want ErrWrongTokenType", err)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	m := newTestManager(t)
	pair, err := m.GenerateTokens(testUser())
	if err != nil {
		t.Fatalf("GenerateTokens() error = %v", err)
	}

	other, err := NewJWTManager(Config{Secret: strings.Repeat("x", 32)})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	if _, err := other.ValidateAccess(pair.AccessToken); err == nil {
		t.Error("ValidateAccess(wrong secret) error = nil, want failure")
	}

	if _, err := m.ValidateAccess(pair.AccessToken + "x"); err == nil {
		t.Error("ValidateAccess(tampered) error = nil, want failure")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret-pass" {
		t.Error("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("CheckPassword(correct) = false")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword(wrong) = true")
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	m := newTestManager(t)
	pair, err := m.GenerateTokens(testUser())
	if err != nil {
		t.Fatalf("GenerateTokens() error = %v", err)
	}

	var gotClaims *Claims
	handler := m.Authenticate(func(_ http.ResponseWriter, r *http.Request) {
		gotClaims = ClaimsFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID != "u1" {
		t.Errorf("claims = %+v, want user u1", gotClaims)
	}
}

func TestAuthenticateMiddlewareRejects(t *testing.T) {
	m := newTestManager(t)
	handler := m.Authenticate(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("handler called without valid token")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireInstructor(t *testing.T) {
	called := false
	handler := RequireInstructor(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	})

	// Learner is rejected.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithClaims(req.Context(), &Claims{UserID: "u1", Role: models.RoleLearner}))
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden || called {
		t.Errorf("learner: status = %d, called = %v, want 403 and not called", rec.Code, called)
	}

	// Instructor passes.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithClaims(req.Context(), &Claims{UserID: "u2", Role: models.RoleInstructor}))
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Errorf("instructor: status = %d, called = %v, want 200 and called", rec.Code, called)
	}
}
