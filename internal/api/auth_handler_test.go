package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ongelEstate/internal/auth"
	"ongelEstate/internal/database"
)

type fakeLimiter struct {
	failures map[string]int
	blocked  bool
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{failures: map[string]int{}}
}

func (l *fakeLimiter) Allowed(_ context.Context, _ string) (bool, error) {
	return !l.blocked, nil
}

func (l *fakeLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *fakeLimiter) Reset(_ context.Context, email string) error {
	delete(l.failures, email)
	return nil
}

func newLoginFixture(t *testing.T) (*AuthHandler, *fakeLimiter, database.User) {
	t.Helper()
	db := newTestDB(t)
	svc, err := auth.NewAuthService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	limiter := newFakeLimiter()
	h := NewAuthHandler(db, svc, limiter)

	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := database.User{
		Email:        "agent@example.com",
		PasswordHash: hash,
		FirstName:    "Agent",
		LastName:     "One",
		Role:         database.RoleAgent,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return h, limiter, user
}

func TestLogin_Success(t *testing.T) {
	h, limiter, user := newLoginFixture(t)

	// A stale failure counter for this client is cleared on success.
	// httptest requests always come from 192.0.2.1.
	limiterKey := auth.LoginKey("192.0.2.1", user.Email)
	limiter.failures[limiterKey] = 3

	w := httptest.NewRecorder()
	h.Login(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "Agent@Example.com",
		"password": "correct-horse",
	})))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decodeBody[loginResponse](t, w)
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expiresIn = %d, want 3600", resp.ExpiresIn)
	}
	if resp.User.Email != user.Email {
		t.Fatalf("user = %s", resp.User.Email)
	}
	if auth.IsExpired(resp.AccessToken, time.Now()) {
		t.Fatal("fresh token reported expired")
	}
	if _, ok := limiter.failures[limiterKey]; ok {
		t.Fatal("failure counter not reset on success")
	}
}

func TestLogin_WrongPasswordCountsFailure(t *testing.T) {
	h, limiter, user := newLoginFixture(t)

	w := httptest.NewRecorder()
	h.Login(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    user.Email,
		"password": "wrong",
	})))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	key := auth.LoginKey("192.0.2.1", user.Email)
	if limiter.failures[key] != 1 {
		t.Fatalf("failures = %d, want 1", limiter.failures[key])
	}
}

func TestLogin_UnknownEmailSameResponse(t *testing.T) {
	h, _, _ := newLoginFixture(t)

	w := httptest.NewRecorder()
	h.Login(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever",
	})))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLogin_DeactivatedAccountRejected(t *testing.T) {
	h, _, user := newLoginFixture(t)
	if err := h.db.Model(&database.User{}).Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	w := httptest.NewRecorder()
	h.Login(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    user.Email,
		"password": "correct-horse",
	})))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLogin_LockedOut(t *testing.T) {
	h, limiter, user := newLoginFixture(t)
	limiter.blocked = true

	w := httptest.NewRecorder()
	h.Login(newPublicContext(t, w, newJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    user.Email,
		"password": "correct-horse",
	})))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	h, _, user := newLoginFixture(t)

	w := httptest.NewRecorder()
	c := newAuthedContext(t, w, user, newJSONRequest(t, http.MethodPost, "/api/auth/change-password", map[string]any{
		"currentPassword": "correct-horse",
		"newPassword":     "battery-staple",
	}))
	h.ChangePassword(c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var reloaded database.User
	if err := h.db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !auth.CheckPasswordHash("battery-staple", reloaded.PasswordHash) {
		t.Fatal("new password not stored")
	}

	// Wrong current password is rejected.
	w = httptest.NewRecorder()
	c = newAuthedContext(t, w, user, newJSONRequest(t, http.MethodPost, "/api/auth/change-password", map[string]any{
		"currentPassword": "correct-horse",
		"newPassword":     "another-one-12",
	}))
	h.ChangePassword(c)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
