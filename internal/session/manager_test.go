// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/lensfolio/lensfolio/internal/apiclient"
)

const (
	loginOK = `{"success":true,"data":{"user":{"id":"1","email":"admin@portfolio.com","name":"Admin","role":"admin"},"token":"tok123"}}`
	meOK    = `{"success":true,"data":{"id":"1","email":"admin@portfolio.com","name":"Admin","role":"admin"}}`
)

// testManager wires a Manager against an httptest API double and
// returns a context with a loaded (empty) session.
func testManager(t *testing.T, handler http.Handler) (*Manager, context.Context) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sm := scs.New()
	api := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api"})
	m := NewManager(sm, api, nil)

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return m, ctx
}

func TestLoginSuccess(t *testing.T) {
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(loginOK))
	}))

	if err := m.Login(ctx, "admin@portfolio.com", "admin123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if !m.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false after successful login")
	}
	if got := m.Token(ctx); got != "tok123" {
		t.Errorf("Token() = %q, want %q", got, "tok123")
	}
	if got := m.AuthError(ctx); got != "" {
		t.Errorf("AuthError() = %q, want empty", got)
	}
	if user := m.CachedUser(ctx); user == nil || user.Email != "admin@portfolio.com" {
		t.Errorf("CachedUser() = %+v, want admin@portfolio.com", user)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	}))

	if err := m.Login(ctx, "admin@portfolio.com", "wrong"); err == nil {
		t.Fatal("Login() error = nil, want failure")
	}

	if m.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after failed login")
	}
	if got := m.Token(ctx); got != "" {
		t.Errorf("Token() = %q, want empty (unchanged)", got)
	}
	if got := m.AuthError(ctx); got != "Invalid credentials" {
		t.Errorf("AuthError() = %q, want %q", got, "Invalid credentials")
	}
}

func TestFailedLoginLeavesExistingSessionIntact(t *testing.T) {
	var fail atomic.Bool
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(loginOK))
	}))

	if err := m.Login(ctx, "admin@portfolio.com", "admin123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	fail.Store(true)
	if err := m.Login(ctx, "admin@portfolio.com", "typo"); err == nil {
		t.Fatal("second Login() error = nil, want failure")
	}

	// No partial mutation on failure: previous token and user survive.
	if got := m.Token(ctx); got != "tok123" {
		t.Errorf("Token() = %q, want previous token preserved", got)
	}
	if !m.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = false, want previous session preserved")
	}
}

func TestLoginValidatesInput(t *testing.T) {
	var calls atomic.Int32
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	if err := m.Login(ctx, "", "secret"); err == nil {
		t.Error("Login(empty email) error = nil, want validation failure")
	}
	if err := m.Login(ctx, "a@b.c", ""); err == nil {
		t.Error("Login(empty password) error = nil, want validation failure")
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("API calls = %d, want 0 for validation failures", got)
	}
	if got := m.AuthError(ctx); got == "" {
		t.Error("AuthError() empty, want validation message")
	}
}

func TestClearErrorIdempotent(t *testing.T) {
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_ = m.Login(ctx, "a@b.c", "bad")
	if m.AuthError(ctx) == "" {
		t.Fatal("AuthError() empty after failed login")
	}

	m.ClearError(ctx)
	if got := m.AuthError(ctx); got != "" {
		t.Errorf("AuthError() = %q after ClearError, want empty", got)
	}

	// Clearing an already-clear error changes nothing.
	m.ClearError(ctx)
	if got := m.AuthError(ctx); got != "" {
		t.Errorf("AuthError() = %q after second ClearError, want empty", got)
	}
	if m.IsAuthenticated(ctx) || m.Token(ctx) != "" {
		t.Error("ClearError must not touch token or user")
	}
}

func TestCurrentUserRestoresFromToken(t *testing.T) {
	var meCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Write([]byte(loginOK))
		case "/api/auth/me":
			meCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer tok123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(meOK))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)

	sm := scs.New()
	api := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api"})
	m := NewManager(sm, api, nil)

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	if err := m.Login(ctx, "admin@portfolio.com", "admin123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	// Persist the session, then load it fresh as a reloaded process
	// would: the token survives, the identity is re-fetched once.
	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("committing session: %v", err)
	}

	ctx2, err := sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}

	user, err := m.CurrentUser(ctx2)
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if user.Email != "admin@portfolio.com" {
		t.Errorf("restored user = %q, want original identity", user.Email)
	}
	if got := meCalls.Load(); got != 0 {
		// User cache travels with the session, so no fetch was needed.
		t.Errorf("me calls = %d, want 0 with cached user", got)
	}

	// Drop the cache but keep the token: the restoring path fetches once.
	sm.Remove(ctx2, keyUser)
	if _, err := m.CurrentUser(ctx2); err != nil {
		t.Fatalf("CurrentUser() after cache drop: %v", err)
	}
	if got := meCalls.Load(); got != 1 {
		t.Errorf("me calls = %d, want 1", got)
	}

	// Cached again: further calls stay local.
	if _, err := m.CurrentUser(ctx2); err != nil {
		t.Fatalf("CurrentUser() with cache: %v", err)
	}
	if got := meCalls.Load(); got != 1 {
		t.Errorf("me calls = %d, want still 1", got)
	}
}

func TestCurrentUserInvalidTokenClearsSession(t *testing.T) {
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid or expired token"}`))
	}))

	m.Sessions().Put(ctx, keyToken, "stale-token")

	_, err := m.CurrentUser(ctx)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("CurrentUser() error = %v, want ErrUnauthorized", err)
	}

	// The token must be gone so the gate resolves to a redirect
	// instead of looping in a restoring state.
	if got := m.Token(ctx); got != "" {
		t.Errorf("Token() = %q after invalidation, want empty", got)
	}
	if _, err := m.CurrentUser(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("CurrentUser() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestLogoutClearsStateEvenWhenAPIFails(t *testing.T) {
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(loginOK))
	}))

	if err := m.Login(ctx, "admin@portfolio.com", "admin123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	m.Logout(ctx)

	if m.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after logout")
	}
	if got := m.Token(ctx); got != "" {
		t.Errorf("Token() = %q after logout, want empty", got)
	}
}

func TestInvalidate(t *testing.T) {
	m, ctx := testManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginOK))
	}))

	if err := m.Login(ctx, "admin@portfolio.com", "admin123"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	m.Invalidate(ctx)

	if m.IsAuthenticated(ctx) {
		t.Error("IsAuthenticated() = true after Invalidate")
	}
	if got := m.Token(ctx); got != "" {
		t.Errorf("Token() = %q after Invalidate, want empty", got)
	}
}
