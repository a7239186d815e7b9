// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/alexedwards/scs/v2"

	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/model"
	"github.com/lensfolio/lensfolio/internal/store"
)

// Session keys. The token is the durable credential slot; the user is
// a cache of the identity behind it; the error is the last failed
// login's message, shown once on the login form.
const (
	keyToken = "auth_token"
	keyUser  = "auth_user"
	keyError = "auth_error"
)

// ErrNotAuthenticated is returned when no token exists for the session.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Manager is the single owner of auth state. It layers the state
// machine anonymous → restoring → authenticated → anonymous over the
// scs session: a token without a cached user is the restoring state,
// resolved by CurrentUser.
type Manager struct {
	sm  *scs.SessionManager
	api *apiclient.Client
	db  *sql.DB // event log; nil disables event recording
}

// NewManager creates a Manager over the given session manager and API
// client. db is used for the auth event log and may be nil in tests.
func NewManager(sm *scs.SessionManager, api *apiclient.Client, db *sql.DB) *Manager {
	return &Manager{sm: sm, api: api, db: db}
}

// Sessions exposes the underlying scs manager for middleware wiring.
func (m *Manager) Sessions() *scs.SessionManager {
	return m.sm
}

// Token returns the bearer token for this session, or "".
func (m *Manager) Token(ctx context.Context) string {
	return m.sm.GetString(ctx, keyToken)
}

// Context returns ctx carrying the session's bearer token for
// outgoing API calls.
func (m *Manager) Context(ctx context.Context) context.Context {
	return apiclient.WithToken(ctx, m.Token(ctx))
}

// CachedUser returns the identity cached in the session without
// touching the API. Nil while anonymous or restoring.
func (m *Manager) CachedUser(ctx context.Context) *model.User {
	raw := m.sm.GetString(ctx, keyUser)
	if raw == "" {
		return nil
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// An unreadable cache entry is treated as absent; the next
		// CurrentUser call re-fetches the identity.
		slog.Warn("dropping unreadable cached user", "error", err)
		m.sm.Remove(ctx, keyUser)
		return nil
	}
	return &user
}

// IsAuthenticated reports whether an identity is established: true
// exactly when a cached user exists.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.CachedUser(ctx) != nil
}

// Login exchanges credentials for a token and establishes the session.
// On failure the token and user are left exactly as they were and the
// error message is stored for the login form. Login never navigates;
// the caller redirects after it resolves.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		m.sm.Put(ctx, keyError, "Email and password are required")
		return errors.New("session: email and password are required")
	}

	resp, err := m.api.Login(ctx, apiclient.Credentials{Email: email, Password: password})
	if err != nil {
		msg := loginErrorMessage(err)
		m.sm.Put(ctx, keyError, msg)
		m.recordEvent(ctx, store.EventLevelWarning, "Login failed", email, map[string]any{"reason": msg})
		return err
	}

	// New identity, new session ID: prevents session fixation.
	if err := m.sm.RenewToken(ctx); err != nil {
		return errors.Join(errors.New("session: renewing token"), err)
	}

	m.sm.Put(ctx, keyToken, resp.Token)
	m.putUser(ctx, &resp.User)
	m.sm.Remove(ctx, keyError)

	slog.Info("user logged in", "email", resp.User.Email)
	m.recordEvent(ctx, store.EventLevelInfo, "User logged in", resp.User.Email, nil)
	return nil
}

// Logout invalidates the server-side session best-effort and clears
// local state unconditionally. A failed API call never keeps the
// client logged in.
func (m *Manager) Logout(ctx context.Context) {
	user := m.CachedUser(ctx)

	if token := m.Token(ctx); token != "" {
		if err := m.api.Logout(apiclient.WithToken(ctx, token)); err != nil {
			slog.Warn("logout API call failed", "error", err)
		}
	}

	if err := m.sm.Destroy(ctx); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	email := ""
	if user != nil {
		email = user.Email
	}
	slog.Info("user logged out", "email", email)
	m.recordEvent(ctx, store.EventLevelInfo, "User logged out", email, nil)
}

// CurrentUser resolves the session's identity. With a cached user it
// returns immediately and performs no API call. With a token but no
// user it fetches /auth/me once; any failure there is fatal to the
// session, because a token whose identity cannot be read is no longer
// valid, and must not leave the gate stuck in a restoring state.
func (m *Manager) CurrentUser(ctx context.Context) (*model.User, error) {
	if user := m.CachedUser(ctx); user != nil {
		return user, nil
	}

	token := m.Token(ctx)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := m.api.Me(apiclient.WithToken(ctx, token))
	if err != nil {
		m.Invalidate(ctx)
		if errors.Is(err, apiclient.ErrUnauthorized) {
			m.recordEvent(ctx, store.EventLevelWarning, "Session invalidated: token rejected", "", nil)
		}
		return nil, err
	}

	m.putUser(ctx, user)
	return user, nil
}

// Invalidate clears the token and the cached user. It is the single
// entry point for 401-triggered invalidation from any API call, and
// runs to completion before callers issue their redirect.
func (m *Manager) Invalidate(ctx context.Context) {
	m.sm.Remove(ctx, keyToken)
	m.sm.Remove(ctx, keyUser)
}

// AuthError returns the stored login error message, or "".
func (m *Manager) AuthError(ctx context.Context) string {
	return m.sm.GetString(ctx, keyError)
}

// ClearError clears only the stored error. Calling it with no error
// present is a no-op; views use it on mount to avoid showing a stale
// message from a previous attempt.
func (m *Manager) ClearError(ctx context.Context) {
	m.sm.Remove(ctx, keyError)
}

func (m *Manager) putUser(ctx context.Context, user *model.User) {
	buf, err := json.Marshal(user)
	if err != nil {
		slog.Error("encoding user for session", "error", err)
		return
	}
	m.sm.Put(ctx, keyUser, string(buf))
}

func (m *Manager) recordEvent(ctx context.Context, level, message, email string, metadata map[string]any) {
	if m.db == nil {
		return
	}
	err := store.InsertEvent(ctx, m.db, store.Event{
		Level:     level,
		Category:  store.EventCategoryAuth,
		Message:   message,
		UserEmail: email,
		Metadata:  metadata,
	})
	if err != nil {
		slog.Error("recording auth event", "error", err)
	}
}

// loginErrorMessage maps an API failure to the message shown on the
// login form.
func loginErrorMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.StatusCode == 401 {
			return "Invalid credentials"
		}
		return "Login failed, please try again"
	}
	return "Unable to reach the server, please try again"
}
