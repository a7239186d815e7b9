// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, security headers, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/lensfolio/lensfolio/internal/model"
	"github.com/lensfolio/lensfolio/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoginRoute is where unauthenticated requests are sent. The original
// destination rides along in the "next" query parameter so the login
// handler can return the user there after success.
const LoginRoute = "/login"

// RequireAuth gates a subtree on an established session. A cached user
// passes straight through; a bare token resolves the identity with a
// single /auth/me fetch; anything else redirects to the login route
// with the original URL captured. An invalid token can never loop in a
// verifying state: the failed fetch clears it before the redirect is
// issued.
func RequireAuth(sess *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sess.CurrentUser(r.Context())
			if err != nil {
				// Session state is already cleared by CurrentUser when
				// the token was rejected; only navigation is left.
				RedirectToLogin(w, r)
				return
			}

			// Downstream handlers call the API with the request
			// context, so the bearer token travels with it.
			ctx := sess.Context(r.Context())
			ctx = context.WithValue(ctx, ContextKeyUser, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin users with 403. Use after RequireAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				RedirectToLogin(w, r)
				return
			}
			if user.Role != "admin" {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_email", user.Email,
					"user_role", user.Role,
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectToLogin sends the client to the login route, capturing the
// originally requested location.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginRoute
	if next := r.URL.RequestURI(); next != "" && next != "/" {
		target += "?next=" + url.QueryEscape(next)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserEmail returns the current user's email from context, or "".
func GetUserEmail(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.Email
	}
	return ""
}

// RequestPath stores the request path in the context for error logging.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
