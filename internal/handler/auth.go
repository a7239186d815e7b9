// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lensfolio/lensfolio/internal/middleware"
	"github.com/lensfolio/lensfolio/internal/render"
	"github.com/lensfolio/lensfolio/internal/session"
)

// AuthHandler handles the login and logout routes.
type AuthHandler struct {
	sessions        *session.Manager
	renderer        *render.Renderer
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *session.Manager, renderer *render.Renderer, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		sessions:        sessions,
		renderer:        renderer,
		loginProtection: lp,
	}
}

// LoginData is the template data for the login page.
type LoginData struct {
	Next  string
	Error string
	Email string
}

// LoginForm renders the login page. Already-authenticated users are
// sent on to their destination instead.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := sanitizeNext(r.URL.Query().Get("next"))

	if h.sessions.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, h.postLoginURL(r, next), http.StatusSeeOther)
		return
	}

	data := LoginData{Next: next}
	if msg := h.sessions.AuthError(r.Context()); msg != "" {
		data.Error = msg
		h.sessions.ClearError(r.Context())
	}

	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Sign In",
		Data:  data,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := sanitizeNext(r.FormValue("next"))

	loginURL := redirectLogin
	if next != "" {
		loginURL += "?next=" + url.QueryEscape(next)
	}

	if email == "" || password == "" {
		flashError(w, r, h.renderer, loginURL, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if !h.loginProtection.CheckIPRateLimit(remoteIP(r)) {
			flashError(w, r, h.renderer, loginURL, "Too many login attempts, slow down")
			return
		}
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			flashError(w, r, h.renderer, loginURL,
				fmt.Sprintf("Account temporarily locked, try again in %s", formatDuration(remaining)))
			return
		}
	}

	if err := h.sessions.Login(r.Context(), email, password); err != nil {
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				flashError(w, r, h.renderer, loginURL,
					fmt.Sprintf("Too many failed attempts, account locked for %s", formatDuration(lockDuration)))
				return
			}
		}
		// The failure message is stored in the session by Login and
		// rendered by the form.
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if user := h.sessions.CachedUser(r.Context()); user != nil && user.Name != "" {
		h.renderer.SetFlash(r, "Welcome back, "+user.Name, "success")
	}

	http.Redirect(w, r, h.postLoginURL(r, next), http.StatusSeeOther)
}

// Logout ends the session and returns to the homepage.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	flashAndRedirect(w, r, h.renderer, RouteRoot, "Signed out", "info")
}

// postLoginURL picks the destination after a successful login: the
// captured next URL when present, otherwise the dashboard for admins
// and the homepage for everyone else.
func (h *AuthHandler) postLoginURL(r *http.Request, next string) string {
	if next != "" {
		return next
	}
	if user := h.sessions.CachedUser(r.Context()); user != nil && user.Role == "admin" {
		return redirectAdmin
	}
	return RouteRoot
}

// sanitizeNext keeps a post-login destination only when it is a local
// path. Anything that could leave the site, or that points back at the
// login page, is dropped.
func sanitizeNext(raw string) string {
	if raw == "" || raw == RouteRoot {
		return ""
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return ""
	}
	target, err := url.Parse(raw)
	if err != nil || target.Hostname() != "" {
		return ""
	}
	if target.Path == RouteLogin {
		return ""
	}
	return raw
}

// remoteIP extracts the client address for rate limiting, honoring
// proxy headers.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// formatDuration formats a lockout duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
