// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
)

type contextKey string

const contextKeyToken contextKey = "bearer_token"

// WithToken returns a context carrying the bearer token for outgoing
// API requests. The session layer attaches this per request; an empty
// token leaves the context unchanged.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKeyToken, token)
}

// TokenFromContext returns the bearer token carried by ctx, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken).(string)
	return token
}

// bearerTransport injects the Authorization header from the request
// context. When no token is present the header is omitted entirely.
type bearerTransport struct {
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := TokenFromContext(req.Context()); token != "" && req.Header.Get("Authorization") == "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}
