// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"

	"github.com/lensfolio/lensfolio/internal/model"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login exchanges credentials for a bearer token.
// POST /auth/login
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the server-side session for the token in ctx.
// POST /auth/logout
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

// Me returns the identity behind the token in ctx. The API answers
// 401 when the token is invalid or expired.
// GET /auth/me
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
