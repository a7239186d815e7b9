// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the typed HTTP client for the portfolio API.
//
// The client itself is stateless: the bearer token travels in the
// request context and is injected by a RoundTripper. A 401 from any
// endpoint surfaces as ErrUnauthorized; the session layer is the
// single place that turns that into a session invalidation. The
// client never touches navigation or session storage.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrUnauthorized is reported when the API rejects the bearer token.
// Callers match it with errors.Is; see session.Manager for the
// invalidation contract.
var ErrUnauthorized = errors.New("api: unauthorized")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match any 401.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// envelope is the API's JSON response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the API prefix, e.g. "https://api.example.com/api".
	BaseURL string

	// Timeout bounds a single request attempt. Zero means 30s.
	Timeout time.Duration

	// MaxReadAttempts is the total attempt budget for idempotent GETs,
	// including the first try. Zero means 3. Mutations are never retried.
	MaxReadAttempts int

	// Transport overrides the underlying RoundTripper. Used in tests.
	Transport http.RoundTripper
}

// Client is the configured request pipeline for the portfolio API.
type Client struct {
	baseURL      string
	httpc        *http.Client
	readAttempts int
}

// New creates a Client for the given API base URL.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.MaxReadAttempts
	if attempts <= 0 {
		attempts = 3
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: base},
		},
		readAttempts: attempts,
	}
}

// BaseURL returns the configured API prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs a retried GET and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	// Capped exponential backoff; 4xx responses are terminal because
	// repeating the same request cannot change the answer. A 401 in
	// particular must not burn retries against an invalid token.
	backoff := retry.WithMaxRetries(uint64(c.readAttempts-1),
		retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond)))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, query, nil, "", out)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return err
		}
		return retry.RetryableError(err)
	})
}

// post performs an unretried POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

// put performs an unretried PUT with a JSON body.
func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

// del performs an unretried DELETE.
func (c *Client) del(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, nil, reader, contentType, out)
}

// do performs a single request attempt and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse maps the status code and envelope to a result or error.
func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Message != "" {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	// Health and a few plain endpoints respond without the envelope.
	if env.Data == nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// Health reports the API's health status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}
