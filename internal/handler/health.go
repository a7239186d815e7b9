// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/lensfolio/lensfolio/internal/apiclient"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        *sql.DB
	api       *apiclient.Client
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, api *apiclient.Client) *HealthHandler {
	return &HealthHandler{
		db:        db,
		api:       api,
		startTime: time.Now(),
	}
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status string           `json:"status"`
	Uptime string           `json:"uptime"`
	Checks map[string]Check `json:"checks"`
}

// Check is a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health reports the session store and the upstream API.
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
		Checks: map[string]Check{
			"database": h.checkDatabase(r.Context()),
			"api":      h.checkAPI(r.Context()),
		},
	}

	code := http.StatusOK
	for _, c := range status.Checks {
		if c.Status != "healthy" {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, status)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	return Check{Status: "healthy", Latency: latency(start)}
}

func (h *HealthHandler) checkAPI(ctx context.Context) Check {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status, err := h.api.Health(ctx)
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	return Check{Status: "healthy", Message: status, Latency: latency(start)}
}

func latency(start time.Time) string {
	return fmt.Sprintf("%.1fms", float64(time.Since(start).Microseconds())/1000)
}
