// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lensfolio/lensfolio/internal/testutil"
)

func TestHealth(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := NewHealthHandler(testutil.DB(t), fx.client)

	rec := fx.get(h.Health, "/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "healthy" {
		t.Errorf("status = %q, want healthy", status.Status)
	}
	if status.Checks["database"].Status != "healthy" {
		t.Errorf("database check = %+v", status.Checks["database"])
	}
	if status.Checks["api"].Status != "healthy" {
		t.Errorf("api check = %+v", status.Checks["api"])
	}
}

func TestHealthDegradedWhenAPIDown(t *testing.T) {
	fx := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	h := NewHealthHandler(testutil.DB(t), fx.client)

	rec := fx.get(h.Health, "/health", nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if status.Checks["database"].Status != "healthy" {
		t.Errorf("database should still be healthy: %+v", status.Checks["database"])
	}
}
