// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package ui

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
)

func sessionCtx(t *testing.T) (*scs.SessionManager, context.Context) {
	t.Helper()
	sm := scs.New()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return sm, ctx
}

func TestLightboxPairing(t *testing.T) {
	sm, ctx := sessionCtx(t)
	s := NewState(sm)

	if _, open := s.Lightbox(ctx); open {
		t.Fatal("Lightbox() open on fresh session")
	}

	s.OpenLightbox(ctx, 42)
	id, open := s.Lightbox(ctx)
	if !open || id != 42 {
		t.Fatalf("Lightbox() = (%d, %v), want (42, true)", id, open)
	}

	// Reopening on another image replaces, never stacks
	s.OpenLightbox(ctx, 7)
	if id, _ := s.Lightbox(ctx); id != 7 {
		t.Errorf("Lightbox() = %d after reopen, want 7", id)
	}

	s.CloseLightbox(ctx)
	if id, open := s.Lightbox(ctx); open || id != 0 {
		t.Errorf("Lightbox() = (%d, %v) after close, want (0, false)", id, open)
	}
}

func TestMenuOpen(t *testing.T) {
	sm, ctx := sessionCtx(t)
	s := NewState(sm)

	if s.MenuOpen(ctx) {
		t.Error("MenuOpen() = true on fresh session")
	}

	s.SetMenuOpen(ctx, true)
	if !s.MenuOpen(ctx) {
		t.Error("MenuOpen() = false after opening")
	}

	s.SetMenuOpen(ctx, false)
	if s.MenuOpen(ctx) {
		t.Error("MenuOpen() = true after closing")
	}
}

func TestProgressTracker(t *testing.T) {
	tr := NewProgressTracker()

	id := tr.Start()
	if id == "" {
		t.Fatal("Start() returned empty id")
	}

	pct, errMsg, ok := tr.Progress(id)
	if !ok || pct != 0 || errMsg != "" {
		t.Fatalf("Progress() = (%d, %q, %v), want fresh entry at 0", pct, errMsg, ok)
	}

	tr.Update(id, 55)
	if pct, _, _ := tr.Progress(id); pct != 55 {
		t.Errorf("Progress() = %d, want 55", pct)
	}

	tr.Complete(id)
	if _, _, ok := tr.Progress(id); ok {
		t.Error("Progress() ok after Complete")
	}

	// Updates after completion are dropped, not resurrected
	tr.Update(id, 99)
	if _, _, ok := tr.Progress(id); ok {
		t.Error("Update() resurrected a completed entry")
	}
}

func TestProgressClamping(t *testing.T) {
	tr := NewProgressTracker()
	id := tr.Start()

	tr.Update(id, -5)
	if pct, _, _ := tr.Progress(id); pct != 0 {
		t.Errorf("Progress() = %d after negative update, want 0", pct)
	}

	tr.Update(id, 250)
	if pct, _, _ := tr.Progress(id); pct != 100 {
		t.Errorf("Progress() = %d after oversized update, want 100", pct)
	}
}

func TestProgressFail(t *testing.T) {
	tr := NewProgressTracker()
	id := tr.Start()

	tr.Fail(id, "upload rejected")
	_, errMsg, ok := tr.Progress(id)
	if !ok || errMsg != "upload rejected" {
		t.Errorf("Progress() = (%q, %v), want failure message", errMsg, ok)
	}
}

func TestProgressSweep(t *testing.T) {
	tr := NewProgressTracker()
	stale := tr.Start()
	fresh := tr.Start()

	tr.mu.Lock()
	tr.entries[stale].updated = time.Now().Add(-2 * time.Hour)
	tr.mu.Unlock()

	if removed := tr.Sweep(time.Hour); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if _, _, ok := tr.Progress(stale); ok {
		t.Error("stale entry survived sweep")
	}
	if _, _, ok := tr.Progress(fresh); !ok {
		t.Error("fresh entry removed by sweep")
	}
}

func TestProgressConcurrentUpdates(t *testing.T) {
	tr := NewProgressTracker()
	id := tr.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i <= 100; i++ {
			tr.Update(id, i)
		}
		close(done)
	}()

	for i := 0; i < 100; i++ {
		tr.Progress(id)
	}
	<-done

	if pct, _, _ := tr.Progress(id); pct != 100 {
		t.Errorf("Progress() = %d after updates, want 100", pct)
	}
}
