// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProgressTracker tracks upload progress across the process. Uploads
// are identified by a generated id handed to the browser, which polls
// for the percentage while the server streams the file to the API.
// Entries disappear on completion or explicit clear; Sweep catches
// uploads whose client went away mid-transfer.
type ProgressTracker struct {
	mu      sync.RWMutex
	entries map[string]*progressEntry
}

type progressEntry struct {
	pct     int
	err     string
	updated time.Time
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{entries: make(map[string]*progressEntry)}
}

// Start registers a new upload at 0% and returns its id.
func (t *ProgressTracker) Start() string {
	id := uuid.NewString()
	t.mu.Lock()
	t.entries[id] = &progressEntry{updated: time.Now()}
	t.mu.Unlock()
	return id
}

// Update sets the percentage for an upload, clamped to 0-100. Updates
// for unknown or already cleared ids are dropped.
func (t *ProgressTracker) Update(id string, pct int) {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}

	t.mu.Lock()
	if e, ok := t.entries[id]; ok {
		e.pct = pct
		e.updated = time.Now()
	}
	t.mu.Unlock()
}

// Fail records an error message for an upload so the poller can show
// it before the entry is cleared.
func (t *ProgressTracker) Fail(id, message string) {
	t.mu.Lock()
	if e, ok := t.entries[id]; ok {
		e.err = message
		e.updated = time.Now()
	}
	t.mu.Unlock()
}

// Complete removes the entry. The poller treats a missing id as a
// finished upload.
func (t *ProgressTracker) Complete(id string) {
	t.mu.Lock()
	delete(t.entries, id)
	t.mu.Unlock()
}

// Clear removes the entry without marking anything finished.
func (t *ProgressTracker) Clear(id string) {
	t.Complete(id)
}

// Progress returns the percentage and error for an upload. ok is
// false when the id is unknown, completed, or cleared.
func (t *ProgressTracker) Progress(id string) (pct int, errMsg string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[id]
	if !ok {
		return 0, "", false
	}
	return e.pct, e.err, true
}

// Len returns the number of tracked uploads.
func (t *ProgressTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Sweep removes entries not updated within maxAge and returns how many
// were dropped. Run periodically by the scheduler.
func (t *ProgressTracker) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, e := range t.entries {
		if e.updated.Before(cutoff) {
			delete(t.entries, id)
			removed++
		}
	}
	return removed
}
