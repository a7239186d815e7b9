// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that forwards warnings and
// errors to the local events table, so the admin dashboard shows them
// without access to process logs.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/lensfolio/lensfolio/internal/store"
)

// EventLogHandler wraps another slog handler and also writes records
// at or above its threshold to the events table.
type EventLogHandler struct {
	inner slog.Handler
	db    *sql.DB
	level slog.Level
}

// NewEventLogHandler creates a handler forwarding WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner: inner,
		db:    db,
		level: slog.LevelWarn,
	}
}

// NewEventLogHandlerWithLevel creates a handler with a custom
// threshold.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner: inner,
		db:    db,
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeEvent(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithAttrs(attrs),
		db:    h.db,
		level: h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner: h.inner.WithGroup(name),
		db:    h.db,
		level: h.level,
	}
}

// writeEvent records a log record in the events table. A background
// context is used so the event is kept even when the request context
// was cancelled.
func (h *EventLogHandler) writeEvent(r slog.Record) {
	ev := store.Event{
		Level:    eventLevel(r.Level),
		Category: extractCategory(r),
		Message:  r.Message,
		Metadata: extractMetadata(r),
	}

	_ = store.InsertEvent(context.Background(), h.db, ev)
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return store.EventLevelError
	case level >= slog.LevelWarn:
		return store.EventLevelWarning
	default:
		return store.EventLevelInfo
	}
}

// extractCategory reads the "category" attribute, falling back to a
// guess from the message.
func extractCategory(r slog.Record) string {
	var category string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})
	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "auth") || strings.Contains(msg, "session"):
		return store.EventCategoryAuth
	case strings.Contains(msg, "csrf") || strings.Contains(msg, "denied") ||
		strings.Contains(msg, "lockout"):
		return store.EventCategorySecurity
	default:
		return store.EventCategorySystem
	}
}

// extractMetadata collects the record's attributes.
func extractMetadata(r slog.Record) map[string]any {
	if r.NumAttrs() == 0 {
		return nil
	}

	meta := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "category" {
			meta[a.Key] = a.Value.String()
		}
		return true
	})
	return meta
}
