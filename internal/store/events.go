// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth     = "auth"
	EventCategorySecurity = "security"
	EventCategorySystem   = "system"
)

// Event is one row of the application event log.
type Event struct {
	ID         int64
	Level      string
	Category   string
	Message    string
	UserEmail  string
	RemoteAddr string
	Path       string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// InsertEvent writes an event. Metadata may be nil.
func InsertEvent(ctx context.Context, db *sql.DB, ev Event) error {
	meta := "{}"
	if len(ev.Metadata) > 0 {
		buf, err := json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("encoding event metadata: %w", err)
		}
		meta = string(buf)
	}
	if ev.Level == "" {
		ev.Level = EventLevelInfo
	}
	if ev.Category == "" {
		ev.Category = EventCategorySystem
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_email, remote_addr, path, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Level, ev.Category, ev.Message, ev.UserEmail, ev.RemoteAddr, ev.Path, meta)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// RecentEvents returns the newest events, most recent first.
func RecentEvents(ctx context.Context, db *sql.DB, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, level, category, message,
		        COALESCE(user_email, ''), COALESCE(remote_addr, ''), COALESCE(path, ''),
		        metadata, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var meta string
		if err := rows.Scan(&ev.ID, &ev.Level, &ev.Category, &ev.Message,
			&ev.UserEmail, &ev.RemoteAddr, &ev.Path, &meta, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if meta != "" && meta != "{}" {
			_ = json.Unmarshal([]byte(meta), &ev.Metadata)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PruneEventsBefore deletes events older than the cutoff and returns
// the number removed.
func PruneEventsBefore(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, sqliteTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("pruning events: %w", err)
	}
	return res.RowsAffected()
}
