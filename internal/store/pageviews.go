// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PageView is one recorded visit to a public page.
type PageView struct {
	ID        int64
	Path      string
	Referrer  string
	Browser   string
	Device    string
	Country   string
	CreatedAt time.Time
}

// DailyCount is a per-day aggregate for one path.
type DailyCount struct {
	Day   string // YYYY-MM-DD
	Path  string
	Views int64
}

// PathCount is a total for one path.
type PathCount struct {
	Path  string
	Views int64
}

// sqliteTime formats a cutoff in the layout CURRENT_TIMESTAMP writes,
// so comparisons against created_at columns are lexical on the same
// representation. Binding a raw time.Time would hand the driver's own
// encoding to SQLite, which its date functions cannot parse.
func sqliteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// sqliteDate formats a cutoff as a bare day for page_view_daily.day.
func sqliteDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// InsertPageView records a visit.
func InsertPageView(ctx context.Context, db *sql.DB, pv PageView) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO page_views (path, referrer, browser, device, country)
		 VALUES (?, ?, ?, ?, ?)`,
		pv.Path, pv.Referrer, pv.Browser, pv.Device, pv.Country)
	if err != nil {
		return fmt.Errorf("inserting page view: %w", err)
	}
	return nil
}

// ViewsSince returns the total number of raw views recorded since the cutoff.
func ViewsSince(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM page_views WHERE created_at >= ?`, sqliteTime(cutoff)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting page views: %w", err)
	}
	return n, nil
}

// TopPaths returns the most-viewed paths since the cutoff.
func TopPaths(ctx context.Context, db *sql.DB, cutoff time.Time, limit int) ([]PathCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx,
		`SELECT path, COUNT(*) AS views FROM page_views
		 WHERE created_at >= ?
		 GROUP BY path ORDER BY views DESC, path LIMIT ?`, sqliteTime(cutoff), limit)
	if err != nil {
		return nil, fmt.Errorf("querying top paths: %w", err)
	}
	defer rows.Close()

	var counts []PathCount
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, fmt.Errorf("scanning path count: %w", err)
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

// CountByField aggregates views since the cutoff by one of the
// enrichment columns: "browser", "device" or "country".
func CountByField(ctx context.Context, db *sql.DB, field string, cutoff time.Time, limit int) ([]PathCount, error) {
	switch field {
	case "browser", "device", "country":
	default:
		return nil, fmt.Errorf("unsupported aggregation field %q", field)
	}
	if limit <= 0 {
		limit = 10
	}
	// field is validated above; it cannot carry user input into the query.
	rows, err := db.QueryContext(ctx,
		`SELECT `+field+`, COUNT(*) AS views FROM page_views
		 WHERE created_at >= ? AND `+field+` != ''
		 GROUP BY `+field+` ORDER BY views DESC LIMIT ?`, sqliteTime(cutoff), limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s counts: %w", field, err)
	}
	defer rows.Close()

	var counts []PathCount
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Views); err != nil {
			return nil, fmt.Errorf("scanning %s count: %w", field, err)
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

// RollupDaily folds raw views older than the cutoff into
// page_view_daily and deletes the raw rows. Returns rows pruned.
func RollupDaily(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting rollup transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO page_view_daily (day, path, views)
		 SELECT date(created_at), path, COUNT(*)
		 FROM page_views WHERE created_at < ?
		 GROUP BY date(created_at), path
		 ON CONFLICT(day, path) DO UPDATE SET views = views + excluded.views`, sqliteTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("rolling up page views: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM page_views WHERE created_at < ?`, sqliteTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("pruning rolled-up views: %w", err)
	}
	pruned, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rollup: %w", err)
	}
	return pruned, nil
}

// DailyTotals returns per-day totals across all paths for the last n days,
// combining rollups with raw views not yet rolled up.
func DailyTotals(ctx context.Context, db *sql.DB, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	rows, err := db.QueryContext(ctx,
		`SELECT day, SUM(views) FROM (
		    SELECT day, views FROM page_view_daily WHERE day >= ?
		    UNION ALL
		    SELECT date(created_at) AS day, COUNT(*) AS views
		    FROM page_views WHERE created_at >= ? GROUP BY date(created_at)
		 ) GROUP BY day ORDER BY day`, sqliteDate(cutoff), sqliteTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Views); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}
		totals = append(totals, dc)
	}
	return totals, rows.Err()
}
