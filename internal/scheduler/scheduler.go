// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the recurring maintenance jobs: analytics
// rollups, event log pruning, upload progress sweeps, and GeoIP
// database reloads.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lensfolio/lensfolio/internal/geoip"
	"github.com/lensfolio/lensfolio/internal/store"
	"github.com/lensfolio/lensfolio/internal/ui"
)

// Retention windows for locally collected data.
const (
	eventRetention = 30 * 24 * time.Hour
	progressMaxAge = time.Hour
)

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	db       *sql.DB
	geo      *geoip.Lookup
	progress *ui.ProgressTracker
	cron     *cron.Cron
	logger   *slog.Logger
}

// New creates a scheduler. geo and progress may be nil; their jobs are
// skipped.
func New(db *sql.DB, geo *geoip.Lookup, progress *ui.ProgressTracker, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:       db,
		geo:      geo,
		progress: progress,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the jobs and begins the cron runner.
func (s *Scheduler) Start() error {
	// Nightly: roll raw page views older than a day into daily
	// aggregates, then prune expired rows.
	if _, err := s.cron.AddFunc("30 3 * * *", s.rollupAnalytics); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("45 3 * * *", s.pruneEvents); err != nil {
		return err
	}

	if s.progress != nil {
		if _, err := s.cron.AddFunc("*/15 * * * *", s.sweepProgress); err != nil {
			return err
		}
	}

	if s.geo != nil && s.geo.Enabled() {
		// The mmdb file updates out of band; pick up a newer copy
		// without a restart.
		if _, err := s.cron.AddFunc("0 */6 * * *", s.reloadGeoIP); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs and stops the runner.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) rollupAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// RollupDaily folds raw views into daily aggregates and deletes
	// the folded rows in one transaction.
	pruned, err := store.RollupDaily(ctx, s.db, time.Now().AddDate(0, 0, -1))
	if err != nil {
		s.logger.Error("analytics rollup failed", "error", err)
		return
	}

	s.logger.Info("analytics rollup complete", "pruned_views", pruned)
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pruned, err := store.PruneEventsBefore(ctx, s.db, time.Now().Add(-eventRetention))
	if err != nil {
		s.logger.Error("event prune failed", "error", err)
		return
	}
	if pruned > 0 {
		s.logger.Info("event log pruned", "removed", pruned)
	}
}

func (s *Scheduler) sweepProgress() {
	if removed := s.progress.Sweep(progressMaxAge); removed > 0 {
		s.logger.Info("stale upload progress swept", "removed", removed)
	}
}

func (s *Scheduler) reloadGeoIP() {
	if err := s.geo.Reload(); err != nil {
		s.logger.Error("geoip reload failed", "error", err)
	}
}
