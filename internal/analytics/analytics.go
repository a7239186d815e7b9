// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics records page views for the public site into the
// local store: path, referrer, browser and device from the user agent,
// and country from the optional GeoIP database. Writes happen on a
// single background worker so a slow disk never delays a page render.
package analytics

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/lensfolio/lensfolio/internal/geoip"
	"github.com/lensfolio/lensfolio/internal/store"
)

// queueSize bounds the pending writes; beyond it views are dropped
// rather than queued without limit.
const queueSize = 256

// Collector receives page views and persists them.
type Collector struct {
	db    *sql.DB
	geo   *geoip.Lookup
	queue chan store.PageView
	done  chan struct{}
}

// NewCollector starts a collector writing to db. geo may be nil.
func NewCollector(db *sql.DB, geo *geoip.Lookup) *Collector {
	c := &Collector{
		db:    db,
		geo:   geo,
		queue: make(chan store.PageView, queueSize),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

// run drains the queue until Close.
func (c *Collector) run() {
	defer close(c.done)
	for pv := range c.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.InsertPageView(ctx, c.db, pv); err != nil {
			slog.Error("recording page view", "error", err, "path", pv.Path)
		}
		cancel()
	}
}

// Close stops the worker after draining queued views.
func (c *Collector) Close() {
	close(c.queue)
	<-c.done
}

// Middleware records a view for every GET page request. Static assets,
// admin pages, and obvious bots are skipped.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		if r.Method != http.MethodGet || !trackable(r.URL.Path) {
			return
		}

		ua := useragent.Parse(r.UserAgent())
		if ua.Bot {
			return
		}

		pv := store.PageView{
			Path:     r.URL.Path,
			Referrer: r.Referer(),
			Browser:  browserName(ua),
			Device:   deviceType(ua),
		}
		if c.geo != nil {
			pv.Country = c.geo.Country(remoteIP(r))
		}

		select {
		case c.queue <- pv:
		default:
			// Queue full, view dropped
		}
	})
}

// trackable reports whether the path is a public page worth counting.
func trackable(path string) bool {
	for _, prefix := range []string{"/static/", "/admin", "/health", "/favicon"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

func browserName(ua useragent.UserAgent) string {
	if ua.Name == "" {
		return "Unknown"
	}
	return ua.Name
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// remoteIP extracts the client IP, honoring proxy headers.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i != -1 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
