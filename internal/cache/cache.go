// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides caching for responses fetched from the
// portfolio API. Gallery pages and booking services change rarely and
// are served to anonymous visitors, so a short-TTL cache in front of
// the API removes most upstream traffic. Backends: in-process memory
// for a single instance, Redis when several instances share state.
package cache

import (
	"context"
	"time"
)

// Cacher is the interface cache backends implement. Values are raw
// bytes so memory and Redis behave identically. All implementations
// must be safe for concurrent use.
type Cacher interface {
	// Get returns the value for key, or ErrCacheMiss when absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the backend's
	// default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has reports whether key exists and is not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// Stats describes cache effectiveness.
type Stats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Items   int
	HitRate float64
	Size    int64
}

// StatsProvider is an optional interface for backends that track
// statistics.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Error is the error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
