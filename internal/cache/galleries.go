// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/lensfolio/lensfolio/internal/model"
)

// Key prefixes for the public catalog. Media keys share the gallery
// prefix so one admin mutation invalidates every page of every
// category at once.
const (
	galleryKeyPrefix = "gallery:"
	featuredKey      = galleryKeyPrefix + "featured"
	servicesKey      = "services"
)

// GalleryCache fronts the portfolio API for the public pages: gallery
// pages, the featured strip on the home page, and the bookable
// services list. Admin mutations call the Invalidate methods so
// visitors never see a stale gallery after an upload or delete.
type GalleryCache struct {
	pages    *TypedCache[model.Gallery]
	featured *TypedCache[[]model.Media]
	services *TypedCache[[]model.BookingService]
	backend  Cacher
}

// NewGalleryCache wraps the backend with catalog-specific typed views.
func NewGalleryCache(backend Cacher, ttl time.Duration) *GalleryCache {
	return &GalleryCache{
		pages:    NewTypedCache[model.Gallery](backend, ttl),
		featured: NewTypedCache[[]model.Media](backend, ttl),
		services: NewTypedCache[[]model.BookingService](backend, ttl),
		backend:  backend,
	}
}

func pageKey(category model.MediaCategory, page int) string {
	return galleryKeyPrefix + string(category) + ":p" + strconv.Itoa(page)
}

// Page returns the cached gallery page or fetches it on a miss.
func (g *GalleryCache) Page(ctx context.Context, category model.MediaCategory, page int, fetch func() (*model.Gallery, error)) (*model.Gallery, error) {
	return g.pages.GetOrSet(ctx, pageKey(category, page), fetch)
}

// Featured returns the cached featured media or fetches it on a miss.
func (g *GalleryCache) Featured(ctx context.Context, fetch func() (*[]model.Media, error)) ([]model.Media, error) {
	media, err := g.featured.GetOrSet(ctx, featuredKey, fetch)
	if err != nil {
		return nil, err
	}
	return *media, nil
}

// Services returns the cached booking services or fetches them on a
// miss.
func (g *GalleryCache) Services(ctx context.Context, fetch func() (*[]model.BookingService, error)) ([]model.BookingService, error) {
	services, err := g.services.GetOrSet(ctx, servicesKey, fetch)
	if err != nil {
		return nil, err
	}
	return *services, nil
}

// InvalidateMedia drops every gallery page and the featured strip.
// Called after any media upload, edit, or delete.
func (g *GalleryCache) InvalidateMedia(ctx context.Context) error {
	return g.backend.DeleteByPrefix(ctx, galleryKeyPrefix)
}

// InvalidateServices drops the cached services list.
func (g *GalleryCache) InvalidateServices(ctx context.Context) error {
	return g.backend.Delete(ctx, servicesKey)
}
