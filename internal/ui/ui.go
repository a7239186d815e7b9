// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ui holds ephemeral view state: per-session flags stored in
// the scs session, and the process-wide upload progress tracker polled
// by the admin upload page. Nothing here survives a session reset and
// nothing here is domain data.
package ui

import (
	"context"

	"github.com/alexedwards/scs/v2"
)

// Session keys for view flags.
const (
	keyLightbox = "ui_lightbox_media"
	keyMenuOpen = "ui_menu_open"
)

// State reads and writes per-session view flags.
type State struct {
	sm *scs.SessionManager
}

// NewState creates a State over the session manager.
func NewState(sm *scs.SessionManager) *State {
	return &State{sm: sm}
}

// OpenLightbox shows the lightbox on the given media item. The open
// flag and the image are one session value, so an open lightbox always
// has an image.
func (s *State) OpenLightbox(ctx context.Context, mediaID int64) {
	s.sm.Put(ctx, keyLightbox, mediaID)
}

// CloseLightbox hides the lightbox and forgets the image.
func (s *State) CloseLightbox(ctx context.Context) {
	s.sm.Remove(ctx, keyLightbox)
}

// Lightbox returns the media item the lightbox is showing, and whether
// it is open at all.
func (s *State) Lightbox(ctx context.Context) (int64, bool) {
	if !s.sm.Exists(ctx, keyLightbox) {
		return 0, false
	}
	return s.sm.GetInt64(ctx, keyLightbox), true
}

// SetMenuOpen persists the mobile navigation drawer state.
func (s *State) SetMenuOpen(ctx context.Context, open bool) {
	if open {
		s.sm.Put(ctx, keyMenuOpen, true)
	} else {
		s.sm.Remove(ctx, keyMenuOpen)
	}
}

// MenuOpen reports whether the mobile navigation drawer is open.
func (s *State) MenuOpen(ctx context.Context) bool {
	return s.sm.GetBool(ctx, keyMenuOpen)
}
