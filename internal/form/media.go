// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"net/url"

	"github.com/lensfolio/lensfolio/internal/model"
)

// MediaUpload is the metadata part of the admin upload form; the file
// itself arrives as a multipart part and is checked by the upload
// pipeline.
type MediaUpload struct {
	Title       string
	Description string
	Category    string
	IsFeatured  bool
}

// ParseMediaUpload reads the upload metadata from submitted values.
func ParseMediaUpload(values url.Values) MediaUpload {
	return MediaUpload{
		Title:       trimmed(values, "title"),
		Description: trimmed(values, "description"),
		Category:    trimmed(values, "category"),
		IsFeatured:  values.Get("is_featured") == "on" || values.Get("is_featured") == "true",
	}
}

// Validate returns field errors.
func (f MediaUpload) Validate() map[string]string {
	errs := make(map[string]string)

	if f.Title == "" {
		errs["title"] = "Title is required"
	}
	checkLength(errs, "title", f.Title, 200)
	checkLength(errs, "description", f.Description, 2000)

	if f.Category == "" {
		errs["category"] = "Select a category"
	} else if !model.ValidCategory(f.Category) {
		errs["category"] = "Unknown category"
	}

	return errs
}

// MediaEdit is the admin edit form; only submitted fields change, so
// it converts to a partial update payload.
type MediaEdit struct {
	Title       string
	Description string
	Category    string
	IsFeatured  bool
	IsPublic    bool
}

// ParseMediaEdit reads the edit form from submitted values.
func ParseMediaEdit(values url.Values) MediaEdit {
	return MediaEdit{
		Title:       trimmed(values, "title"),
		Description: trimmed(values, "description"),
		Category:    trimmed(values, "category"),
		IsFeatured:  values.Get("is_featured") == "on" || values.Get("is_featured") == "true",
		IsPublic:    values.Get("is_public") == "on" || values.Get("is_public") == "true",
	}
}

// Validate returns field errors.
func (f MediaEdit) Validate() map[string]string {
	errs := make(map[string]string)

	if f.Title == "" {
		errs["title"] = "Title is required"
	}
	checkLength(errs, "title", f.Title, 200)

	if f.Category != "" && !model.ValidCategory(f.Category) {
		errs["category"] = "Unknown category"
	}

	return errs
}

// Changes returns the update payload for the API.
func (f MediaEdit) Changes() map[string]any {
	changes := map[string]any{
		"title":       f.Title,
		"description": f.Description,
		"is_featured": f.IsFeatured,
		"is_public":   f.IsPublic,
	}
	if f.Category != "" {
		changes["category"] = f.Category
	}
	return changes
}
