// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package uploads

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
)

var (
	slugInvalid     = regexp.MustCompile(`[^a-z0-9-]`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-friendly slug: transliterated to
// ASCII, lowercased, spaces to hyphens, everything else dropped.
func Slugify(s string) string {
	result := unidecode.Unidecode(s)
	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugInvalid.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// FileName builds the stored name for an upload from its title and the
// original file's extension. Camera filenames carry no meaning, so the
// title slug plus a short random suffix keeps names readable and
// collision-free.
func FileName(title, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	switch ext {
	case ".jpeg":
		ext = ".jpg"
	case ".jpg", ".png", ".gif", ".webp":
	default:
		ext = ".jpg"
	}

	slug := Slugify(title)
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}

	return slug + "-" + uuid.NewString()[:8] + ext
}
