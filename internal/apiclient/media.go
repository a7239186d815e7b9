// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lensfolio/lensfolio/internal/model"
)

// GalleryPage returns one page of public media for a category.
// GET /media/{category}
func (c *Client) GalleryPage(ctx context.Context, category model.MediaCategory, page, limit int) (*model.Gallery, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var out model.Gallery
	if err := c.get(ctx, "/media/"+url.PathEscape(string(category)), query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeaturedMedia returns the public media flagged for the home page.
// GET /media/featured
func (c *Client) FeaturedMedia(ctx context.Context) ([]model.Media, error) {
	var out []model.Media
	if err := c.get(ctx, "/media/featured", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MediaItem returns a single media item by ID.
// GET /media/item/{id}
func (c *Client) MediaItem(ctx context.Context, id int64) (*model.Media, error) {
	var out model.Media
	if err := c.get(ctx, fmt.Sprintf("/media/item/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllMedia returns one page of the full library, including non-public
// items. Admin only.
// GET /media/admin/all
func (c *Client) AllMedia(ctx context.Context, page, limit int) (*model.Gallery, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var out model.Gallery
	if err := c.get(ctx, "/media/admin/all", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload describes a media upload. Thumbnail is optional; when set it
// is sent alongside the original file.
type Upload struct {
	FileName    string
	ContentType string
	File        io.Reader
	Thumbnail   io.Reader

	Title       string
	Description string
	Category    model.MediaCategory
	IsFeatured  bool

	// Pixel dimensions of the processed image.
	Width  int
	Height int

	// Capture metadata from EXIF, when present.
	TakenAt *time.Time
	Camera  string

	// OnProgress, when non-nil, receives 0-100 as the request body is
	// consumed by the transport.
	OnProgress func(pct int)
}

// UploadMedia sends a file with its metadata. Admin only. Uploads are
// mutations and are never retried.
// POST /media/upload
func (c *Client) UploadMedia(ctx context.Context, up Upload) (*model.Media, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       up.Title,
		"description": up.Description,
		"category":    string(up.Category),
		"is_featured": strconv.FormatBool(up.IsFeatured),
	}
	if up.Width > 0 && up.Height > 0 {
		fields["width"] = strconv.Itoa(up.Width)
		fields["height"] = strconv.Itoa(up.Height)
	}
	if up.TakenAt != nil {
		fields["taken_at"] = up.TakenAt.UTC().Format(time.RFC3339)
	}
	if up.Camera != "" {
		fields["camera"] = up.Camera
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("writing field %q: %w", name, err)
		}
	}

	fw, err := mw.CreateFormFile("file", up.FileName)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(fw, up.File); err != nil {
		return nil, fmt.Errorf("copying upload body: %w", err)
	}

	if up.Thumbnail != nil {
		tw, err := mw.CreateFormFile("thumbnail", "thumb_"+up.FileName)
		if err != nil {
			return nil, fmt.Errorf("creating thumbnail part: %w", err)
		}
		if _, err := io.Copy(tw, up.Thumbnail); err != nil {
			return nil, fmt.Errorf("copying thumbnail: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	var body io.Reader = &buf
	if up.OnProgress != nil {
		body = &progressReader{r: &buf, total: int64(buf.Len()), report: up.OnProgress}
	}

	var out model.Media
	if err := c.do(ctx, http.MethodPost, "/media/upload", nil, body, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMedia updates mutable media metadata. Admin only.
// PUT /media/{id}
func (c *Client) UpdateMedia(ctx context.Context, id int64, changes map[string]any) (*model.Media, error) {
	var out model.Media
	if err := c.put(ctx, fmt.Sprintf("/media/%d", id), changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMedia removes a media item. Admin only.
// DELETE /media/{id}
func (c *Client) DeleteMedia(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/media/%d", id))
}

// progressReader reports consumed bytes as a 0-100 percentage.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(pct int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		p.report(int(p.read * 100 / p.total))
	}
	return n, err
}
