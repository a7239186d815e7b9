// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/cache"
	"github.com/lensfolio/lensfolio/internal/model"
	"github.com/lensfolio/lensfolio/internal/render"
	"github.com/lensfolio/lensfolio/internal/ui"
)

// SiteHandler serves the public portfolio pages.
type SiteHandler struct {
	api       *apiclient.Client
	galleries *cache.GalleryCache
	renderer  *render.Renderer
	uiState   *ui.State
	contentFS fs.FS
}

// NewSiteHandler creates a new SiteHandler. contentFS holds the
// markdown sources for the about and services copy.
func NewSiteHandler(api *apiclient.Client, galleries *cache.GalleryCache, renderer *render.Renderer, uiState *ui.State, contentFS fs.FS) *SiteHandler {
	return &SiteHandler{
		api:       api,
		galleries: galleries,
		renderer:  renderer,
		uiState:   uiState,
		contentFS: contentFS,
	}
}

// HomeData is the template data for the homepage.
type HomeData struct {
	Featured   []model.Media
	Categories []model.MediaCategory
}

// Home renders the homepage with the featured strip.
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	featured, err := h.galleries.Featured(r.Context(), func() (*[]model.Media, error) {
		media, err := h.api.FeaturedMedia(r.Context())
		if err != nil {
			return nil, err
		}
		return &media, nil
	})
	if err != nil {
		// The homepage still renders without the strip.
		slog.Error("loading featured media", "error", err)
	}

	if err := h.renderer.Render(w, r, "site/home", render.TemplateData{
		Title: "Home",
		Data: HomeData{
			Featured:   featured,
			Categories: model.Categories(),
		},
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// LightboxData describes the opened photo and its neighbors within the
// current page. At either end the missing neighbor is absent rather
// than wrapping around.
type LightboxData struct {
	Media   model.Media
	HasPrev bool
	HasNext bool
	PrevID  int64
	NextID  int64
}

// GalleryData is the template data for a gallery page.
type GalleryData struct {
	Gallery    *model.Gallery
	Categories []model.MediaCategory
	Pagination Pagination
	Lightbox   *LightboxData
}

// Gallery renders one page of a category, with an optional lightbox
// opened on a photo from that page.
func (h *SiteHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	category := model.MediaCategory(chi.URLParam(r, "category"))
	if !model.ValidCategory(string(category)) {
		h.renderer.Error(w, r, http.StatusNotFound, "Gallery not found")
		return
	}

	page := pageParam(r.URL.Query())

	gallery, err := h.galleries.Page(r.Context(), category, page, func() (*model.Gallery, error) {
		return h.api.GalleryPage(r.Context(), category, page, galleryPageSize)
	})
	if err != nil {
		slog.Error("loading gallery", "error", err, "category", category, "page", page)
		h.renderer.Error(w, r, http.StatusBadGateway, "The gallery is unavailable right now")
		return
	}

	data := GalleryData{
		Gallery:    gallery,
		Categories: model.Categories(),
		Pagination: BuildPagination(page, gallery.Total, galleryPageSize, "/gallery/"+string(category), nil),
	}

	if photo := r.URL.Query().Get("photo"); photo != "" {
		if id, err := strconv.ParseInt(photo, 10, 64); err == nil {
			data.Lightbox = buildLightbox(gallery.Media, id)
		}
	}

	// The open photo is session state so a reload or back navigation
	// restores the same view. Presence of the entry is what "open"
	// means; closing removes it.
	if data.Lightbox != nil {
		h.uiState.OpenLightbox(r.Context(), data.Lightbox.Media.ID)
	} else {
		h.uiState.CloseLightbox(r.Context())
	}

	if err := h.renderer.Render(w, r, "site/gallery", render.TemplateData{
		Title: string(category),
		Data:  data,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// buildLightbox locates the photo in the page and picks its neighbors.
// Returns nil when the photo is not on this page.
func buildLightbox(media []model.Media, id int64) *LightboxData {
	for i, m := range media {
		if m.ID != id {
			continue
		}
		lb := &LightboxData{Media: m}
		if i > 0 {
			lb.HasPrev = true
			lb.PrevID = media[i-1].ID
		}
		if i < len(media)-1 {
			lb.HasNext = true
			lb.NextID = media[i+1].ID
		}
		return lb
	}
	return nil
}

// ContentData is the template data for a markdown-backed page.
type ContentData struct {
	Content template.HTML
}

// About renders the about page from its markdown source.
func (h *SiteHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderContentPage(w, r, "site/about", "About", "about.md", nil)
}

// ServicesData is the template data for the services page.
type ServicesData struct {
	Content  template.HTML
	Services []model.BookingService
}

// Services renders the services page: the markdown intro plus the
// bookable offerings with their prices.
func (h *SiteHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.galleries.Services(r.Context(), func() (*[]model.BookingService, error) {
		list, err := h.api.BookingServices(r.Context())
		if err != nil {
			return nil, err
		}
		return &list, nil
	})
	if err != nil {
		slog.Error("loading booking services", "error", err)
	}

	h.renderContentPage(w, r, "site/services", "Services", "services.md", func(content template.HTML) any {
		return ServicesData{Content: content, Services: services}
	})
}

// renderContentPage renders a page whose body comes from a markdown
// file. wrap, when non-nil, builds the template data around the
// converted content.
func (h *SiteHandler) renderContentPage(w http.ResponseWriter, r *http.Request, tmpl, title, file string, wrap func(template.HTML) any) {
	source, err := fs.ReadFile(h.contentFS, file)
	if err != nil {
		slog.Error("reading content file", "error", err, "file", file)
		h.renderer.Error(w, r, http.StatusInternalServerError, "")
		return
	}

	content := render.Markdown(string(source))

	var data any = ContentData{Content: content}
	if wrap != nil {
		data = wrap(content)
	}

	if err := h.renderer.Render(w, r, tmpl, render.TemplateData{
		Title: title,
		Data:  data,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
