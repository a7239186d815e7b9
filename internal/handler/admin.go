// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/cache"
	"github.com/lensfolio/lensfolio/internal/form"
	"github.com/lensfolio/lensfolio/internal/middleware"
	"github.com/lensfolio/lensfolio/internal/model"
	"github.com/lensfolio/lensfolio/internal/render"
	"github.com/lensfolio/lensfolio/internal/session"
	"github.com/lensfolio/lensfolio/internal/store"
	"github.com/lensfolio/lensfolio/internal/ui"
	"github.com/lensfolio/lensfolio/internal/uploads"
)

// AdminHandler handles the admin area: the media library, message
// triage, and the analytics views.
type AdminHandler struct {
	api       *apiclient.Client
	sessions  *session.Manager
	renderer  *render.Renderer
	galleries *cache.GalleryCache
	db        *sql.DB
	processor *uploads.Processor
	progress  *ui.ProgressTracker
	maxUpload int64
}

// NewAdminHandler creates a new AdminHandler. maxUpload is the upload
// size limit in bytes.
func NewAdminHandler(api *apiclient.Client, sessions *session.Manager, renderer *render.Renderer, galleries *cache.GalleryCache, db *sql.DB, maxUpload int64) *AdminHandler {
	return &AdminHandler{
		api:       api,
		sessions:  sessions,
		renderer:  renderer,
		galleries: galleries,
		db:        db,
		processor: uploads.NewProcessor(maxUpload),
		progress:  ui.NewProgressTracker(),
		maxUpload: maxUpload,
	}
}

// Progress exposes the upload progress tracker for scheduled sweeps.
func (h *AdminHandler) Progress() *ui.ProgressTracker {
	return h.progress
}

// DashboardData is the template data for the admin dashboard.
type DashboardData struct {
	TotalMedia    int64
	ViewsWeek     int64
	UnreadCount   int
	RecentMessage *model.ContactMessage
}

// Dashboard renders the admin landing page.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{}

	if library, err := h.api.AllMedia(r.Context(), 1, 1); err == nil {
		data.TotalMedia = library.Total
	} else {
		slog.Error("loading media count", "error", err)
	}

	if views, err := store.ViewsSince(r.Context(), h.db, time.Now().AddDate(0, 0, -7)); err == nil {
		data.ViewsWeek = views
	}

	if messages, err := h.api.ContactMessages(r.Context()); err == nil {
		for i := range messages {
			if !messages[i].IsRead {
				data.UnreadCount++
				if data.RecentMessage == nil {
					data.RecentMessage = &messages[i]
				}
			}
		}
	}

	h.render(w, r, "admin/dashboard", "Dashboard", data)
}

// MediaLibraryData is the template data for the media library.
type MediaLibraryData struct {
	Library    *model.Gallery
	Pagination Pagination
}

// MediaLibrary renders the full library, including non-public items.
func (h *AdminHandler) MediaLibrary(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r.URL.Query())

	library, err := h.api.AllMedia(r.Context(), page, adminPageSize)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdmin, "Could not load the media library")
		return
	}

	h.render(w, r, "admin/media", "Media Library", MediaLibraryData{
		Library:    library,
		Pagination: BuildPagination(page, library.Total, adminPageSize, redirectAdminMedia, nil),
	})
}

// MediaUploadData is the template data for the upload form.
type MediaUploadData struct {
	Form       form.MediaUpload
	Errors     map[string]string
	Categories []model.MediaCategory
	MaxSizeMB  int64
}

// MediaUploadForm renders the upload form.
func (h *AdminHandler) MediaUploadForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin/media_upload", "Upload Media", MediaUploadData{
		Categories: model.Categories(),
		MaxSizeMB:  h.maxUpload / (1 << 20),
	})
}

// MediaUpload processes an upload: the image is validated and
// transformed locally, then forwarded with its thumbnail. A progress
// id submitted with the form receives transfer updates for polling.
func (h *AdminHandler) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		flashError(w, r, h.renderer, redirectAdminMedia+"/upload", "Upload too large or malformed")
		return
	}

	f := form.ParseMediaUpload(r.MultipartForm.Value)
	pid := r.FormValue("progress_id")

	if errs := f.Validate(); len(errs) > 0 {
		h.progress.Fail(pid, "Fix the form errors and try again")
		h.render(w, r, "admin/media_upload", "Upload Media", MediaUploadData{
			Form:       f,
			Errors:     errs,
			Categories: model.Categories(),
			MaxSizeMB:  h.maxUpload / (1 << 20),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.progress.Fail(pid, "No file selected")
		flashError(w, r, h.renderer, redirectAdminMedia+"/upload", "Select a file to upload")
		return
	}
	defer file.Close()

	processed, err := h.processor.Process(file, f.Title, header.Filename)
	if err != nil {
		slog.Warn("rejected upload", "error", err, "file", header.Filename, "user", middleware.GetUserEmail(r))
		h.progress.Fail(pid, err.Error())
		flashError(w, r, h.renderer, redirectAdminMedia+"/upload", "Could not process the image: "+err.Error())
		return
	}

	up := apiclient.Upload{
		FileName:    processed.FileName,
		ContentType: processed.ContentType,
		File:        bytes.NewReader(processed.Data),
		Title:       f.Title,
		Description: f.Description,
		Category:    model.MediaCategory(f.Category),
		IsFeatured:  f.IsFeatured,
		Width:       processed.Width,
		Height:      processed.Height,
		TakenAt:     processed.TakenAt,
		Camera:      processed.Camera,
	}
	if processed.Thumbnail != nil {
		up.Thumbnail = bytes.NewReader(processed.Thumbnail)
	}
	if pid != "" {
		up.OnProgress = func(pct int) { h.progress.Update(pid, pct) }
	}

	media, err := h.api.UploadMedia(r.Context(), up)
	if err != nil {
		h.progress.Fail(pid, "Upload failed")
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMedia+"/upload", "Upload failed")
		return
	}

	h.progress.Complete(pid)
	h.invalidateGalleries(r)

	slog.Info("media uploaded", "id", media.ID, "title", media.Title, "user", middleware.GetUserEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminMedia, fmt.Sprintf("Uploaded %q", media.Title))
}

// ProgressStart allocates a progress id for an upcoming upload.
// POST /admin/media/progress
func (h *AdminHandler) ProgressStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": h.progress.Start()})
}

// ProgressStatus reports the transfer state for a progress id.
// GET /admin/media/progress/{id}
func (h *AdminHandler) ProgressStatus(w http.ResponseWriter, r *http.Request) {
	pct, errMsg, ok := h.progress.Progress(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown progress id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"percent": pct, "error": errMsg})
}

// MediaEditData is the template data for the edit form.
type MediaEditData struct {
	Media      *model.Media
	Errors     map[string]string
	Categories []model.MediaCategory
}

// MediaEditForm renders the edit form for one item.
func (h *AdminHandler) MediaEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	media, err := h.api.MediaItem(r.Context(), id)
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMedia, "Media not found")
		return
	}

	h.render(w, r, "admin/media_edit", "Edit Media", MediaEditData{
		Media:      media,
		Categories: model.Categories(),
	})
}

// MediaUpdate applies metadata changes and drops the cached galleries.
func (h *AdminHandler) MediaUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminMedia) {
		return
	}

	f := form.ParseMediaEdit(r.PostForm)
	if errs := f.Validate(); len(errs) > 0 {
		media, err := h.api.MediaItem(r.Context(), id)
		if err != nil {
			handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMedia, "Media not found")
			return
		}
		h.render(w, r, "admin/media_edit", "Edit Media", MediaEditData{
			Media:      media,
			Errors:     errs,
			Categories: model.Categories(),
		})
		return
	}

	media, err := h.api.UpdateMedia(r.Context(), id, f.Changes())
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMedia, "Update failed")
		return
	}

	h.invalidateGalleries(r)
	flashSuccess(w, r, h.renderer, redirectAdminMedia, fmt.Sprintf("Updated %q", media.Title))
}

// MediaDelete removes an item and drops the cached galleries.
func (h *AdminHandler) MediaDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteMedia(r.Context(), id); err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMedia, "Delete failed")
		return
	}

	h.invalidateGalleries(r)
	slog.Info("media deleted", "id", id, "user", middleware.GetUserEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminMedia, "Media deleted")
}

// MessagesData is the template data for the message inbox.
type MessagesData struct {
	Messages []model.ContactMessage
	Unread   int
}

// Messages renders the contact message inbox.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.api.ContactMessages(r.Context())
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdmin, "Could not load messages")
		return
	}

	data := MessagesData{Messages: messages}
	for _, m := range messages {
		if !m.IsRead {
			data.Unread++
		}
	}

	h.render(w, r, "admin/messages", "Messages", data)
}

// MessageToggleRead flips the read flag on a message. The form carries
// the current state so the handler knows which way to flip.
func (h *AdminHandler) MessageToggleRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		flashError(w, r, h.renderer, redirectAdminMessages, "Message not found")
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminMessages) {
		return
	}

	var err error
	if r.FormValue("read") == "true" {
		err = h.api.MarkMessageUnread(r.Context(), id)
	} else {
		err = h.api.MarkMessageRead(r.Context(), id)
	}
	if err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMessages, "Could not update the message")
		return
	}

	http.Redirect(w, r, redirectAdminMessages, http.StatusSeeOther)
}

// MessageDelete removes a message.
func (h *AdminHandler) MessageDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		flashError(w, r, h.renderer, redirectAdminMessages, "Message not found")
		return
	}

	if err := h.api.DeleteMessage(r.Context(), id); err != nil {
		handleAPIError(w, r, h.renderer, h.sessions, err, redirectAdminMessages, "Could not delete the message")
		return
	}

	flashSuccess(w, r, h.renderer, redirectAdminMessages, "Message deleted")
}

// AnalyticsData is the template data for the traffic view.
type AnalyticsData struct {
	Days      int
	Daily     []store.DailyCount
	TopPaths  []store.PathCount
	Browsers  []store.PathCount
	Devices   []store.PathCount
	Countries []store.PathCount
}

// Analytics renders the traffic view from locally collected page views.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 1 || days > 365 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	data := AnalyticsData{Days: days}
	ctx := r.Context()

	if data.Daily, err = store.DailyTotals(ctx, h.db, days); err != nil {
		slog.Error("loading daily totals", "error", err)
	}
	if data.TopPaths, err = store.TopPaths(ctx, h.db, cutoff, 10); err != nil {
		slog.Error("loading top paths", "error", err)
	}
	if data.Browsers, err = store.CountByField(ctx, h.db, "browser", cutoff, 10); err != nil {
		slog.Error("loading browser counts", "error", err)
	}
	if data.Devices, err = store.CountByField(ctx, h.db, "device", cutoff, 10); err != nil {
		slog.Error("loading device counts", "error", err)
	}
	if data.Countries, err = store.CountByField(ctx, h.db, "country", cutoff, 10); err != nil {
		slog.Error("loading country counts", "error", err)
	}

	h.render(w, r, "admin/analytics", "Analytics", data)
}

// EventsData is the template data for the event log view.
type EventsData struct {
	Events []store.Event
}

// Events renders the application event log.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := store.RecentEvents(r.Context(), h.db, 100)
	if err != nil {
		slog.Error("loading events", "error", err)
	}
	h.render(w, r, "admin/events", "Events", EventsData{Events: events})
}

func (h *AdminHandler) mediaID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		flashError(w, r, h.renderer, redirectAdminMedia, "Media not found")
		return 0, false
	}
	return id, true
}

// invalidateGalleries drops every cached gallery page after a media
// mutation so the public pages refetch.
func (h *AdminHandler) invalidateGalleries(r *http.Request) {
	if err := h.galleries.InvalidateMedia(r.Context()); err != nil {
		slog.Error("invalidating gallery cache", "error", err)
	}
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, tmpl, title string, data any) {
	if err := h.renderer.Render(w, r, tmpl, render.TemplateData{
		Title: title,
		User:  middleware.GetUser(r),
		Data:  data,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
