// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/lensfolio/lensfolio/internal/testutil"
)

func newAdminHandler(t *testing.T, fx *fixture) *AdminHandler {
	t.Helper()
	return NewAdminHandler(fx.client, fx.sessions, fx.renderer, fx.galleries, testutil.DB(t), 10<<20)
}

func TestDashboard(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.get(h.Dashboard, "/admin", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<media>41</media>") {
		t.Errorf("dashboard missing media count: %q", body)
	}
	if !strings.Contains(body, "<unread>1</unread>") {
		t.Errorf("dashboard missing unread count: %q", body)
	}
}

func TestMediaLibrary(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.get(h.MediaLibrary, "/admin/media", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "[10]") {
		t.Errorf("library missing media: %q", body)
	}
}

func TestMediaLibraryRejectedTokenInvalidatesSession(t *testing.T) {
	api := fakeAPI(t)
	wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/media/admin/all" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Invalid or expired token"}`))
			return
		}
		api.ServeHTTP(w, r)
	})

	fx := newFixture(t, wrapped)
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.get(h.MediaLibrary, "/admin/media", nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Errorf("Location = %q, want a login redirect with next", loc)
	}
	if fx.sessions.Token(fx.ctx) != "" {
		t.Error("token must be cleared after a 401")
	}
}

// testJPEG renders a small image as a JPEG upload body.
func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for x := 0; x < 120; x++ {
		for y := 0; y < 80; y++ {
			img.Set(x, y, image.White)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds an upload form submission.
func (fx *fixture) multipartRequest(t *testing.T, fields map[string]string, fileField, fileName string, file []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(file)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/media/upload", &buf).WithContext(fx.ctx)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMediaUpload(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	pid := h.progress.Start()
	req := fx.multipartRequest(t, map[string]string{
		"title":       "Lake at Dawn",
		"category":    "nature",
		"is_featured": "on",
		"progress_id": pid,
	}, "file", "lake.jpg", testJPEG(t))

	rec := httptest.NewRecorder()
	h.MediaUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303, body %q", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != redirectAdminMedia {
		t.Errorf("Location = %q, want %q", loc, redirectAdminMedia)
	}
	// A finished upload clears its progress entry.
	if _, _, ok := h.progress.Progress(pid); ok {
		t.Error("progress entry should be cleared after completion")
	}
}

func TestMediaUploadValidation(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)

	req := fx.multipartRequest(t, map[string]string{
		"title":    "",
		"category": "cars",
	}, "file", "lake.jpg", testJPEG(t))

	rec := httptest.NewRecorder()
	h.MediaUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<err field="title">`) || !strings.Contains(body, `<err field="category">`) {
		t.Errorf("missing field errors: %q", body)
	}
}

func TestMediaUploadRejectsNonImage(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)

	req := fx.multipartRequest(t, map[string]string{
		"title":    "Notes",
		"category": "nature",
	}, "file", "notes.pdf", []byte("%PDF-1.4 not an image"))

	rec := httptest.NewRecorder()
	h.MediaUpload(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 back to the form", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != redirectAdminMedia+"/upload" {
		t.Errorf("Location = %q, want the upload form", loc)
	}
}

func TestProgressEndpoints(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)

	rec := fx.postForm(h.ProgressStart, "/admin/media/progress", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var started struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil || started.ID == "" {
		t.Fatalf("ProgressStart response invalid: err=%v id=%q", err, started.ID)
	}

	h.progress.Update(started.ID, 42)

	rec = fx.get(h.ProgressStatus, "/admin/media/progress/"+started.ID, map[string]string{"id": started.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var status struct {
		Percent int    `json:"percent"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Percent != 42 {
		t.Errorf("percent = %d, want 42", status.Percent)
	}

	rec = fx.get(h.ProgressStatus, "/admin/media/progress/nope", map[string]string{"id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestMediaUpdateInvalidatesGalleryCache(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	// Warm the public cache so there is something to drop.
	site := newSiteHandler(fx)
	view := func() int {
		rec := fx.get(site.Gallery, "/gallery/nature", map[string]string{"category": "nature"})
		return rec.Code
	}
	view()

	rec := fx.postForm(h.MediaUpdate, "/admin/media/10", url.Values{
		"title":    {"Renamed"},
		"category": {"nature"},
	}, map[string]string{"id": "10"})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303, body %q", rec.Code, rec.Body.String())
	}

	// The cached page was dropped, so the next view refetches without
	// erroring.
	if code := view(); code != http.StatusOK {
		t.Errorf("gallery after invalidation = %d, want 200", code)
	}
}

func TestMediaDelete(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.postForm(h.MediaDelete, "/admin/media/10/delete", nil, map[string]string{"id": "10"})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != redirectAdminMedia {
		t.Errorf("Location = %q, want %q", loc, redirectAdminMedia)
	}
}

func TestMediaDeleteBadID(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)

	rec := fx.postForm(h.MediaDelete, "/admin/media/abc/delete", nil, map[string]string{"id": "abc"})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 back to the library", rec.Code)
	}
}

func TestMessages(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.get(h.Messages, "/admin/messages", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "<unread>1</unread>") {
		t.Errorf("wrong unread count: %q", body)
	}
}

func TestMessageToggleRead(t *testing.T) {
	var gotPath string
	api := fakeAPI(t)
	wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/contact/messages/") {
			gotPath = r.URL.Path
		}
		api.ServeHTTP(w, r)
	})

	fx := newFixture(t, wrapped)
	h := newAdminHandler(t, fx)
	fx.login()

	fx.postForm(h.MessageToggleRead, "/admin/messages/m1/read",
		url.Values{"read": {"false"}}, map[string]string{"id": "m1"})
	if gotPath != "/api/contact/messages/m1/read" {
		t.Errorf("path = %q, want the read endpoint", gotPath)
	}

	fx.postForm(h.MessageToggleRead, "/admin/messages/m2/read",
		url.Values{"read": {"true"}}, map[string]string{"id": "m2"})
	if gotPath != "/api/contact/messages/m2/unread" {
		t.Errorf("path = %q, want the unread endpoint", gotPath)
	}
}

func TestAnalyticsView(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.get(h.Analytics, "/admin/analytics?days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "<days>7</days>") {
		t.Errorf("days not honored: %q", body)
	}

	// Out-of-range values fall back to the default window.
	rec = fx.get(h.Analytics, "/admin/analytics?days=999", nil)
	if body := rec.Body.String(); !strings.Contains(body, "<days>30</days>") {
		t.Errorf("invalid days should default to 30: %q", body)
	}
}

func TestEventsView(t *testing.T) {
	fx := newFixture(t, fakeAPI(t))
	h := newAdminHandler(t, fx)
	fx.login()

	rec := fx.get(h.Events, "/admin/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
