// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/cache"
	"github.com/lensfolio/lensfolio/internal/render"
	"github.com/lensfolio/lensfolio/internal/session"
	"github.com/lensfolio/lensfolio/internal/ui"
)

// Fixture credentials matching the fake API.
const (
	testEmail    = "admin@portfolio.com"
	testPassword = "admin123"
	testToken    = "tok123"
)

const testUserJSON = `{"id":"1","email":"admin@portfolio.com","name":"Admin","role":"admin"}`

// testTemplates is a minimal template tree exposing the data each
// handler passes, so assertions can read it back out of the HTML.
var testTemplates = fstest.MapFS{
	"layouts/base.html": &fstest.MapFile{
		Data: []byte(`{{define "base"}}` +
			`{{if .Flash}}<flash type="{{.FlashType}}">{{.Flash}}</flash>{{end}}` +
			`{{template "content" .}}{{end}}`),
	},
	"layouts/admin.html": &fstest.MapFile{Data: []byte(``)},
	"auth/login.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}<form next="{{.Data.Next}}">` +
			`{{with .Data.Error}}<error>{{.}}</error>{{end}}{{end}}`),
	},
	"site/home.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{range .Data.Featured}}[{{.ID}}]{{end}}{{end}}`),
	},
	"site/gallery.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{range .Data.Gallery.Media}}[{{.ID}}]{{end}}` +
			`{{with .Data.Lightbox}}<lightbox media="{{.Media.ID}}" prev="{{.PrevID}}" next="{{.NextID}}">{{end}}` +
			`<pages>{{.Data.Pagination.TotalPages}}</pages>{{end}}`),
	},
	"site/about.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{.Data.Content}}{{end}}`),
	},
	"site/services.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{range .Data.Services}}<svc>{{.Name}}</svc>{{end}}{{end}}`),
	},
	"site/contact.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{range $k, $v := .Data.Errors}}<err field="{{$k}}">{{end}}{{end}}`),
	},
	"site/booking.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}<selected>{{.Data.Selected}}</selected>` +
			`{{range $k, $v := .Data.Errors}}<err field="{{$k}}">{{end}}{{end}}`),
	},
	"site/booking_success.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}confirmed{{end}}`),
	},
	"site/error.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{.Data.Message}}{{end}}`),
	},
	"admin/dashboard.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}<media>{{.Data.TotalMedia}}</media><unread>{{.Data.UnreadCount}}</unread>{{end}}`),
	},
	"admin/media.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{range .Data.Library.Media}}[{{.ID}}]{{end}}{{end}}`),
	},
	"admin/media_upload.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{range $k, $v := .Data.Errors}}<err field="{{$k}}">{{end}}{{end}}`),
	},
	"admin/media_edit.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}<title>{{.Data.Media.Title}}</title>{{end}}`),
	},
	"admin/messages.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}<unread>{{.Data.Unread}}</unread>{{end}}`),
	},
	"admin/analytics.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}<days>{{.Data.Days}}</days>{{end}}`),
	},
	"admin/events.html": &fstest.MapFile{
		Data: []byte(`{{define "content"}}{{len .Data.Events}} events{{end}}`),
	},
}

var testContent = fstest.MapFS{
	"about.md":    &fstest.MapFile{Data: []byte("# About\n\nStudio *story* here.")},
	"services.md": &fstest.MapFile{Data: []byte("What we offer.")},
}

// fixture wires the handler dependencies against a fake API.
type fixture struct {
	t         *testing.T
	client    *apiclient.Client
	sm        *scs.SessionManager
	sessions  *session.Manager
	renderer  *render.Renderer
	galleries *cache.GalleryCache
	uiState   *ui.State
	ctx       context.Context
}

func newFixture(t *testing.T, api http.Handler) *fixture {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	sm := scs.New()
	client := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second})

	renderer, err := render.New(render.Config{TemplatesFS: testTemplates, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}

	return &fixture{
		t:         t,
		client:    client,
		sm:        sm,
		sessions:  session.NewManager(sm, client, nil),
		renderer:  renderer,
		galleries: cache.NewGalleryCache(cache.NewWithTTL(time.Minute), time.Minute),
		uiState:   ui.NewState(sm),
		ctx:       ctx,
	}
}

// get runs a handler against a GET request carrying the fixture's
// session. params are chi route parameters.
func (fx *fixture) get(h http.HandlerFunc, target string, params map[string]string) *httptest.ResponseRecorder {
	fx.t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(fx.ctx)
	return fx.serve(h, req, params)
}

// postForm runs a handler against a POST form submission.
func (fx *fixture) postForm(h http.HandlerFunc, target string, values url.Values, params map[string]string) *httptest.ResponseRecorder {
	fx.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode())).WithContext(fx.ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return fx.serve(h, req, params)
}

func (fx *fixture) serve(h http.HandlerFunc, req *http.Request, params map[string]string) *httptest.ResponseRecorder {
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// login establishes an authenticated session through the fake API.
func (fx *fixture) login() {
	fx.t.Helper()
	if err := fx.sessions.Login(fx.ctx, testEmail, testPassword); err != nil {
		fx.t.Fatalf("login: %v", err)
	}
}

// fakeAPI returns a handler speaking the portfolio API's envelope for
// the routes the handlers exercise.
func fakeAPI(t *testing.T) *chi.Mux {
	t.Helper()

	ok := func(w http.ResponseWriter, data string) {
		w.Header().Set("Content-Type", "application/json")
		if data == "" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":` + data + `}`))
	}

	mux := chi.NewRouter()
	mux.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
			var creds struct{ Email, Password string }
			if err := jsonDecode(req, &creds); err != nil || creds.Email != testEmail || creds.Password != testPassword {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
				return
			}
			ok(w, `{"token":"`+testToken+`","user":`+testUserJSON+`}`)
		})
		r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Invalid or expired token"}`))
				return
			}
			ok(w, testUserJSON)
		})
		r.Post("/auth/logout", func(w http.ResponseWriter, req *http.Request) { ok(w, "") })

		r.Get("/media/featured", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `[{"id":1,"title":"Peak","category":"nature"},{"id":2,"title":"Sprint","category":"athletes"}]`)
		})
		r.Get("/media/{category}", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `{"category":"`+chi.URLParam(req, "category")+`",`+
				`"media":[{"id":10,"title":"First"},{"id":11,"title":"Second"},{"id":12,"title":"Third"}],`+
				`"total":30,"page":1,"limit":12}`)
		})
		r.Get("/media/admin/all", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `{"category":"","media":[{"id":10,"title":"First"}],"total":41,"page":1,"limit":20}`)
		})
		r.Get("/media/item/{id}", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `{"id":`+chi.URLParam(req, "id")+`,"title":"First","category":"nature"}`)
		})
		r.Put("/media/{id}", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `{"id":`+chi.URLParam(req, "id")+`,"title":"Renamed"}`)
		})
		r.Delete("/media/{id}", func(w http.ResponseWriter, req *http.Request) { ok(w, "") })
		r.Post("/media/upload", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `{"id":99,"title":"Uploaded"}`)
		})

		r.Post("/contact", func(w http.ResponseWriter, req *http.Request) { ok(w, "") })
		r.Get("/contact/messages", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `[{"id":"m1","name":"A","is_read":false},{"id":"m2","name":"B","is_read":true}]`)
		})
		r.Put("/contact/messages/{id}/read", func(w http.ResponseWriter, req *http.Request) { ok(w, "") })
		r.Put("/contact/messages/{id}/unread", func(w http.ResponseWriter, req *http.Request) { ok(w, "") })
		r.Delete("/contact/messages/{id}", func(w http.ResponseWriter, req *http.Request) { ok(w, "") })

		r.Get("/booking/services", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `[{"type":"portrait","name":"Portrait Session","basePrice":150,"pricePerHour":100},`+
				`{"type":"wedding","name":"Wedding","basePrice":1200,"pricePerHour":300}]`)
		})
		r.Post("/stripe/checkout", func(w http.ResponseWriter, req *http.Request) {
			ok(w, `{"url":"https://checkout.stripe.com/pay/cs_test","session_id":"cs_test"}`)
		})

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`{"status":"healthy"}`))
		})
	})
	return mux
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
