// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses and executes HTML templates for the site,
// admin and auth pages. Pages render into a shared base layout with
// common partials; admin pages add an admin layout on top.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lensfolio/lensfolio/internal/model"
)

// htmlSanitizer strips unsafe markup from rendered markdown before it
// reaches a template as trusted HTML.
var htmlSanitizer = bluemonday.UGCPolicy()

// pricePrinter localizes prices and counts for display.
var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	templatesFS    fs.FS
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		templatesFS:    cfg.TemplatesFS,
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses all templates from the filesystem.
func (r *Renderer) parseTemplates() error {
	partials, err := r.getTemplateFiles("partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	baseLayout := "layouts/base.html"
	adminLayout := "layouts/admin.html"

	// Site and auth pages use the base layout only; admin pages add
	// the admin layout on top.
	groups := []struct {
		dir     string
		layouts []string
	}{
		{"site", []string{baseLayout}},
		{"auth", []string{baseLayout}},
		{"admin", []string{baseLayout, adminLayout}},
	}

	for _, g := range groups {
		pages, err := r.getTemplateFiles(g.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", g.dir, err)
		}

		for _, tmplPath := range pages {
			name := g.dir + "/" + strings.TrimSuffix(filepath.Base(tmplPath), ".html")

			files := append([]string{}, g.layouts...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(r.templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}

			r.templates[name] = tmpl
		}
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func (r *Renderer) getTemplateFiles(dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(r.templatesFS, dir)
	if err != nil {
		// Directory might not exist yet, that's ok
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
		"markdown": Markdown,
		"price":    FormatPrice,
		"formatNumber": func(n int64) string {
			return pricePrinter.Sprintf("%d", n)
		},
		"categoryTitle": func(c model.MediaCategory) string {
			s := string(c)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
	}
}

// Markdown converts markdown source to sanitized HTML.
func Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes()))
}

// FormatPrice renders a USD amount for display, e.g. on the booking
// and services pages.
func FormatPrice(amount float64) string {
	return pricePrinter.Sprint(currency.Symbol(currency.USD.Amount(amount)))
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Description string
	User        *model.User
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
}

// Render renders a template with the given data.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with an explicit response status.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	if r.isDev {
		// Reparse on every request so template edits show up without
		// a restart.
		r.templates = make(map[string]*template.Template)
		if err := r.parseTemplates(); err != nil {
			return err
		}
	}

	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()

	// Get flash message from session
	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
	return nil
}

// Error renders the shared error page with the given status. It falls
// back to http.Error when the error template itself fails.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	data := TemplateData{
		Title: fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Data:  map[string]any{"Status": status, "Message": msg},
	}
	if err := r.RenderStatus(w, req, status, "site/error", data); err != nil {
		http.Error(w, msg, status)
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, msg, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", msg)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}
