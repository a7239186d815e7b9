// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/form"
	"github.com/lensfolio/lensfolio/internal/render"
)

// ContactHandler handles the contact form.
type ContactHandler struct {
	api      *apiclient.Client
	renderer *render.Renderer
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(api *apiclient.Client, renderer *render.Renderer) *ContactHandler {
	return &ContactHandler{api: api, renderer: renderer}
}

// ContactData is the template data for the contact page.
type ContactData struct {
	Form   form.Contact
	Errors map[string]string
}

// ContactForm renders the contact page.
func (h *ContactHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, ContactData{})
}

// ContactSubmit validates the submission and forwards it upstream.
// Validation failures re-render the form with the entered values so
// nothing is lost.
func (h *ContactHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectContact) {
		return
	}

	f := form.ParseContact(r.PostForm)
	if errs := f.Validate(); len(errs) > 0 {
		h.render(w, r, ContactData{Form: f, Errors: errs})
		return
	}

	if err := h.api.SubmitContact(r.Context(), f.Submission()); err != nil {
		slog.Error("submitting contact message", "error", err)
		flashError(w, r, h.renderer, redirectContact, "Could not send your message, please try again")
		return
	}

	flashSuccess(w, r, h.renderer, redirectContact, "Thanks, your message has been sent")
}

func (h *ContactHandler) render(w http.ResponseWriter, r *http.Request, data ContactData) {
	if err := h.renderer.Render(w, r, "site/contact", render.TemplateData{
		Title: "Contact",
		Data:  data,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
