// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/cache"
	"github.com/lensfolio/lensfolio/internal/form"
	"github.com/lensfolio/lensfolio/internal/model"
	"github.com/lensfolio/lensfolio/internal/render"
)

// BookingHandler handles the booking flow: the form, the price
// preview, and the handoff to checkout.
type BookingHandler struct {
	api       *apiclient.Client
	galleries *cache.GalleryCache
	renderer  *render.Renderer
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(api *apiclient.Client, galleries *cache.GalleryCache, renderer *render.Renderer) *BookingHandler {
	return &BookingHandler{api: api, galleries: galleries, renderer: renderer}
}

// BookingData is the template data for the booking page.
type BookingData struct {
	Services []model.BookingService
	Selected model.ServiceType
	Form     form.Booking
	Errors   map[string]string
}

// BookingForm renders the booking page, optionally preselecting a
// service from the query string.
func (h *BookingHandler) BookingForm(w http.ResponseWriter, r *http.Request) {
	services, err := h.services(r)
	if err != nil {
		slog.Error("loading booking services", "error", err)
		h.renderer.Error(w, r, http.StatusBadGateway, "Booking is unavailable right now")
		return
	}

	data := BookingData{Services: services}
	if selected := r.URL.Query().Get("service"); selected != "" {
		for _, svc := range services {
			if string(svc.Type) == selected {
				data.Selected = svc.Type
				break
			}
		}
	}

	h.render(w, r, data)
}

// QuoteResponse is the price preview payload. The amount here is what
// the form shows; the API computes the billed price at checkout.
type QuoteResponse struct {
	Service   string  `json:"service"`
	Hours     int     `json:"hours"`
	Price     float64 `json:"price"`
	Formatted string  `json:"formatted"`
}

// Quote returns the price preview for a service and duration.
// GET /booking/quote?service=portrait&hours=3
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	services, err := h.services(r)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "services unavailable")
		return
	}

	hours, err := strconv.Atoi(r.URL.Query().Get("hours"))
	if err != nil || hours < 1 || hours > 12 {
		writeJSONError(w, http.StatusBadRequest, "hours must be between 1 and 12")
		return
	}

	name := r.URL.Query().Get("service")
	for _, svc := range services {
		if string(svc.Type) != name {
			continue
		}
		price := svc.Quote(hours)
		writeJSON(w, http.StatusOK, QuoteResponse{
			Service:   name,
			Hours:     hours,
			Price:     price,
			Formatted: render.FormatPrice(price),
		})
		return
	}

	writeJSONError(w, http.StatusBadRequest, "unknown service")
}

// Checkout validates the booking and redirects to the payment page
// created by the API. Validation failures re-render the form.
func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectBooking) {
		return
	}

	services, err := h.services(r)
	if err != nil {
		slog.Error("loading booking services", "error", err)
		flashError(w, r, h.renderer, redirectBooking, "Booking is unavailable right now")
		return
	}

	f := form.ParseBooking(r.PostForm)
	if errs := f.Validate(services, time.Now()); len(errs) > 0 {
		h.render(w, r, BookingData{
			Services: services,
			Selected: model.ServiceType(f.ServiceType),
			Form:     f,
			Errors:   errs,
		})
		return
	}

	svc := f.Service(services)
	checkout, err := h.api.CreateCheckoutSession(r.Context(), string(svc.Type), f.Request())
	if err != nil {
		slog.Error("creating checkout session", "error", err)
		flashError(w, r, h.renderer, redirectBooking, "Could not start checkout, please try again")
		return
	}

	// Off to the payment provider.
	http.Redirect(w, r, checkout.URL, http.StatusSeeOther)
}

// Success renders the post-payment return page.
func (h *BookingHandler) Success(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "site/booking_success", render.TemplateData{
		Title: "Booking Confirmed",
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Cancel handles an abandoned checkout.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	flashAndRedirect(w, r, h.renderer, redirectBooking, "Checkout cancelled, your booking was not placed", "info")
}

func (h *BookingHandler) services(r *http.Request) ([]model.BookingService, error) {
	return h.galleries.Services(r.Context(), func() (*[]model.BookingService, error) {
		list, err := h.api.BookingServices(r.Context())
		if err != nil {
			return nil, err
		}
		return &list, nil
	})
}

func (h *BookingHandler) render(w http.ResponseWriter, r *http.Request, data BookingData) {
	if err := h.renderer.Render(w, r, "site/booking", render.TemplateData{
		Title: "Book a Session",
		Data:  data,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
