// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteGallery is the gallery category route pattern.
	RouteGallery = "/gallery/{category}"
	// RouteAbout is the about page route.
	RouteAbout = "/about"
	// RouteServices is the services page route.
	RouteServices = "/services"
	// RouteContact is the contact page route.
	RouteContact = "/contact"
	// RouteBooking is the booking page route.
	RouteBooking = "/booking"
	// RouteBookingQuote is the price preview route.
	RouteBookingQuote = "/booking/quote"
	// RouteBookingCheckout is the checkout route.
	RouteBookingCheckout = "/booking/checkout"
	// RouteBookingSuccess is the post-payment return route.
	RouteBookingSuccess = "/booking/success"
	// RouteBookingCancel is the abandoned-checkout return route.
	RouteBookingCancel = "/booking/cancel"
	// RouteHealth is the health check route.
	RouteHealth = "/health"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
)

// Admin routes, mounted under /admin.
const (
	redirectAdmin         = "/admin"
	redirectAdminMedia    = "/admin/media"
	redirectAdminMessages = "/admin/messages"
	redirectLogin         = RouteLogin
	redirectBooking       = RouteBooking
	redirectContact       = RouteContact
)

// galleryPageSize is how many media items a public gallery page shows.
const galleryPageSize = 12

// adminPageSize is how many rows admin list views show.
const adminPageSize = 20
