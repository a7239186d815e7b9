// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"

	"github.com/lensfolio/lensfolio/internal/model"
)

// BookingServices lists the bookable service offerings with prices.
// GET /booking/services
func (c *Client) BookingServices(ctx context.Context) ([]model.BookingService, error) {
	var out []model.BookingService
	if err := c.get(ctx, "/booking/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking creates a booking without payment.
// POST /booking
func (c *Client) CreateBooking(ctx context.Context, req model.BookingRequest) (*model.Booking, error) {
	var out model.Booking
	if err := c.post(ctx, "/booking", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// checkoutRequest is the booking payload plus the selected service.
type checkoutRequest struct {
	model.BookingRequest
	ServiceID string `json:"service_id"`
}

// CreateCheckoutSession creates a pending booking and a payment
// session; the caller redirects the client to the returned URL.
// POST /stripe/checkout
func (c *Client) CreateCheckoutSession(ctx context.Context, serviceID string, req model.BookingRequest) (*model.CheckoutSession, error) {
	var out model.CheckoutSession
	payload := checkoutRequest{BookingRequest: req, ServiceID: serviceID}
	if err := c.post(ctx, "/stripe/checkout", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
