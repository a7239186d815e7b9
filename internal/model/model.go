// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the data transfer objects exchanged with the
// portfolio API. The API owns these schemas; this package mirrors them
// without adding behavior beyond what forms and templates require.
package model

import "time"

// User is the authenticated identity returned by the API.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaCategory is a public gallery category.
type MediaCategory string

// Gallery categories served by the API.
const (
	CategoryAthletes  MediaCategory = "athletes"
	CategoryFood      MediaCategory = "food"
	CategoryNature    MediaCategory = "nature"
	CategoryPortraits MediaCategory = "portraits"
	CategoryAction    MediaCategory = "action"
)

// Categories returns all gallery categories in display order.
func Categories() []MediaCategory {
	return []MediaCategory{
		CategoryAthletes,
		CategoryFood,
		CategoryNature,
		CategoryPortraits,
		CategoryAction,
	}
}

// ValidCategory reports whether s names a known gallery category.
func ValidCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Media is a single photo or video in the portfolio.
type Media struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Category     MediaCategory `json:"category"`
	URL          string        `json:"s3_url"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	Type         string        `json:"type"` // "image" or "video"
	FileSize     int64         `json:"file_size"`
	FileName     string        `json:"file_name"`
	MimeType     string        `json:"mime_type"`
	Width        int           `json:"width,omitempty"`
	Height       int           `json:"height,omitempty"`
	ViewCount    int64         `json:"view_count"`
	IsFeatured   bool          `json:"is_featured"`
	IsPublic     bool          `json:"is_public"`
	SortOrder    int           `json:"sort_order"`
	UploadedAt   time.Time     `json:"uploaded_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Gallery is one page of media for a category.
type Gallery struct {
	Category MediaCategory `json:"category"`
	Media    []Media       `json:"media"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

// ContactMessage is a message submitted through the contact form,
// as stored and returned by the API.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactSubmission is the contact form payload sent to the API.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ServiceType identifies a bookable photography service.
type ServiceType string

// Bookable service types.
const (
	ServicePortrait   ServiceType = "portrait"
	ServiceWedding    ServiceType = "wedding"
	ServiceEvent      ServiceType = "event"
	ServiceCommercial ServiceType = "commercial"
	ServiceSports     ServiceType = "sports"
	ServiceNature     ServiceType = "nature"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking statuses reported by the API.
const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRefunded  BookingStatus = "refunded"
)

// BookingService describes a service offering with its price model.
type BookingService struct {
	Type         ServiceType `json:"type"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	BasePrice    float64     `json:"basePrice"`
	PricePerHour float64     `json:"pricePerHour"`
}

// Quote returns the preview price for a session of the given length:
// the base price covers the first hour, each additional hour adds the
// hourly rate. The API computes the billed amount; this figure is what
// the booking form shows before checkout.
func (s BookingService) Quote(hours int) float64 {
	if hours < 1 {
		hours = 1
	}
	return s.BasePrice + s.PricePerHour*float64(hours-1)
}

// Booking is a scheduled photography session.
type Booking struct {
	ID              int64         `json:"id"`
	ClientName      string        `json:"client_name"`
	ClientEmail     string        `json:"client_email"`
	ClientPhone     string        `json:"client_phone"`
	ServiceType     ServiceType   `json:"service_type"`
	Description     string        `json:"description,omitempty"`
	Location        string        `json:"location,omitempty"`
	ScheduledDate   time.Time     `json:"scheduled_date"`
	Duration        int           `json:"duration"` // hours
	Price           float64       `json:"price"`
	Status          BookingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	StripeSessionID string        `json:"stripe_session_id,omitempty"`
	PaymentStatus   string        `json:"payment_status"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// BookingRequest is the payload for creating a booking or a checkout
// session. ScheduledDate travels as an ISO date string.
type BookingRequest struct {
	ClientName    string      `json:"client_name"`
	ClientEmail   string      `json:"client_email"`
	ClientPhone   string      `json:"client_phone"`
	ServiceType   ServiceType `json:"service_type"`
	Description   string      `json:"description,omitempty"`
	Location      string      `json:"location"`
	ScheduledDate string      `json:"scheduled_date"`
	Duration      int         `json:"duration"`
	Notes         string      `json:"notes,omitempty"`
}

// CheckoutSession is returned when the API creates a payment session.
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
	BookingID int64  `json:"booking_id,omitempty"`
}
