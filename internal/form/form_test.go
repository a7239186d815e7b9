// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lensfolio/lensfolio/internal/model"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"admin@portfolio.com", true},
		{"a.b+c@sub.example.org", true},
		{"", false},
		{"nodomain@", false},
		{"@nouser.com", false},
		{"spaces in@example.com", false},
		{"noat.example.com", false},
	}

	for _, tt := range tests {
		if got := ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestContactValidate(t *testing.T) {
	valid := url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"subject": {"Print inquiry"},
		"message": {"I would like a large print of the ridge photo."},
	}

	t.Run("valid form", func(t *testing.T) {
		errs := ParseContact(valid).Validate()
		if len(errs) != 0 {
			t.Errorf("Validate() = %v, want no errors", errs)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		v := url.Values{"name": {"  Jane  "}}
		if got := ParseContact(v).Name; got != "Jane" {
			t.Errorf("Name = %q, want trimmed", got)
		}
	})

	tests := []struct {
		name      string
		mutate    func(url.Values)
		wantField string
	}{
		{"missing name", func(v url.Values) { v.Del("name") }, "name"},
		{"short name", func(v url.Values) { v.Set("name", "J") }, "name"},
		{"missing email", func(v url.Values) { v.Del("email") }, "email"},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }, "email"},
		{"bad phone", func(v url.Values) { v.Set("phone", "abc") }, "phone"},
		{"missing subject", func(v url.Values) { v.Del("subject") }, "subject"},
		{"missing message", func(v url.Values) { v.Del("message") }, "message"},
		{"short message", func(v url.Values) { v.Set("message", "hi") }, "message"},
		{"oversized message", func(v url.Values) { v.Set("message", strings.Repeat("x", 5001)) }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			for k, vals := range valid {
				v[k] = vals
			}
			tt.mutate(v)

			errs := ParseContact(v).Validate()
			if errs[tt.wantField] == "" {
				t.Errorf("Validate() = %v, want error on %q", errs, tt.wantField)
			}
		})
	}
}

func TestContactOptionalPhone(t *testing.T) {
	v := url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"phone":   {"+1 (555) 010-2030"},
		"subject": {"Booking"},
		"message": {"Looking for an event photographer."},
	}

	if errs := ParseContact(v).Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors with valid phone", errs)
	}
}

func bookingServices() []model.BookingService {
	return []model.BookingService{
		{Type: model.ServicePortrait, Name: "Portrait", BasePrice: 150, PricePerHour: 100},
		{Type: model.ServiceEvent, Name: "Event", BasePrice: 300, PricePerHour: 150},
	}
}

func TestBookingValidate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	valid := url.Values{
		"client_name":  {"Jane Doe"},
		"client_email": {"jane@example.com"},
		"service_type": {"portrait"},
		"date":         {"2026-04-01"},
		"duration":     {"2"},
	}

	t.Run("valid form", func(t *testing.T) {
		errs := ParseBooking(valid).Validate(bookingServices(), now)
		if len(errs) != 0 {
			t.Errorf("Validate() = %v, want no errors", errs)
		}
	})

	tests := []struct {
		name      string
		mutate    func(url.Values)
		wantField string
	}{
		{"missing service", func(v url.Values) { v.Del("service_type") }, "service_type"},
		{"unknown service", func(v url.Values) { v.Set("service_type", "drone") }, "service_type"},
		{"missing date", func(v url.Values) { v.Del("date") }, "date"},
		{"malformed date", func(v url.Values) { v.Set("date", "04/01/2026") }, "date"},
		{"past date", func(v url.Values) { v.Set("date", "2026-03-01") }, "date"},
		{"missing duration", func(v url.Values) { v.Del("duration") }, "duration"},
		{"zero duration", func(v url.Values) { v.Set("duration", "0") }, "duration"},
		{"excessive duration", func(v url.Values) { v.Set("duration", "48") }, "duration"},
		{"non-numeric duration", func(v url.Values) { v.Set("duration", "two") }, "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			for k, vals := range valid {
				v[k] = vals
			}
			tt.mutate(v)

			errs := ParseBooking(v).Validate(bookingServices(), now)
			if errs[tt.wantField] == "" {
				t.Errorf("Validate() = %v, want error on %q", errs, tt.wantField)
			}
		})
	}
}

func TestBookingService(t *testing.T) {
	f := Booking{ServiceType: "event"}
	svc := f.Service(bookingServices())
	if svc == nil || svc.Name != "Event" {
		t.Fatalf("Service() = %+v, want Event", svc)
	}

	if got := (Booking{ServiceType: "drone"}).Service(bookingServices()); got != nil {
		t.Errorf("Service() = %+v for unknown type, want nil", got)
	}
}

func TestServiceQuote(t *testing.T) {
	svc := model.BookingService{BasePrice: 150, PricePerHour: 100}

	tests := []struct {
		hours int
		want  float64
	}{
		{1, 150},
		{2, 250},
		{4, 450},
		{0, 150}, // clamped to one hour
	}

	for _, tt := range tests {
		if got := svc.Quote(tt.hours); got != tt.want {
			t.Errorf("Quote(%d) = %v, want %v", tt.hours, got, tt.want)
		}
	}
}

func TestMediaUploadValidate(t *testing.T) {
	valid := url.Values{
		"title":       {"Ridge at dawn"},
		"category":    {"nature"},
		"is_featured": {"on"},
	}

	t.Run("valid form", func(t *testing.T) {
		f := ParseMediaUpload(valid)
		if errs := f.Validate(); len(errs) != 0 {
			t.Errorf("Validate() = %v, want no errors", errs)
		}
		if !f.IsFeatured {
			t.Error("IsFeatured = false, want checkbox honored")
		}
	})

	t.Run("missing title", func(t *testing.T) {
		v := url.Values{"category": {"nature"}}
		if errs := ParseMediaUpload(v).Validate(); errs["title"] == "" {
			t.Errorf("Validate() = %v, want title error", errs)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		v := url.Values{"title": {"x"}, "category": {"architecture"}}
		if errs := ParseMediaUpload(v).Validate(); errs["category"] == "" {
			t.Errorf("Validate() = %v, want category error", errs)
		}
	})
}

func TestMediaEditChanges(t *testing.T) {
	v := url.Values{
		"title":       {"New title"},
		"description": {"Updated"},
		"category":    {"food"},
		"is_public":   {"on"},
	}

	f := ParseMediaEdit(v)
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}

	changes := f.Changes()
	if changes["title"] != "New title" {
		t.Errorf("changes[title] = %v", changes["title"])
	}
	if changes["category"] != "food" {
		t.Errorf("changes[category] = %v", changes["category"])
	}
	if changes["is_public"] != true {
		t.Errorf("changes[is_public] = %v", changes["is_public"])
	}
	if changes["is_featured"] != false {
		t.Errorf("changes[is_featured] = %v", changes["is_featured"])
	}
}
