// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"net/url"
	"strconv"
	"time"

	"github.com/lensfolio/lensfolio/internal/model"
)

// Duration bounds for a session, in hours.
const (
	MinDurationHours = 1
	MaxDurationHours = 12
)

// Booking is the public booking form.
type Booking struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	ServiceType string
	Description string
	Location    string
	Date        string // yyyy-mm-dd, as the date input submits it
	Duration    int

	rawDuration string
}

// ParseBooking reads the booking form from submitted values.
func ParseBooking(values url.Values) Booking {
	f := Booking{
		ClientName:  trimmed(values, "client_name"),
		ClientEmail: trimmed(values, "client_email"),
		ClientPhone: trimmed(values, "client_phone"),
		ServiceType: trimmed(values, "service_type"),
		Description: trimmed(values, "description"),
		Location:    trimmed(values, "location"),
		Date:        trimmed(values, "date"),
		rawDuration: trimmed(values, "duration"),
	}
	f.Duration, _ = strconv.Atoi(f.rawDuration)
	return f
}

// Validate returns field errors. services is the offering list fetched
// from the API; the selected type must be one of them. now anchors the
// date check so tests stay deterministic.
func (f Booking) Validate(services []model.BookingService, now time.Time) map[string]string {
	errs := make(map[string]string)

	if f.ClientName == "" {
		errs["client_name"] = "Name is required"
	} else if len(f.ClientName) < 2 {
		errs["client_name"] = "Name must be at least 2 characters"
	}

	if f.ClientEmail == "" {
		errs["client_email"] = "Email is required"
	} else if !ValidEmail(f.ClientEmail) {
		errs["client_email"] = "Enter a valid email address"
	}

	if f.ClientPhone != "" && !ValidPhone(f.ClientPhone) {
		errs["client_phone"] = "Enter a valid phone number"
	}

	if f.ServiceType == "" {
		errs["service_type"] = "Select a service"
	} else if f.Service(services) == nil {
		errs["service_type"] = "Unknown service"
	}

	if f.Date == "" {
		errs["date"] = "Date is required"
	} else if day, err := time.Parse("2006-01-02", f.Date); err != nil {
		errs["date"] = "Enter a valid date"
	} else if day.Before(now.Truncate(24 * time.Hour)) {
		errs["date"] = "Date must be in the future"
	}

	if f.rawDuration == "" {
		errs["duration"] = "Duration is required"
	} else if f.Duration < MinDurationHours || f.Duration > MaxDurationHours {
		errs["duration"] = "Duration must be between " +
			strconv.Itoa(MinDurationHours) + " and " + strconv.Itoa(MaxDurationHours) + " hours"
	}

	checkLength(errs, "location", f.Location, 200)
	checkLength(errs, "description", f.Description, 2000)

	return errs
}

// Service returns the selected offering, or nil when the type does not
// match any of them.
func (f Booking) Service(services []model.BookingService) *model.BookingService {
	for i := range services {
		if string(services[i].Type) == f.ServiceType {
			return &services[i]
		}
	}
	return nil
}

// Request converts the form to the API payload.
func (f Booking) Request() model.BookingRequest {
	return model.BookingRequest{
		ClientName:    f.ClientName,
		ClientEmail:   f.ClientEmail,
		ClientPhone:   f.ClientPhone,
		ServiceType:   model.ServiceType(f.ServiceType),
		Description:   f.Description,
		Location:      f.Location,
		ScheduledDate: f.Date,
		Duration:      f.Duration,
	}
}
