// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"net/url"

	"github.com/lensfolio/lensfolio/internal/model"
)

// Contact is the public contact form.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// ParseContact reads the contact form from submitted values.
func ParseContact(values url.Values) Contact {
	return Contact{
		Name:    trimmed(values, "name"),
		Email:   trimmed(values, "email"),
		Phone:   trimmed(values, "phone"),
		Subject: trimmed(values, "subject"),
		Message: trimmed(values, "message"),
	}
}

// Validate returns field errors; an empty map means the form is valid.
func (f Contact) Validate() map[string]string {
	errs := make(map[string]string)

	if f.Name == "" {
		errs["name"] = "Name is required"
	} else if len(f.Name) < 2 {
		errs["name"] = "Name must be at least 2 characters"
	}
	checkLength(errs, "name", f.Name, 100)

	if f.Email == "" {
		errs["email"] = "Email is required"
	} else if !ValidEmail(f.Email) {
		errs["email"] = "Enter a valid email address"
	}

	if f.Phone != "" && !ValidPhone(f.Phone) {
		errs["phone"] = "Enter a valid phone number"
	}

	if f.Subject == "" {
		errs["subject"] = "Subject is required"
	}
	checkLength(errs, "subject", f.Subject, 200)

	if f.Message == "" {
		errs["message"] = "Message is required"
	} else if len(f.Message) < 10 {
		errs["message"] = "Message must be at least 10 characters"
	}
	checkLength(errs, "message", f.Message, 5000)

	return errs
}

// Submission converts the form to the API payload.
func (f Contact) Submission() model.ContactSubmission {
	return model.ContactSubmission{
		Name:    f.Name,
		Email:   f.Email,
		Phone:   f.Phone,
		Subject: f.Subject,
		Message: f.Message,
	}
}
