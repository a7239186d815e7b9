// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form parses and validates the public and admin HTML forms.
// Each form has a Parse function reading url.Values and a Validate
// function returning a field-to-message map; an empty map means the
// input is acceptable. Values are kept as submitted so handlers can
// re-render the form populated after a validation failure.
package form

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// emailRe accepts the practical shape of an address; deliverability
// is the mail server's problem.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// phoneRe accepts digits, spaces, and common separators.
var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{5,19}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}

// ValidPhone reports whether s looks like a phone number.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// trimmed returns the form value with surrounding whitespace removed.
func trimmed(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

// checkLength records a length error for field when value exceeds max
// runes.
func checkLength(errs map[string]string, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		errs[field] = "Must be at most " + strconv.Itoa(max) + " characters"
	}
}
