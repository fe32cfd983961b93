package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NormalizePhone prefixes `phone` with `countryCode` when it lacks a leading "+".
// All spaces are stripped. An empty phone stays empty.
func NormalizePhone(phone, countryCode string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	phone = strings.TrimLeft(phone, "0")
	return countryCode + phone
}
