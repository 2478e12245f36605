package utils

import (
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

// ValidPhone reports whether phone parses as a real mobile number. Numbers
// are expected in international format; bare national numbers fall back to
// the KZ region.
func ValidPhone(phone string) bool {
	parsed, err := phonenumbers.Parse(phone, "KZ")
	if err != nil {
		return false
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return false
	}

	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true
	}
	return false
}

// ValidFullName reports whether a display name contains only letters,
// spaces and hyphens.
func ValidFullName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}
