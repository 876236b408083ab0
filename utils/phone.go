package utils

import (
	"regexp"
	"strings"
)

// DefaultCountryCode replaces a leading trunk zero in local numbers.
const DefaultCountryCode = "254"

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips everything but digits and rewrites a local
// number (one trunk 0) into international form. "0712 345 678" → "254712345678".
// A 00 international prefix is dropped.
func NormalizePhoneNumber(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case strings.HasPrefix(digits, "00"):
		digits = digits[2:]
	case strings.HasPrefix(digits, "0"):
		digits = DefaultCountryCode + digits[1:]
	}
	return digits
}

// WhatsAppChatID returns the gateway chat id for a phone number, or "" when
// the number holds no digits.
func WhatsAppChatID(phone string) string {
	digits := NormalizePhoneNumber(phone)
	if digits == "" {
		return ""
	}
	return digits + "@c.us"
}

// IsValidPhoneNumber accepts numbers with 9 to 15 digits after normalization.
func IsValidPhoneNumber(phone string) bool {
	n := len(NormalizePhoneNumber(phone))
	return n >= 9 && n <= 15
}
