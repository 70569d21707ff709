package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail reports whether the address has a plausible mailbox shape.
// Deliverability is proven by the verification mail, not here.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword enforces the password policy: at least 8 characters
// with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}

// SanitizeEmail normalizes an address for storage and lookup. Emails are
// compared case-insensitively everywhere, so they are stored lower-case.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
