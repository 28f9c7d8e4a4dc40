package utils

import (
	"net/url" // URL parsing
	"regexp"  // Regular expressions
	"strings" // String manipulation
	"unicode" // Character classes
)

// MaxImages is the maximum number of images a property may carry
const MaxImages = 10

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)
	namePattern  = regexp.MustCompile(`^[\p{L}][\p{L} '.\-]*$`)
)

// IsValidPhone accepts digits with common separators and 7 to 15 digits in total
func IsValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// IsValidName accepts letters, spaces, apostrophes, dots and hyphens, 2 to 100 characters
func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	n := len([]rune(name))
	return n >= 2 && n <= 100 && namePattern.MatchString(name)
}

// IsValidPassword requires 8 to 72 bytes with at least one letter and one digit
func IsValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 72 { // bcrypt ignores bytes past 72
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// IsValidURL accepts absolute http and https URLs
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateImages returns a user-facing message when the image list is not 1 to 10 URLs
func ValidateImages(images []string) string {
	if len(images) == 0 {
		return "At least one image is required"
	}
	if len(images) > MaxImages {
		return "A property can have at most 10 images"
	}
	for _, img := range images {
		if !IsValidURL(img) {
			return "Each image must be a valid http(s) URL"
		}
	}
	return ""
}

// Sanitize trims whitespace and drops control characters other than newline and tab.
// Text is stored as entered; HTML escaping happens when it is rendered.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// OneOf reports whether value is one of the allowed values
func OneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
