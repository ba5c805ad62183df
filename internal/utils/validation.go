package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrEmptyName   = errors.New("name cannot be empty")
	ErrNameTooLong = errors.New("name exceeds 255 characters")
	ErrInvalidNIP  = errors.New("NIP must be 18 digits")
)

var nipPattern = regexp.MustCompile(`^[0-9]{18}$`)

// SanitizeString escapes HTML and strips control characters
func SanitizeString(input string) string {
	sanitized := html.EscapeString(input)

	var result strings.Builder
	for _, r := range sanitized {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

// ValidateNamaKegiatan checks an activity name for emptiness and length
func ValidateNamaKegiatan(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if len(trimmed) > 255 {
		return ErrNameTooLong
	}
	return nil
}

// ValidateNIP checks the civil-servant identification number format
func ValidateNIP(nip string) error {
	if !nipPattern.MatchString(nip) {
		return ErrInvalidNIP
	}
	return nil
}
