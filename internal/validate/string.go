// Package validate provides centralized input validation and
// sanitization for user-supplied text: venue and event names, chat
// messages, and free-form descriptions.
package validate

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints. Returns the
// validated (and optionally trimmed) string.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count.
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}
	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// SanitizeHTML escapes HTML special characters. Called on all
// user-generated text that clients render.
func SanitizeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeString performs both validation and HTML sanitization.
func SanitizeString(s string, constraints StringConstraints) (string, error) {
	validated, err := String(s, constraints)
	if err != nil {
		return "", err
	}
	return SanitizeHTML(validated), nil
}

// venueNamePattern allows letters, numbers, spaces, and common
// punctuation seen in real venue names ("B's Bar & Lounge").
var venueNamePattern = regexp.MustCompile(`^[\pL\pN '&_\-\.]+$`)

// VenueName validates a venue name: 1-100 characters, letters,
// numbers, spaces, and light punctuation.
func VenueName(name string) (string, error) {
	return SanitizeString(name, StringConstraints{
		MinLength:      1,
		MaxLength:      100,
		AllowedPattern: venueNamePattern,
		TrimSpace:      true,
	})
}

// EventName validates an event name: 1-200 characters.
func EventName(name string) (string, error) {
	return SanitizeString(name, StringConstraints{
		MinLength: 1,
		MaxLength: 200,
		TrimSpace: true,
	})
}

// ChatText validates a chat message: required, max 1000 characters.
func ChatText(text string) (string, error) {
	return SanitizeString(text, StringConstraints{
		MinLength: 1,
		MaxLength: 1000,
		TrimSpace: true,
	})
}

// Description validates an optional description field, max 5000
// characters.
func Description(desc string) (string, error) {
	return SanitizeString(desc, StringConstraints{
		MaxLength:  5000,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}
