package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// boardIDRegex matches board identifiers: a letter or digit followed by
// letters, digits, dots, dashes or underscores.
var boardIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBoardID validates a board identifier. Board ids appear in URLs,
// file names and redis keys, so they must not contain separators.
//
// Validation rules:
//   - Not empty, at most 128 characters
//   - Letters, digits, '.', '-' and '_' only, not starting with '.'
//   - No ".." sequences
func ValidateBoardID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBoard, "board id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidBoard, "board id too long (max 128 characters)")
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidBoard, "board id cannot contain %q", "..")
	}
	if !boardIDRegex.MatchString(id) {
		return New(ErrCodeInvalidBoard, "invalid board id: %q", id)
	}
	return nil
}

// ValidateStackName validates a user-entered stack name.
func ValidateStackName(name string) error {
	if len(name) > 80 {
		return New(ErrCodeInvalidName, "stack name too long (max 80 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "stack name contains control characters")
		}
	}
	return nil
}

// ValidateCoordinates rejects NaN and infinite coordinates. Range checks
// depend on the board size and happen in the placement reconciler.
func ValidateCoordinates(top, left float64) error {
	for _, v := range []float64{top, left} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidPosition, "position must be finite, got (%v, %v)", top, left)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
