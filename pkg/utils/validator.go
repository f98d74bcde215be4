package utils

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// maxSearchNameLength bounds saved-search names. Long names break the
// saved-search picker layout and carry no extra meaning.
const maxSearchNameLength = 120

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// ValidateSearchName checks a saved-search name after sanitization
func ValidateSearchName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxSearchNameLength {
		return fmt.Errorf("name must be at most %d characters", maxSearchNameLength)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
