// Package phones cleans raw phone values from the attendance export and
// joins them into the display string used on the lists.
package phones

import (
	"regexp"
	"strings"
)

var (
	bracketPattern    = regexp.MustCompile(`[\[\]]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize strips square brackets, collapses whitespace runs to a single
// space and trims the result. Empty input yields an empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := bracketPattern.ReplaceAllString(raw, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Numbers normalizes both inputs and returns the non-empty ones in order.
func Numbers(p1, p2 string) []string {
	numbers := make([]string, 0, 2)
	for _, raw := range []string{p1, p2} {
		if phone := Normalize(raw); phone != "" {
			numbers = append(numbers, phone)
		}
	}
	return numbers
}

// Format joins the normalized, non-empty phone values with ", ".
func Format(p1, p2 string) string {
	return strings.Join(Numbers(p1, p2), ", ")
}
