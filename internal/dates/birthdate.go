// =============================================================================
// Presentielijst - Birthdate Normalization
// =============================================================================
//
// Birthdates arrive in whatever shape the membership administration exported
// them in. This file turns them into the canonical DD-MM-YYYY form used on the
// attendance lists.
//
// SUPPORTED SHAPES:
//   - YYYY-MM-DD, YYYY/MM/DD, YYYY.MM.DD (and YYYY-DD-MM when unambiguous)
//   - DD-MM-YYYY, D-M-YYYY, DD/MM/YYYY, DD.MM.YYYY
//   - A handful of generic layouts (RFC 3339, "January 2, 2006", US slashes)
//
// Anything else yields an empty string; the raw value is kept on the record
// so nothing the user entered is lost.
//
// =============================================================================

package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// minBirthYear is the earliest year accepted by the structural parser.
const minBirthYear = 1900

// fallbackLayouts are tried, in order, when the structural parse fails.
// All of them are interpreted in UTC.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01/02/2006",
}

// NormalizeBirthdate converts a loosely formatted birthdate into DD-MM-YYYY.
//
// PARAMETERS:
//   - raw: The birthdate as found in the export.
//
// RETURNS:
//   - The canonical date, or "" when the value cannot be understood.
func NormalizeBirthdate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if formatted, ok := parseStructured(trimmed); ok {
		return formatted
	}

	for _, layout := range fallbackLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		parsed = parsed.UTC()
		return formatDMY(parsed.Day(), int(parsed.Month()), parsed.Year())
	}

	return ""
}

// parseStructured handles the three-part numeric shapes.
func parseStructured(value string) (string, bool) {
	sanitized := strings.NewReplacer(".", "-", "/", "-").Replace(value)
	parts := strings.Split(sanitized, "-")
	if len(parts) != 3 {
		return "", false
	}

	for i := range parts {
		parts[i] = padLeft(strings.TrimSpace(parts[i]), 2, '0')
	}
	a, b, c := parts[0], parts[1], parts[2]

	if len(a) == 4 {
		year, okYear := parseDigits(a)
		first, okFirst := parseDigits(b)
		second, okSecond := parseDigits(c)
		if okYear && okFirst && okSecond {
			// YYYY-MM-DD unless the middle part can only be a day.
			month, day := first, second
			if first > 12 && second <= 12 {
				month, day = second, first
			}
			if IsValidYMD(year, month, day) {
				return formatDMY(day, month, year), true
			}
		}
	}

	if len(c) == 4 {
		day, okDay := parseDigits(a)
		month, okMonth := parseDigits(b)
		year, okYear := parseDigits(c)
		if okDay && okMonth && okYear && IsValidYMD(year, month, day) {
			return formatDMY(day, month, year), true
		}
	}

	return "", false
}

// IsValidYMD reports whether year/month/day is a real calendar date from
// 1900 onwards. Dates that do not survive a round trip through time.Date
// (31 February, 31 April, ...) are rejected.
func IsValidYMD(year, month, day int) bool {
	if year < minBirthYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return date.Year() == year && int(date.Month()) == month && date.Day() == day
}

// parseDigits parses a non-empty string consisting only of ASCII digits.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatDMY(day, month, year int) string {
	return fmt.Sprintf("%02d-%02d-%d", day, month, year)
}

// padLeft pads s with padChar on the left to reach length.
func padLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}
