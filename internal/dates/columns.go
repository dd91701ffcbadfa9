// =============================================================================
// Presentielijst - Date Columns
// =============================================================================
//
// The attendance lists end in a row of "Datum" columns, one per lesson day.
// This file derives those columns from the selected month and year, and keeps
// the Dutch month names used in titles and file names.
//
// =============================================================================

package dates

import (
	"fmt"
	"time"
)

// Column count bounds for the date columns on a list.
const (
	MinColumnCount     = 1
	MaxColumnCount     = 40
	DefaultColumnCount = 4
)

// DefaultColumnLabel is the header text of every date column.
const DefaultColumnLabel = "Datum"

var monthNames = []string{
	"januari",
	"februari",
	"maart",
	"april",
	"mei",
	"juni",
	"juli",
	"augustus",
	"september",
	"oktober",
	"november",
	"december",
}

// MonthName returns the Dutch month name for month 1-12, or "".
func MonthName(month int) string {
	if month < 1 || month > len(monthNames) {
		return ""
	}
	return monthNames[month-1]
}

// MonthTitle returns e.g. "september 2025".
func MonthTitle(month, year int) string {
	return fmt.Sprintf("%s %d", MonthName(month), year)
}

// ClampColumnCount forces count into [MinColumnCount, MaxColumnCount].
func ClampColumnCount(count int) int {
	if count < MinColumnCount {
		return MinColumnCount
	}
	if count > MaxColumnCount {
		return MaxColumnCount
	}
	return count
}

// DefaultColumnLabels returns one "Datum" label per (clamped) column.
func DefaultColumnLabels(count int) []string {
	labels := make([]string, ClampColumnCount(count))
	for i := range labels {
		labels[i] = DefaultColumnLabel
	}
	return labels
}

// MakeBlankColumns returns 1..n for n clamped to [0, MaxColumnCount].
func MakeBlankColumns(count int) []int {
	if count < 0 {
		count = 0
	}
	if count > MaxColumnCount {
		count = MaxColumnCount
	}
	columns := make([]int, count)
	for i := range columns {
		columns[i] = i + 1
	}
	return columns
}

// DateColumn is one lesson day column.
type DateColumn struct {
	// ISODate is the calendar day as YYYY-MM-DD.
	ISODate string

	// Label is the short Dutch day-month label, e.g. "01-09".
	Label string
}

// LessonDateColumns returns count consecutive days starting on the first of
// month/year. The month is clamped to 1-12 and the count to the column bounds.
// Days past the end of the month roll into the next month (and year).
func LessonDateColumns(month, year, count int) []DateColumn {
	safeCount := ClampColumnCount(count)
	safeMonth := clampMonth(month)
	base := time.Date(year, time.Month(safeMonth), 1, 0, 0, 0, 0, time.UTC)

	columns := make([]DateColumn, safeCount)
	for i := range columns {
		current := base.AddDate(0, 0, i)
		columns[i] = DateColumn{
			ISODate: current.Format("2006-01-02"),
			Label:   current.Format("02-01"),
		}
	}
	return columns
}

func clampMonth(month int) int {
	if month < 1 {
		return 1
	}
	if month > 12 {
		return 12
	}
	return month
}
