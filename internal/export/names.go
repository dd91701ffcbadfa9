package export

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/presentielijst/internal/dates"
)

// maxSheetNameLength is the Excel limit for sheet names.
const maxSheetNameLength = 31

var (
	filenameForbidden  = regexp.MustCompile(`[:*?"<>|]`)
	sheetNameForbidden = regexp.MustCompile(`[\\/*?:\[\]]`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// SanitizeFilenamePart makes value safe inside a file name: slashes become
// dashes, other reserved characters are removed and whitespace is collapsed.
func SanitizeFilenamePart(value string) string {
	value = strings.ReplaceAll(value, "/", "-")
	value = filenameForbidden.ReplaceAllString(value, "")
	value = whitespaceRun.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// SanitizeSheetName makes value a valid Excel sheet name of at most 31
// characters. An empty result becomes "blad".
func SanitizeSheetName(value string) string {
	value = sheetNameForbidden.ReplaceAllString(value, "-")
	value = whitespaceRun.ReplaceAllString(value, " ")
	value = strings.TrimSpace(value)
	if value == "" {
		return "blad"
	}
	return truncateRunes(value, maxSheetNameLength)
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}

func sanitizedOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	if safe := SanitizeFilenamePart(value); safe != "" {
		return safe
	}
	return fallback
}

// LessonFilename returns e.g. "ABC123 Kampvuur september 2025.xlsx".
func LessonFilename(coursecode, course string, month, year int) string {
	parts := []string{
		sanitizedOr(coursecode, "les"),
		sanitizedOr(course, "cursus"),
		dates.MonthName(month),
		fmt.Sprint(year),
	}
	return strings.Join(parts, " ") + ".xlsx"
}

// ZipFilename returns e.g. "presentielijsten_mei-2030.zip".
func ZipFilename(month, year int) string {
	return fmt.Sprintf("presentielijsten_%s-%d.zip", dates.MonthName(month), year)
}

// PerLeaderZipFilename returns e.g. "presentielijsten_per_leiding_mei-2030.zip".
func PerLeaderZipFilename(month, year int) string {
	return fmt.Sprintf("presentielijsten_per_leiding_%s-%d.zip", dates.MonthName(month), year)
}

// LeaderWorkbookFilename returns e.g. "Alice - Presentielijsten mei 2030.xlsx".
func LeaderWorkbookFilename(leader string, month, year int) string {
	return fmt.Sprintf("%s - Presentielijsten %s %d.xlsx", sanitizedOr(leader, "Leiding"), dates.MonthName(month), year)
}

// =============================================================================
// UNIQUE NAMES
// =============================================================================

// nameSet hands out unique names, adding " (2)", " (3)", ... on collisions.
type nameSet struct {
	used map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{used: make(map[string]bool)}
}

// reserveSheet returns a unique sanitized sheet name based on base.
func (s *nameSet) reserveSheet(base string) string {
	name := SanitizeSheetName(base)
	if s.claim(name) {
		return name
	}
	for counter := 2; ; counter++ {
		suffix := fmt.Sprintf(" (%d)", counter)
		short := strings.TrimSpace(truncateRunes(name, maxSheetNameLength-len(suffix)))
		if short == "" {
			short = "blad"
		}
		candidate := truncateRunes(short+suffix, maxSheetNameLength)
		if s.claim(candidate) {
			return candidate
		}
	}
}

// reserveFile returns a unique file name, inserting the suffix before the
// extension.
func (s *nameSet) reserveFile(name string) string {
	if s.claim(name) {
		return name
	}
	ext := ""
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name, ext = name[:dot], name[dot:]
	}
	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s (%d)%s", name, counter, ext)
		if s.claim(candidate) {
			return candidate
		}
	}
}

func (s *nameSet) claim(name string) bool {
	if s.used[name] {
		return false
	}
	s.used[name] = true
	return true
}
