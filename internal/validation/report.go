// =============================================================================
// Presentielijst - Import Issue Report
// =============================================================================
//
// Collects everything worth telling the user about an import: structural
// problems in the CSV, missing columns, unknown roles, legacy trainer rows and
// lessons that only have staff.
//
// ERROR HANDLING:
//   - Issues are collected, never thrown
//   - Each issue carries its row number and lesson when known
//   - Errors block the import; warnings only inform
//
// Messages are in Dutch because they are shown to the people who maintain
// the member administration.
//
// =============================================================================

package validation

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/collation"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity of an issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category groups issues by their source.
type Category string

const (
	CategoryParse         Category = "parse"
	CategoryMissingColumn Category = "missing-column"
	CategoryRoleColumn    Category = "role-column"
	CategoryUnknownRole   Category = "unknown-role"
	CategoryTrainer       Category = "trainer"
	CategoryEmptyLesson   Category = "empty-lesson"
	CategoryNoRecords     Category = "no-records"
)

// Issue is a single finding.
type Issue struct {
	Severity Severity
	Category Category
	Message  string

	// RowNumber is the source row, or zero when the issue is not tied to a row.
	RowNumber int

	// Coursecode is the lesson the issue belongs to, if any.
	Coursecode string
}

// String formats the issue on one line.
func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", strings.ToUpper(string(i.Severity)))
	if i.RowNumber > 0 {
		fmt.Fprintf(&b, "Rij %d: ", i.RowNumber)
	}
	b.WriteString(i.Message)
	return b.String()
}

// =============================================================================
// REPORT
// =============================================================================

// Report is an ordered collection of issues.
type Report struct {
	Issues []Issue
}

// Add appends issues to the report.
func (r *Report) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	return r.ErrorCount() > 0
}

// ErrorCount returns the number of errors.
func (r *Report) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warnings.
func (r *Report) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// ByCategory returns the issues of one category, in report order.
func (r *Report) ByCategory(category Category) []Issue {
	var matched []Issue
	for _, issue := range r.Issues {
		if issue.Category == category {
			matched = append(matched, issue)
		}
	}
	return matched
}

// Format renders the report for display or logging.
func (r *Report) Format() string {
	if len(r.Issues) == 0 {
		return "Geen meldingen."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Import voltooid met %d fout(en) en %d waarschuwing(en):\n\n", r.ErrorCount(), r.WarningCount())
	for i, issue := range r.Issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, issue)
	}
	return b.String()
}

// WriteTo writes the formatted report to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Format())
	return int64(n), err
}

// =============================================================================
// ISSUE BUILDERS
// =============================================================================

// ParseWarning wraps a structural CSV warning.
func ParseWarning(message string, rowNumber int) Issue {
	return Issue{Severity: SeverityWarning, Category: CategoryParse, Message: message, RowNumber: rowNumber}
}

// MissingColumns reports unresolved required fields by their labels.
func MissingColumns(labels []string) Issue {
	return Issue{
		Severity: SeverityError,
		Category: CategoryMissingColumn,
		Message:  fmt.Sprintf("Het bestand mist de verplichte kolommen: %s.", strings.Join(labels, ", ")),
	}
}

// RoleColumnMissing reports that no column holds roles.
func RoleColumnMissing() Issue {
	return Issue{
		Severity: SeverityWarning,
		Category: CategoryRoleColumn,
		Message:  "Kolom 'function' ontbreekt; iedereen wordt als lid beschouwd zolang deze niet gekoppeld is.",
	}
}

// RoleColumnEmpty reports a role column without any values.
func RoleColumnEmpty() Issue {
	return Issue{
		Severity: SeverityWarning,
		Category: CategoryRoleColumn,
		Message:  "Kolom 'function' bevat geen waarden. Personen zonder rol worden als lid ingedeeld.",
	}
}

// UnknownRole wraps an unknown-role message from the normalizer.
func UnknownRole(message string) Issue {
	return Issue{Severity: SeverityWarning, Category: CategoryUnknownRole, Message: message}
}

// TrainerSummary returns the summary warning for lessons with trainer rows,
// or false when there are none.
func TrainerSummary(issues []types.LessonTrainerIssue, cmp collation.Comparator) (Issue, bool) {
	if len(issues) == 0 {
		return Issue{}, false
	}

	seen := make(map[string]bool)
	var codes []string
	for _, issue := range issues {
		code := strings.TrimSpace(issue.Coursecode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	sort.SliceStable(codes, func(i, j int) bool {
		return cmp.Compare(codes[i], codes[j]) < 0
	})

	label := "onbekend"
	if len(codes) > 0 {
		label = strings.Join(codes, ", ")
	}

	return Issue{
		Severity: SeverityWarning,
		Category: CategoryTrainer,
		Message: fmt.Sprintf("Waarschuwing: In het CSV-bestand zijn trainers gevonden (lescodes: %s). "+
			"Deze zijn voorlopig als leiding verwerkt, maar pas dit aan in AllUnited.", label),
	}, true
}

// TrainerEntries returns one warning per trainer row, for detailed reports.
func TrainerEntries(issues []types.LessonTrainerIssue) []Issue {
	var out []Issue
	for _, issue := range issues {
		for _, entry := range issue.Entries {
			out = append(out, Issue{
				Severity:   SeverityWarning,
				Category:   CategoryTrainer,
				Message:    fmt.Sprintf("%s heeft de rol 'trainer' in les %s.", entry.Name, LessonLabel(issue.Coursecode, issue.Course)),
				RowNumber:  entry.RowNumber,
				Coursecode: issue.Coursecode,
			})
		}
	}
	return out
}

// EmptyLesson reports a lesson that only has staff.
func EmptyLesson(lesson types.EmptyLessonWarning) Issue {
	return Issue{
		Severity:   SeverityWarning,
		Category:   CategoryEmptyLesson,
		Message:    fmt.Sprintf("Les %s bevat alleen leiding en geen leden. Deze presentielijst is niet getoond.", LessonLabel(lesson.Coursecode, lesson.Course)),
		Coursecode: lesson.Coursecode,
	}
}

// NoRecords reports that normalization left nothing to import.
func NoRecords() Issue {
	return Issue{
		Severity: SeverityError,
		Category: CategoryNoRecords,
		Message:  "Na normalisatie bleven er geen geldige rijen over. Controleer de brondata.",
	}
}

// LessonLabel is "code: course", or just the code when the course is blank.
func LessonLabel(coursecode, course string) string {
	if strings.TrimSpace(course) == "" {
		return coursecode
	}
	return coursecode + ": " + course
}
