// =============================================================================
// Presentielijst - Import Pipeline
// =============================================================================
//
// This module orchestrates a single import, from a parsed CSV document to the
// grouped lessons that the export layer renders.
//
// IMPORT PIPELINE:
//   1. Resolve the headers onto semantic fields
//   2. Apply manual column overrides
//   3. Stop when required fields are missing
//   4. Normalize the rows into records
//   5. Stop when no records survive
//   6. Group the records by lesson
//   7. Collect every warning into the issue report
//
// The pipeline does no I/O. Running it twice on the same document gives the
// same result.
//
// =============================================================================

package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/presentielijst/internal/collation"
	"github.com/ginjaninja78/presentielijst/internal/csvparser"
	"github.com/ginjaninja78/presentielijst/internal/grouping"
	"github.com/ginjaninja78/presentielijst/internal/mapping"
	"github.com/ginjaninja78/presentielijst/internal/types"
	"github.com/ginjaninja78/presentielijst/internal/validation"
)

// Sentinel errors for imports that cannot produce any list.
var (
	ErrMissingColumns = errors.New("required columns are missing")
	ErrNoRecords      = errors.New("no usable records")
	ErrUnknownColumn  = errors.New("unknown column")
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one import.
type Result struct {
	// ID identifies the import in logs.
	ID string

	Headers       []string
	Resolution    mapping.Resolution
	Normalization mapping.Normalization
	Grouped       types.GroupedLessons

	// Report holds every parse, mapping and grouping issue.
	Report validation.Report

	Stats Stats
}

// Stats contains counters about the import.
type Stats struct {
	RowsRead       int
	RecordsKept    int
	RowsDropped    int
	Lessons        int
	SkippedLessons int
	ProcessingTime time.Duration
}

// Visible returns the lessons that get an attendance list.
func (r *Result) Visible() []types.LessonGroup {
	return grouping.Visible(r.Grouped.Lessons)
}

// Options controls an import.
type Options struct {
	// Overrides maps fields to headers chosen by the user. An empty header
	// unmaps the field.
	Overrides types.ColumnMapping

	// Comparator orders lessons and names. Nil uses the Dutch collation.
	Comparator collation.Comparator

	// Logger receives progress messages. Nil uses the standard logger.
	Logger *log.Entry
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the import pipeline for doc.
//
// PARAMETERS:
//   - doc: The tokenized CSV document.
//   - opts: Overrides, collation and logging.
//
// RETURNS:
//   - The result. It is non-nil even when an error is returned, so callers
//     can show the report.
//   - ErrMissingColumns, ErrNoRecords or ErrUnknownColumn (wrapped) when no
//     list can be made.
func Run(doc *csvparser.Document, opts Options) (*Result, error) {
	startTime := time.Now()

	cmp := opts.Comparator
	if cmp == nil {
		cmp = collation.Default()
	}

	result := &Result{
		ID:      uuid.NewString(),
		Headers: doc.Headers,
		Grouped: types.GroupedLessons{Lessons: []types.LessonGroup{}, EmptyLessons: []types.EmptyLessonWarning{}},
	}
	result.Stats.RowsRead = len(doc.Rows)

	logger := opts.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	logger = logger.WithFields(log.Fields{
		"import": result.ID,
		"source": doc.SourceFile,
	})
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	for _, warning := range doc.Warnings {
		result.Report.Add(validation.ParseWarning(warning.Message, warning.RowNumber))
	}

	// =========================================================================
	// STEP 1: RESOLVE COLUMNS
	// =========================================================================

	resolution := mapping.ResolveColumns(doc.Headers)
	resolution, err := applyOverrides(resolution, doc.Headers, opts.Overrides)
	if err != nil {
		return result, err
	}
	result.Resolution = resolution

	logger.WithField("mapping", resolution.Mapping).Debug("resolved columns")

	if !resolution.OK() {
		labels := make([]string, len(resolution.Missing))
		for i, field := range resolution.Missing {
			labels[i] = mapping.FieldLabels[field]
		}
		result.Report.Add(validation.MissingColumns(labels))
		logger.WithField("missing", resolution.Missing).Warn("required columns are missing")
		return result, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(labels, ", "))
	}

	if issue, ok := roleColumnIssue(doc, resolution.Mapping); ok {
		result.Report.Add(issue)
	}

	// =========================================================================
	// STEP 2: NORMALIZE RECORDS
	// =========================================================================

	normalization := mapping.NormalizeRecordsWith(doc.Rows, resolution.Mapping, cmp)
	result.Normalization = normalization
	result.Stats.RecordsKept = len(normalization.Records)
	result.Stats.RowsDropped = len(doc.Rows) - len(normalization.Records)

	for _, warning := range normalization.Warnings {
		result.Report.Add(validation.UnknownRole(warning))
	}
	if summary, ok := validation.TrainerSummary(normalization.TrainerWarnings, cmp); ok {
		result.Report.Add(summary)
		result.Report.Add(validation.TrainerEntries(normalization.TrainerWarnings)...)
	}

	logger.WithFields(log.Fields{
		"records": result.Stats.RecordsKept,
		"dropped": result.Stats.RowsDropped,
	}).Debug("normalized records")

	if len(normalization.Records) == 0 {
		result.Report.Add(validation.NoRecords())
		logger.Warn("no usable records after normalization")
		return result, ErrNoRecords
	}

	// =========================================================================
	// STEP 3: GROUP BY LESSON
	// =========================================================================

	grouped := grouping.GroupByLessonWith(normalization.Records, cmp)
	result.Grouped = grouped
	result.Stats.Lessons = len(grouped.Lessons)
	result.Stats.SkippedLessons = len(grouped.EmptyLessons)

	for _, lesson := range grouped.EmptyLessons {
		result.Report.Add(validation.EmptyLesson(lesson))
	}

	logger.WithFields(log.Fields{
		"lessons": result.Stats.Lessons,
		"skipped": result.Stats.SkippedLessons,
		"issues":  len(result.Report.Issues),
	}).Info("import complete")

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// applyOverrides replaces resolved columns with user choices and recomputes
// the missing fields.
func applyOverrides(resolution mapping.Resolution, headers []string, overrides types.ColumnMapping) (mapping.Resolution, error) {
	if len(overrides) == 0 {
		return resolution, nil
	}

	known := make(map[string]bool, len(headers))
	for _, header := range headers {
		known[strings.TrimSpace(header)] = true
	}

	merged := make(types.ColumnMapping, len(resolution.Mapping))
	for field, header := range resolution.Mapping {
		merged[field] = header
	}

	for field, header := range overrides {
		header = strings.TrimSpace(header)
		if header == "" {
			delete(merged, field)
			continue
		}
		if !known[header] {
			return resolution, fmt.Errorf("%w %q for field %s", ErrUnknownColumn, header, field)
		}
		merged[field] = header
	}

	var missing []types.Field
	for _, field := range types.RequiredFields {
		if _, ok := merged.Column(field); !ok {
			missing = append(missing, field)
		}
	}

	return mapping.Resolution{Mapping: merged, Missing: missing}, nil
}

// roleColumnIssue warns when roles cannot be read, because then everyone is
// treated as a member.
func roleColumnIssue(doc *csvparser.Document, m types.ColumnMapping) (validation.Issue, bool) {
	header, ok := m.Column(types.FieldFunction)
	if !ok {
		return validation.RoleColumnMissing(), true
	}
	for _, row := range doc.Rows {
		if value := row.Values[header]; value != nil && strings.TrimSpace(*value) != "" {
			return validation.Issue{}, false
		}
	}
	return validation.RoleColumnEmpty(), true
}
