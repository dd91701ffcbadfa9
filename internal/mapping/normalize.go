// =============================================================================
// Presentielijst - Record Normalizer
// =============================================================================
//
// Turns header-keyed raw rows into NormalizedRecord values using a resolved
// column mapping.
//
// PROCESSING (per row):
//   1. Read coursecode, course and name; rows without coursecode or name are
//      dropped silently
//   2. Classify the role text (leiding, assistent, trainer, member)
//   3. Normalize phone numbers and the birthdate
//   4. Read the photo permission flag ("1" means no photos)
//   5. Determine the source row number
//   6. Aggregate trainer rows per lesson for manual review
//
// The normalizer never fails. Anomalies are returned next to the records.
//
// =============================================================================

package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/collation"
	"github.com/ginjaninja78/presentielijst/internal/dates"
	"github.com/ginjaninja78/presentielijst/internal/phones"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

// Normalization is the outcome of NormalizeRecords.
type Normalization struct {
	Records []types.NormalizedRecord

	// Warnings holds distinct unknown-role messages in first-seen order.
	Warnings []string

	// TrainerWarnings holds one aggregate per lesson with trainer rows,
	// sorted by coursecode.
	TrainerWarnings []types.LessonTrainerIssue
}

// UnknownRoleWarning is the message reported for an unrecognized role text.
func UnknownRoleWarning(role string) string {
	return fmt.Sprintf("Onbekende rol '%s' → behandeld als lid.", role)
}

// NormalizeRecords normalizes rows with the default collation.
//
// PARAMETERS:
//   - rows: Raw rows in source order.
//   - mapping: The resolved column mapping.
//
// RETURNS:
//   - Records, unknown-role warnings and trainer aggregates.
func NormalizeRecords(rows []types.RawRow, mapping types.ColumnMapping) Normalization {
	return NormalizeRecordsWith(rows, mapping, collation.Default())
}

// NormalizeRecordsWith is NormalizeRecords with an explicit comparator for
// ordering the trainer aggregates.
func NormalizeRecordsWith(rows []types.RawRow, mapping types.ColumnMapping, cmp collation.Comparator) Normalization {
	result := Normalization{Records: make([]types.NormalizedRecord, 0, len(rows))}

	seenWarnings := make(map[string]struct{})
	trainerIndex := make(map[string]int)

	for index, row := range rows {
		coursecode := readValue(row, mapping, types.FieldCoursecode)
		course := readValue(row, mapping, types.FieldCourse)
		name := readValue(row, mapping, types.FieldName)
		if coursecode == "" || name == "" {
			continue
		}

		role := readValue(row, mapping, types.FieldFunction)
		detection := DetectRole(role)
		if !detection.Known {
			warning := UnknownRoleWarning(role)
			if _, seen := seenWarnings[warning]; !seen {
				seenWarnings[warning] = struct{}{}
				result.Warnings = append(result.Warnings, warning)
			}
		}

		phone1 := phones.Normalize(readValue(row, mapping, types.FieldPhone1))
		phone2 := phones.Normalize(readValue(row, mapping, types.FieldPhone2))

		birthdateRaw := readValue(row, mapping, types.FieldBirthdate)

		rowNumber := row.RowNumber
		if rowNumber <= 0 {
			rowNumber = index + 2
		}

		record := types.NormalizedRecord{
			Coursecode:       coursecode,
			Course:           course,
			Name:             name,
			Phone1:           phone1,
			Phone2:           phone2,
			PhoneDisplay:     phones.Format(phone1, phone2),
			PhoneNumbers:     phones.Numbers(phone1, phone2),
			Birthdate:        dates.NormalizeBirthdate(birthdateRaw),
			BirthdateRaw:     birthdateRaw,
			SecretImagesFlag: readValue(row, mapping, types.FieldSecretImages) == "1",
			Function:         role,
			RoleCategory:     detection.Category,
			WasTrainer:       detection.WasTrainer,
			SourceRowNumber:  rowNumber,
		}

		if record.WasTrainer {
			entry := types.TrainerIssueEntry{Name: name, RowNumber: rowNumber}
			if i, ok := trainerIndex[coursecode]; ok {
				issue := &result.TrainerWarnings[i]
				if issue.Course == "" && course != "" {
					issue.Course = course
				}
				issue.Entries = append(issue.Entries, entry)
			} else {
				trainerIndex[coursecode] = len(result.TrainerWarnings)
				result.TrainerWarnings = append(result.TrainerWarnings, types.LessonTrainerIssue{
					Coursecode: coursecode,
					Course:     course,
					Entries:    []types.TrainerIssueEntry{entry},
				})
			}
		}

		result.Records = append(result.Records, record)
	}

	for i := range result.TrainerWarnings {
		entries := result.TrainerWarnings[i].Entries
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].RowNumber < entries[b].RowNumber
		})
	}
	sort.SliceStable(result.TrainerWarnings, func(a, b int) bool {
		return cmp.Compare(result.TrainerWarnings[a].Coursecode, result.TrainerWarnings[b].Coursecode) < 0
	})

	return result
}

// readValue returns the trimmed value of field, or "" when the field is not
// mapped or the row has no such column.
func readValue(row types.RawRow, mapping types.ColumnMapping, field types.Field) string {
	header, ok := mapping.Column(field)
	if !ok {
		return ""
	}
	value := row.Values[header]
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
