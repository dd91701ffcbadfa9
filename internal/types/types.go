// =============================================================================
// Presentielijst - Shared Types
// =============================================================================
//
// This package contains the data model shared by every stage of the import
// pipeline and by the rendering/export layers. Keeping the types here avoids
// import cycles between:
//   - mapping   (field resolver + record normalizer)
//   - grouping  (lesson grouper)
//   - export    (workbook builder)
//   - trials    (trial participant registry)
//
// LIFECYCLE:
//   RawRow and ColumnMapping live for a single import. NormalizedRecord values
//   are created once during normalization and never mutated afterwards.
//   LessonGroup values are recomputed from the full record list every time.
//
// =============================================================================

package types

import "time"

// =============================================================================
// RAW INPUT
// =============================================================================

// RawRow is a single data row keyed by its (trimmed) header.
// A nil value means the column was absent from the row, which happens when the
// tokenizer reports a row with too few fields.
type RawRow struct {
	// Values maps header -> value.
	Values map[string]*string

	// RowNumber is the 1-based row number in the source file (header = 1).
	// Zero means the tokenizer did not supply one.
	RowNumber int
}

// NewRawRow builds a RawRow from plain strings. Mostly useful in tests and for
// callers that do not need to distinguish absent from empty.
func NewRawRow(values map[string]string) RawRow {
	row := RawRow{Values: make(map[string]*string, len(values))}
	for key, value := range values {
		v := value
		row.Values[key] = &v
	}
	return row
}

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// Field is a semantic field the pipeline understands.
type Field string

const (
	FieldCoursecode   Field = "coursecode"
	FieldCourse       Field = "course"
	FieldName         Field = "name2"
	FieldFunction     Field = "function"
	FieldPhone1       Field = "phone1"
	FieldPhone2       Field = "phone2"
	FieldBirthdate    Field = "birthdate"
	FieldSecretImages Field = "secretimages"
)

// Fields lists every semantic field in resolution priority order.
var Fields = []Field{
	FieldCoursecode,
	FieldCourse,
	FieldName,
	FieldFunction,
	FieldPhone1,
	FieldPhone2,
	FieldBirthdate,
	FieldSecretImages,
}

// RequiredFields must be resolved for an import to be usable.
var RequiredFields = []Field{FieldCoursecode, FieldCourse, FieldName}

// ColumnMapping maps a semantic field to the header it was resolved from.
// Unresolved fields are simply absent.
type ColumnMapping map[Field]string

// Column returns the header mapped to field, if any.
func (m ColumnMapping) Column(field Field) (string, bool) {
	header, ok := m[field]
	if !ok || header == "" {
		return "", false
	}
	return header, true
}

// =============================================================================
// ROLES
// =============================================================================

// RoleCategory is the bucket a person is grouped into.
type RoleCategory string

const (
	RoleLeiding   RoleCategory = "leiding"
	RoleAssistent RoleCategory = "assistent"
	RoleLeden     RoleCategory = "leden"
)

// =============================================================================
// NORMALIZED RECORDS
// =============================================================================

// Row number sentinels for records that do not come from the source file.
const (
	// PlaceholderRowNumber marks stand-in rows appended to the staff list.
	PlaceholderRowNumber = 0

	// SyntheticRowNumber marks separator and trial rows added at render time.
	SyntheticRowNumber = -1
)

// NormalizedRecord is one person in one lesson.
type NormalizedRecord struct {
	Coursecode string
	Course     string
	Name       string

	// Phone1 and Phone2 are the normalized phone values; empty when absent.
	Phone1       string
	Phone2       string
	PhoneDisplay string
	PhoneNumbers []string

	// Birthdate is DD-MM-YYYY or empty; BirthdateRaw is the source value.
	Birthdate    string
	BirthdateRaw string

	SecretImagesFlag bool

	// Function is the trimmed role text as found in the source.
	Function     string
	RoleCategory RoleCategory
	WasTrainer   bool

	SourceRowNumber int
	IsPlaceholder   bool
}

// DisplayBirthdate returns the canonical birthdate, falling back to the raw value.
func (r NormalizedRecord) DisplayBirthdate() string {
	if r.Birthdate != "" {
		return r.Birthdate
	}
	return r.BirthdateRaw
}

// =============================================================================
// PERSON VARIANT
// =============================================================================

// PersonKind tags whether a row is a real person or a synthetic row.
type PersonKind int

const (
	RealPerson PersonKind = iota
	Placeholder
)

// Person is the internal tagged variant behind a NormalizedRecord. Name-based
// logic only ever looks at RealPerson values.
type Person struct {
	Kind   PersonKind
	Record NormalizedRecord
}

// NewPlaceholder returns a stand-in row for coursecode.
// The member category is kept for compatibility with existing lists; the row
// is always excluded through IsPlaceholder.
func NewPlaceholder(coursecode string) Person {
	return Person{
		Kind: Placeholder,
		Record: NormalizedRecord{
			Coursecode:      coursecode,
			PhoneNumbers:    []string{},
			RoleCategory:    RoleLeden,
			SourceRowNumber: PlaceholderRowNumber,
			IsPlaceholder:   true,
		},
	}
}

// NewSeparator returns the blank row shown between members and trial participants.
func NewSeparator(coursecode, course string) Person {
	p := NewPlaceholder(coursecode)
	p.Record.Course = course
	p.Record.SourceRowNumber = SyntheticRowNumber
	return p
}

// Project returns the external record shape, keeping the placeholder flag in
// sync with the variant tag.
func (p Person) Project() NormalizedRecord {
	record := p.Record
	record.IsPlaceholder = p.Kind == Placeholder
	return record
}

// =============================================================================
// WARNINGS AND GROUPS
// =============================================================================

// TrainerIssueEntry is one row that used the legacy "trainer" role.
type TrainerIssueEntry struct {
	Name      string
	RowNumber int
}

// LessonTrainerIssue aggregates trainer rows for one lesson.
type LessonTrainerIssue struct {
	Coursecode string
	Course     string
	Entries    []TrainerIssueEntry
}

// EmptyLessonWarning identifies a lesson with staff but no members.
type EmptyLessonWarning struct {
	Coursecode string
	Course     string
}

// LessonGroup is every record for one coursecode, deduplicated and ordered.
type LessonGroup struct {
	Coursecode string
	Course     string

	// StaffOrdered holds leaders, then assistants, then three stand-ins.
	StaffOrdered []NormalizedRecord
	Leden        []NormalizedRecord

	TrainerIssues []TrainerIssueEntry
	ShouldSkip    bool
}

// GroupedLessons is the output of the lesson grouper.
type GroupedLessons struct {
	Lessons      []LessonGroup
	EmptyLessons []EmptyLessonWarning
}

// =============================================================================
// TRIAL PARTICIPANTS
// =============================================================================

// Trial is a manually registered trial participant for one lesson.
type Trial struct {
	ID         string    `json:"id"`
	Coursecode string    `json:"coursecode"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Count      int       `json:"count"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TrialLookup returns the trials registered for a coursecode.
type TrialLookup func(coursecode string) []Trial
