// =============================================================================
// Presentielijst - Field Resolver
// =============================================================================
//
// Exports from the membership administration do not always use the same
// column headers. Some use the technical names (coursecode, name2, ...), some
// use Dutch labels (lesnummer, naam, ...). The resolver maps whatever headers
// are present onto the fixed set of semantic fields.
//
// RESOLUTION RULES:
//   - Headers are compared trimmed and case-insensitively against an alias table
//   - Headers are visited in input order; fields in priority order
//   - The first matching header wins; a field is never reassigned
//   - coursecode, course and name2 are required; unresolved ones are reported
//
// Resolution never fails. The caller decides whether missing required fields
// block the import.
//
// =============================================================================

package mapping

import (
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/types"
)

// =============================================================================
// ALIAS TABLE
// =============================================================================

// fieldAliases lists the accepted header names per field.
var fieldAliases = map[types.Field][]string{
	types.FieldCoursecode:   {"coursecode", "lesnummer", "code"},
	types.FieldCourse:       {"course", "cursus", "lesnaam", "title"},
	types.FieldName:         {"name2", "naam", "name"},
	types.FieldFunction:     {"function", "rol", "role", "functie"},
	types.FieldPhone1:       {"phone1", "telefoon", "telefoon1", "phone"},
	types.FieldPhone2:       {"phone2", "telefoon2", "mobile", "gsm"},
	types.FieldBirthdate:    {"birthdate", "geboortedatum", "dob"},
	types.FieldSecretImages: {"secretimages", "foto", "photos", "privacy"},
}

// FieldLabels are the Dutch labels shown to users for each field.
var FieldLabels = map[types.Field]string{
	types.FieldCoursecode:   "Lesnummer (coursecode)",
	types.FieldCourse:       "Naam les (course)",
	types.FieldName:         "Naam (name2)",
	types.FieldFunction:     "Rol (function)",
	types.FieldPhone1:       "Telefoonnummer 1",
	types.FieldPhone2:       "Telefoonnummer 2",
	types.FieldBirthdate:    "Geboortedatum",
	types.FieldSecretImages: "Foto toestemming (secretimages)",
}

// Aliases returns a copy of the aliases accepted for field.
func Aliases(field types.Field) []string {
	return append([]string(nil), fieldAliases[field]...)
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolution is the outcome of resolving a header list.
type Resolution struct {
	// Mapping holds the resolved fields.
	Mapping types.ColumnMapping

	// Missing lists unresolved required fields, in RequiredFields order.
	Missing []types.Field
}

// OK reports whether every required field was resolved.
func (r Resolution) OK() bool {
	return len(r.Missing) == 0
}

// ResolveColumns maps headers onto semantic fields.
//
// PARAMETERS:
//   - headers: The header row, in input order.
//
// RETURNS:
//   - The mapping (values are the trimmed original headers) and the list of
//     missing required fields.
func ResolveColumns(headers []string) Resolution {
	mapping := make(types.ColumnMapping)

	for _, header := range headers {
		original := strings.TrimSpace(header)
		normalized := normalizeHeader(original)
		if normalized == "" {
			continue
		}

		for _, field := range types.Fields {
			if _, assigned := mapping[field]; assigned {
				continue
			}
			if matchesAlias(field, normalized) {
				mapping[field] = original
			}
		}
	}

	var missing []types.Field
	for _, field := range types.RequiredFields {
		if _, ok := mapping.Column(field); !ok {
			missing = append(missing, field)
		}
	}

	return Resolution{Mapping: mapping, Missing: missing}
}

func matchesAlias(field types.Field, normalizedHeader string) bool {
	for _, alias := range fieldAliases[field] {
		if normalizeHeader(alias) == normalizedHeader {
			return true
		}
	}
	return false
}

func normalizeHeader(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
