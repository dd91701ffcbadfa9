// =============================================================================
// Presentielijst - CSV Tokenizer
// =============================================================================
//
// This module reads member exports from the membership administration and
// turns them into header-keyed raw rows for the import pipeline. It handles:
//   - Semicolon and comma separated files (auto-detected)
//   - UTF-8 with or without BOM, UTF-16 with BOM, and Windows-1252 exports
//   - Quoted fields, including embedded delimiters and line breaks
//   - Rows that are shorter or longer than the header row
//
// ROW NUMBERS:
//   Every data row carries RowNumber = data row index + 2, so the header is
//   row 1 and the first data row is row 2, matching what spreadsheet
//   programs show for the same file.
//
// STRUCTURAL WARNINGS:
//   Short rows keep their missing columns absent (nil) and produce a
//   TooFewFields warning, unless the only missing column is "function".
//   Long rows drop their extra fields and produce a TooManyFields warning.
//   Warnings never stop the parse.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/presentielijst/internal/types"
)

// Delimiters and encodings understood by the tokenizer.
const (
	DefaultDelimiter = ';'

	EncodingAuto        = "auto"
	EncodingWindows1252 = "windows-1252"

	// sampleLines is the number of non-empty lines inspected for detection.
	sampleLines = 5

	// suppressibleField may be missing from a short row without a warning.
	suppressibleField = "function"
)

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("CSV file is empty")

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// WarningCode classifies a structural parse warning.
type WarningCode string

const (
	TooFewFields  WarningCode = "TooFewFields"
	TooManyFields WarningCode = "TooManyFields"
)

// Warning is a structural problem found in one row.
type Warning struct {
	Code      WarningCode
	Message   string
	RowNumber int
}

// Document is a parsed CSV file.
type Document struct {
	// Headers contains the trimmed column headers in file order.
	Headers []string

	// Rows contains the non-empty data rows.
	Rows []types.RawRow

	// Warnings lists structural problems, in row order.
	Warnings []Warning

	// Delimiter is the delimiter that was used.
	Delimiter rune

	// Encoding is the name of the detected or configured source encoding.
	Encoding string

	// SourceFile is the path the document was read from, if any.
	SourceFile string
}

// Options controls how input is tokenized.
type Options struct {
	// Delimiter forces a delimiter. Zero means auto-detect.
	Delimiter rune

	// Encoding forces a source encoding by its WHATWG name
	// (for example "utf-8", "windows-1252", "utf-16le"). Empty or "auto"
	// detects it.
	Encoding string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile opens path and parses it.
//
// PARAMETERS:
//   - path: The path to the CSV file.
//   - opts: Delimiter and encoding options.
//
// RETURNS:
//   - The parsed document, with SourceFile set.
//   - An error if the file cannot be read or has no header.
func ParseFile(path string, opts Options) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file, opts)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

// Parse reads CSV input and returns the parsed document.
//
// PARSING PROCESS:
//  1. Decode the input to UTF-8
//  2. Detect the delimiter from the first non-empty lines
//  3. Read the header row and clean the header names
//  4. Read the data rows, skipping blank ones, and map them by header
func Parse(r io.Reader, opts Options) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	text, encodingName, err := decode(raw, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = DetectDelimiter(text)
	}

	reader := csv.NewReader(strings.NewReader(text))
	configureReader(reader, delimiter)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if isRowEmpty(header) {
		return nil, ErrEmptyInput
	}

	doc := &Document{
		Headers:   cleanHeaders(header),
		Rows:      []types.RawRow{},
		Delimiter: delimiter,
		Encoding:  encodingName,
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if isRowEmpty(record) {
			continue
		}

		rowNumber := len(doc.Rows) + 2
		row, warning := buildRow(doc.Headers, record, rowNumber)
		doc.Rows = append(doc.Rows, row)
		if warning != nil {
			doc.Warnings = append(doc.Warnings, *warning)
		}
	}

	return doc, nil
}

// configureReader configures the CSV reader for the export format.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Short and long rows are reported as warnings, not errors.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// ParseDelimiter converts a configured delimiter name into a rune.
// Empty and "auto" return zero, which means auto-detect.
func ParseDelimiter(value string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return 0, nil
	case ";", "semicolon":
		return ';', nil
	case ",", "comma":
		return ',', nil
	case "\\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}

	r, size := utf8.DecodeRuneInString(value)
	if size != len(value) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", value)
	}
	return r, nil
}

// DetectDelimiter picks ';' or ',' from the first non-empty lines of text.
// Semicolons win ties; input without either uses DefaultDelimiter.
func DetectDelimiter(text string) rune {
	var sample []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == sampleLines {
			break
		}
	}

	joined := strings.Join(sample, "\n")
	commas := strings.Count(joined, ",")
	semicolons := strings.Count(joined, ";")

	if commas == 0 && semicolons == 0 {
		return DefaultDelimiter
	}
	if semicolons >= commas {
		return ';'
	}
	return ','
}

// =============================================================================
// ENCODING
// =============================================================================

// decode converts raw bytes to a UTF-8 string.
//
// In auto mode a BOM selects UTF-8 or UTF-16; input without a BOM that is not
// valid UTF-8 is treated as Windows-1252, the usual encoding of exports saved
// from Excel on Windows.
func decode(raw []byte, name string) (string, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if name != "" && name != EncodingAuto {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return "", "", fmt.Errorf("unknown encoding %q: %w", name, err)
		}
		canonical, err := htmlindex.Name(enc)
		if err != nil {
			canonical = name
		}
		decoded, err := decodeWith(enc, raw)
		if err != nil {
			return "", "", err
		}
		return strings.TrimPrefix(decoded, "\ufeff"), canonical, nil
	}

	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:]), "utf-8", nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		decoded, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), raw)
		if err != nil {
			return "", "", err
		}
		return decoded, "utf-16", nil
	case utf8.Valid(raw):
		return string(raw), "utf-8", nil
	default:
		decoded, err := decodeWith(charmap.Windows1252, raw)
		if err != nil {
			return "", "", err
		}
		return decoded, EncodingWindows1252, nil
	}
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// =============================================================================
// ROWS
// =============================================================================

// cleanHeaders trims headers, names empty ones after their position and
// suffixes duplicates so every column stays addressable. A suffix never
// reuses a name that is already taken.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	seen := make(map[string]int, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Kolom_%d", i+1)
		}

		if count, exists := seen[header]; exists {
			candidate := fmt.Sprintf("%s_%d", header, count)
			for seen[candidate] > 0 {
				count++
				candidate = fmt.Sprintf("%s_%d", header, count)
			}
			seen[header] = count + 1
			header = candidate
		}
		seen[header] = 1

		cleaned[i] = header
	}

	return cleaned
}

// buildRow maps a record onto the headers and reports field count problems.
func buildRow(headers, record []string, rowNumber int) (types.RawRow, *Warning) {
	row := types.RawRow{
		Values:    make(map[string]*string, len(headers)),
		RowNumber: rowNumber,
	}

	var missing []string
	for i, header := range headers {
		if i >= len(record) {
			row.Values[header] = nil
			missing = append(missing, header)
			continue
		}
		value := strings.TrimSpace(record[i])
		row.Values[header] = &value
	}

	switch {
	case len(missing) > 0:
		if len(missing) == 1 && strings.EqualFold(missing[0], suppressibleField) {
			return row, nil
		}
		return row, &Warning{Code: TooFewFields, Message: missingMessage(missing), RowNumber: rowNumber}
	case len(record) > len(headers):
		return row, &Warning{
			Code:      TooManyFields,
			Message:   fmt.Sprintf("Rij heeft %d velden, verwacht %d; extra velden genegeerd.", len(record), len(headers)),
			RowNumber: rowNumber,
		}
	}
	return row, nil
}

func missingMessage(missing []string) string {
	if len(missing) == 1 {
		return fmt.Sprintf("Kolom '%s' ontbrak in de rij.", missing[0])
	}
	quoted := make([]string, len(missing))
	for i, field := range missing {
		quoted[i] = "'" + field + "'"
	}
	return fmt.Sprintf("Kolommen %s ontbraken in de rij.", strings.Join(quoted, ", "))
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// Preview returns at most count rows from the start of the document.
func (d *Document) Preview(count int) []types.RawRow {
	if count < 0 {
		count = 0
	}
	if count > len(d.Rows) {
		count = len(d.Rows)
	}
	return d.Rows[:count]
}

// UniqueValues returns the distinct non-empty values of header in first-seen order.
func (d *Document) UniqueValues(header string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, row := range d.Rows {
		value := row.Values[header]
		if value == nil || *value == "" || seen[*value] {
			continue
		}
		seen[*value] = true
		unique = append(unique, *value)
	}

	return unique
}
