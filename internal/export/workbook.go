// =============================================================================
// Presentielijst - Workbook Builder
// =============================================================================
//
// Renders lessons as printable attendance lists in Excel format.
//
// SHEET LAYOUT:
//   Row 1        Merged title: "Presentielijst <maand> <jaar> voor lesnummer
//                <code>: <cursus> (<n> leden)"
//   Section 1    "Leiding & Assistenten": header row, then the staff rows
//                (leaders in bold) and the three stand-in rows
//   (blank row)
//   Section 2    "Leden": header row, then the members, then a blank
//                separator row and one row per trial participant
//
// COLUMNS:
//   Naam | Telefoonnummer(s) | Geb. datum | Foto | Datum x N
//
//   The Foto column says "Nee" for people without photo permission.
//
// =============================================================================

package export

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/presentielijst/internal/dates"
	"github.com/ginjaninja78/presentielijst/internal/grouping"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

// Sheet and section labels.
const (
	LessonSheetName     = "Presentielijst"
	StaffSectionTitle   = "Leiding & Assistenten"
	MembersSectionTitle = "Leden"
	NoPhotoLabel        = "Nee"

	// baseColumns are the person columns before the date columns.
	baseColumns = 4

	titleRow = 1
)

// HeaderLabels are the fixed person columns.
var HeaderLabels = []string{"Naam", "Telefoonnummer(s)", "Geb. datum", "Foto"}

// Options controls how lists are rendered.
type Options struct {
	Month int
	Year  int

	// Columns is the number of date columns, clamped to [1, 40].
	Columns int

	// DatedColumns labels the date columns with consecutive days of the
	// month ("01-09", "02-09", ...) instead of "Datum".
	DatedColumns bool

	Theme Theme

	// Timestamp is stored as modification time in archives. Zero means now.
	Timestamp time.Time
}

func (o Options) columnCount() int {
	return dates.ClampColumnCount(o.Columns)
}

func (o Options) dateLabels() []string {
	if !o.DatedColumns {
		return dates.DefaultColumnLabels(o.columnCount())
	}
	columns := dates.LessonDateColumns(o.Month, o.Year, o.columnCount())
	labels := make([]string, len(columns))
	for i, column := range columns {
		labels[i] = column.Label
	}
	return labels
}

func (o Options) timestamp() time.Time {
	if o.Timestamp.IsZero() {
		return time.Now()
	}
	return o.Timestamp
}

// LessonTitle returns the title line of a lesson sheet.
func LessonTitle(lesson types.LessonGroup, month, year int) string {
	return fmt.Sprintf("Presentielijst %s voor lesnummer %s: %s (%d leden)",
		dates.MonthTitle(month, year), lesson.Coursecode, lesson.Course, grouping.MemberCount(lesson))
}

// =============================================================================
// PUBLIC BUILDERS
// =============================================================================

// BuildLessonWorkbook renders one lesson into a new workbook with a single
// "Presentielijst" sheet. The caller must Close the returned file.
//
// PARAMETERS:
//   - lesson: The lesson to render.
//   - opts: Month, year and column settings.
//   - trials: Trial participants appended below the members.
func BuildLessonWorkbook(lesson types.LessonGroup, opts Options, trials []types.Trial) (*excelize.File, error) {
	builder, err := newWorkbookBuilder(opts)
	if err != nil {
		return nil, err
	}
	if err := builder.addLessonSheet(LessonSheetName, lesson, trials); err != nil {
		builder.file.Close()
		return nil, err
	}
	return builder.file, nil
}

// BuildMultiLessonWorkbook renders several lessons into one workbook, one
// sheet per lesson named "les <coursecode>".
func BuildMultiLessonWorkbook(lessons []types.LessonGroup, opts Options, trialsFor types.TrialLookup) (*excelize.File, error) {
	builder, err := newWorkbookBuilder(opts)
	if err != nil {
		return nil, err
	}

	names := newNameSet()
	for _, lesson := range lessons {
		base := "les"
		if lesson.Coursecode != "" {
			base = "les " + lesson.Coursecode
		}
		if err := builder.addLessonSheet(names.reserveSheet(base), lesson, lookupTrials(trialsFor, lesson.Coursecode)); err != nil {
			builder.file.Close()
			return nil, err
		}
	}
	return builder.file, nil
}

func lookupTrials(trialsFor types.TrialLookup, coursecode string) []types.Trial {
	if trialsFor == nil {
		return nil
	}
	return trialsFor(coursecode)
}

// =============================================================================
// WORKBOOK BUILDER
// =============================================================================

// styleSet holds the style ids of one workbook.
type styleSet struct {
	title        int
	section      int
	headerLeft   int
	headerCenter int
	cell         int
	cellBold     int
	date         int
}

type styleDefinition struct {
	target *int
	style  *excelize.Style
}

type workbookBuilder struct {
	file   *excelize.File
	opts   Options
	styles styleSet
	sheets int
}

func newWorkbookBuilder(opts Options) (*workbookBuilder, error) {
	file := excelize.NewFile()
	styles, err := createStyles(file, opts.Theme.orDefault())
	if err != nil {
		file.Close()
		return nil, err
	}
	return &workbookBuilder{file: file, opts: opts, styles: styles}, nil
}

func createStyles(f *excelize.File, theme Theme) (styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: theme.Border, Style: 1},
		{Type: "right", Color: theme.Border, Style: 1},
		{Type: "top", Color: theme.Border, Style: 1},
		{Type: "bottom", Color: theme.Border, Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}
	align := func(horizontal string) *excelize.Alignment {
		return &excelize.Alignment{Horizontal: horizontal, Vertical: "center"}
	}

	var set styleSet
	definitions := []styleDefinition{
		{&set.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14, Color: theme.TitleText},
			Fill:      fill(theme.TitleBackground),
			Border:    border,
			Alignment: align("center"),
		}},
		{&set.section, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: theme.SectionText},
			Fill:      fill(theme.SectionBackground),
			Border:    border,
			Alignment: align("left"),
		}},
		{&set.headerLeft, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: theme.HeaderText},
			Fill:      fill(theme.HeaderBackground),
			Border:    border,
			Alignment: align("left"),
		}},
		{&set.headerCenter, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: theme.HeaderText},
			Fill:      fill(theme.HeaderBackground),
			Border:    border,
			Alignment: align("center"),
		}},
		{&set.cell, &excelize.Style{
			Font:      &excelize.Font{Color: theme.CellText},
			Fill:      fill(theme.CellBackground),
			Border:    border,
			Alignment: align("left"),
		}},
		{&set.cellBold, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: theme.CellText},
			Fill:      fill(theme.CellBackground),
			Border:    border,
			Alignment: align("left"),
		}},
		{&set.date, &excelize.Style{
			Font:      &excelize.Font{Color: theme.CellText},
			Fill:      fill(theme.DateBackground),
			Border:    border,
			Alignment: align("center"),
		}},
	}

	for _, definition := range definitions {
		id, err := f.NewStyle(definition.style)
		if err != nil {
			return styleSet{}, fmt.Errorf("failed to create style: %w", err)
		}
		*definition.target = id
	}
	return set, nil
}

// addLessonSheet adds a sheet for lesson. The first sheet reuses the default
// sheet of the new workbook.
func (b *workbookBuilder) addLessonSheet(name string, lesson types.LessonGroup, trials []types.Trial) error {
	if b.sheets == 0 {
		current := b.file.GetSheetName(0)
		if err := b.file.SetSheetName(current, name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := b.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", name, err)
	}
	b.sheets++

	w := &sheetWriter{file: b.file, sheet: name, styles: b.styles, labels: b.opts.dateLabels()}
	w.populate(lesson, b.opts, trials)
	if w.err != nil {
		return fmt.Errorf("failed to render lesson %s: %w", lesson.Coursecode, w.err)
	}
	return nil
}

// =============================================================================
// SHEET WRITER
// =============================================================================

// sheetWriter writes one lesson sheet. The first error sticks; later calls
// become no-ops.
type sheetWriter struct {
	file   *excelize.File
	sheet  string
	styles styleSet
	labels []string
	err    error

	// column values seen so far, for autosizing
	widths [baseColumns][]string
}

func (w *sheetWriter) totalColumns() int {
	return baseColumns + len(w.labels)
}

func (w *sheetWriter) cell(col, row int) string {
	if w.err != nil {
		return ""
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) do(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *sheetWriter) style(fromCol, toCol, row, style int) {
	if w.err != nil || toCol < fromCol {
		return
	}
	w.do(w.file.SetCellStyle(w.sheet, w.cell(fromCol, row), w.cell(toCol, row), style))
}

func (w *sheetWriter) mergedRow(row int, value string, style int, height float64) {
	if w.err != nil {
		return
	}
	first, last := w.cell(1, row), w.cell(w.totalColumns(), row)
	w.do(w.file.MergeCell(w.sheet, first, last))
	w.do(w.file.SetCellValue(w.sheet, first, value))
	w.style(1, w.totalColumns(), row, style)
	w.do(w.file.SetRowHeight(w.sheet, row, height))
}

func (w *sheetWriter) populate(lesson types.LessonGroup, opts Options, trials []types.Trial) {
	w.mergedRow(titleRow, LessonTitle(lesson, opts.Month, opts.Year), w.styles.title, 28)

	next := w.writeSection(titleRow+1, StaffSectionTitle, lesson.StaffOrdered, true)

	w.writeSection(next, MembersSectionTitle, MemberRows(lesson, trials), false)

	w.autosize()
}

// writeSection writes a section header, a column header and the rows.
// It returns the first row of the next section.
func (w *sheetWriter) writeSection(startRow int, title string, records []types.NormalizedRecord, boldLeaders bool) int {
	last := w.totalColumns()

	w.mergedRow(startRow, title, w.styles.section, 20)

	headerRow := startRow + 1
	header := make([]interface{}, 0, last)
	for _, label := range HeaderLabels {
		header = append(header, label)
	}
	for _, label := range w.labels {
		header = append(header, label)
	}
	if w.err == nil {
		w.do(w.file.SetSheetRow(w.sheet, w.cell(1, headerRow), &header))
	}
	w.style(1, baseColumns, headerRow, w.styles.headerLeft)
	w.style(baseColumns+1, last, headerRow, w.styles.headerCenter)
	if w.err == nil {
		w.do(w.file.SetRowHeight(w.sheet, headerRow, 22))
	}
	for i, label := range HeaderLabels {
		w.widths[i] = append(w.widths[i], label)
	}

	row := headerRow + 1
	if len(records) == 0 {
		w.style(1, baseColumns, row, w.styles.cell)
		w.style(baseColumns+1, last, row, w.styles.date)
		return row + 2
	}

	for _, record := range records {
		values := rowValues(record)
		cells := make([]interface{}, 0, baseColumns)
		for i, value := range values {
			cells = append(cells, value)
			w.widths[i] = append(w.widths[i], value)
		}
		if w.err == nil {
			w.do(w.file.SetSheetRow(w.sheet, w.cell(1, row), &cells))
		}

		w.style(1, baseColumns, row, w.styles.cell)
		if boldLeaders && record.RoleCategory == types.RoleLeiding && !record.IsPlaceholder {
			w.style(1, 1, row, w.styles.cellBold)
		}
		w.style(baseColumns+1, last, row, w.styles.date)
		row++
	}

	return row + 1
}

// MemberRows returns the rows of the members section: the members, then a
// separator row and one row per trial participant when there are trials.
func MemberRows(lesson types.LessonGroup, trials []types.Trial) []types.NormalizedRecord {
	members := append([]types.NormalizedRecord(nil), lesson.Leden...)
	if len(trials) == 0 {
		return members
	}
	members = append(members, types.NewSeparator(lesson.Coursecode, lesson.Course).Project())
	for _, trial := range trials {
		members = append(members, trialRecord(lesson, trial))
	}
	return members
}

// PersonColumns returns the Naam, Telefoonnummer(s), Geb. datum and Foto
// values of record.
func PersonColumns(record types.NormalizedRecord) []string {
	values := rowValues(record)
	return values[:]
}

// rowValues returns the person columns for record.
func rowValues(record types.NormalizedRecord) [baseColumns]string {
	foto := ""
	if record.SecretImagesFlag {
		foto = NoPhotoLabel
	}
	return [baseColumns]string{record.Name, record.PhoneDisplay, record.DisplayBirthdate(), foto}
}

// trialRecord renders a trial participant as a member row.
func trialRecord(lesson types.LessonGroup, trial types.Trial) types.NormalizedRecord {
	name := strings.TrimSpace(trial.Name)
	if name == "" {
		name = trial.Name
	}
	phone := strings.TrimSpace(trial.Phone)
	numbers := []string{}
	if phone != "" {
		numbers = append(numbers, phone)
	}
	return types.NormalizedRecord{
		Coursecode:      lesson.Coursecode,
		Course:          lesson.Course,
		Name:            fmt.Sprintf("%s (%d)", name, max(trial.Count, 0)),
		PhoneDisplay:    phone,
		PhoneNumbers:    numbers,
		RoleCategory:    types.RoleLeden,
		SourceRowNumber: types.SyntheticRowNumber,
	}
}

// columnBounds are the autosize limits per person column.
var columnBounds = [baseColumns]struct {
	min, max, padding float64
}{
	{28, 45, 3},
	{24, 42, 4},
	{12, 14, 2},
	{8, 10, 1},
}

// autosize estimates column widths from their content.
func (w *sheetWriter) autosize() {
	for i, bounds := range columnBounds {
		width := bounds.min
		for _, value := range w.widths[i] {
			estimate := math.Ceil(float64(utf8.RuneCountInString(value))*1.2) + bounds.padding
			width = math.Max(width, estimate)
		}
		width = math.Min(width, bounds.max)

		if w.err != nil {
			return
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		w.do(err)
		w.do(w.file.SetColWidth(w.sheet, name, name, width))
	}

	if w.err != nil || len(w.labels) == 0 {
		return
	}
	first, err := excelize.ColumnNumberToName(baseColumns + 1)
	w.do(err)
	last, err := excelize.ColumnNumberToName(w.totalColumns())
	w.do(err)
	if w.err == nil {
		w.do(w.file.SetColWidth(w.sheet, first, last, 6))
	}
}
