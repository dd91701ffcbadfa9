package importer

import (
	"errors"
	"io"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/ginjaninja78/presentielijst/internal/csvparser"
	"github.com/ginjaninja78/presentielijst/internal/types"
	"github.com/ginjaninja78/presentielijst/internal/validation"
)

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func parse(t *testing.T, input string) *csvparser.Document {
	t.Helper()
	doc, err := csvparser.Parse(strings.NewReader(input), csvparser.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

const sampleExport = `coursecode;course;name2;function;phone1;phone2;birthdate;secretimages
L01;Kampvuur;Alice;Leiding;0612345678;;1990-05-21;0
L01;Kampvuur;Bob;Hulpleiding;;;;
L01;Kampvuur;Charlie;Trainer;;;;
L01;Kampvuur;Dana;;[06] 1111 2222;020 123;21-5-2012;1
L02;Circuit;Eva;Leiding;;;;
L03;Yoga;Frank;Coach;;;;
;Yoga;Nobody;;;;;
`

func TestRunPipeline(t *testing.T) {
	result, err := Run(parse(t, sampleExport), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ID == "" {
		t.Error("import ID not set")
	}
	if result.Stats.RowsRead != 7 || result.Stats.RecordsKept != 6 || result.Stats.RowsDropped != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Stats.Lessons != 3 || result.Stats.SkippedLessons != 1 {
		t.Errorf("lesson stats = %+v", result.Stats)
	}

	visible := result.Visible()
	if len(visible) != 2 || visible[0].Coursecode != "L01" || visible[1].Coursecode != "L03" {
		t.Fatalf("visible lessons = %+v", visible)
	}

	dana := visible[0].Leden[0]
	if dana.PhoneDisplay != "06 1111 2222, 020 123" || dana.Birthdate != "21-05-2012" || !dana.SecretImagesFlag {
		t.Errorf("Dana = %+v", dana)
	}

	report := result.Report
	if report.HasErrors() {
		t.Errorf("unexpected errors:\n%s", report.Format())
	}
	if got := report.ByCategory(validation.CategoryUnknownRole); len(got) != 1 {
		t.Errorf("unknown-role issues = %v", got)
	}
	if got := report.ByCategory(validation.CategoryTrainer); len(got) != 2 {
		t.Errorf("trainer issues = %v", got)
	}
	empty := report.ByCategory(validation.CategoryEmptyLesson)
	if len(empty) != 1 || empty[0].Coursecode != "L02" {
		t.Errorf("empty-lesson issues = %v", empty)
	}
	if got := report.ByCategory(validation.CategoryRoleColumn); len(got) != 0 {
		t.Errorf("role column should be fine: %v", got)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	doc := parse(t, sampleExport)
	first, err := Run(doc, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := Run(doc, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(first.Grouped.Lessons) != len(second.Grouped.Lessons) {
		t.Fatal("lesson count differs between runs")
	}
	for i := range first.Grouped.Lessons {
		a, b := first.Grouped.Lessons[i], second.Grouped.Lessons[i]
		if a.Coursecode != b.Coursecode || len(a.StaffOrdered) != len(b.StaffOrdered) || len(a.Leden) != len(b.Leden) {
			t.Errorf("lesson %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRunMissingColumns(t *testing.T) {
	doc := parse(t, "lesnummer;telefoon\nL01;0612\n")

	result, err := Run(doc, Options{Logger: quietLogger()})
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("error = %v, want ErrMissingColumns", err)
	}
	if result == nil || !result.Report.HasErrors() {
		t.Fatal("expected a report with errors")
	}
	issue := result.Report.ByCategory(validation.CategoryMissingColumn)[0]
	want := "Het bestand mist de verplichte kolommen: Naam les (course), Naam (name2)."
	if issue.Message != want {
		t.Errorf("Message = %q, want %q", issue.Message, want)
	}
}

func TestRunNoRecords(t *testing.T) {
	doc := parse(t, "coursecode;course;name2;function\n;Yoga;Alice;\nL01;Yoga;;\n")

	result, err := Run(doc, Options{Logger: quietLogger()})
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("error = %v, want ErrNoRecords", err)
	}
	if got := result.Report.ByCategory(validation.CategoryNoRecords); len(got) != 1 {
		t.Errorf("no-records issues = %v", got)
	}
}

func TestRunRoleColumnNotices(t *testing.T) {
	missing, err := Run(parse(t, "coursecode;course;name2\nL01;Yoga;Alice\n"), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := missing.Report.ByCategory(validation.CategoryRoleColumn); len(got) != 1 || !strings.Contains(got[0].Message, "ontbreekt") {
		t.Errorf("role column issues = %v", got)
	}

	empty, err := Run(parse(t, "coursecode;course;name2;function\nL01;Yoga;Alice;\n"), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := empty.Report.ByCategory(validation.CategoryRoleColumn); len(got) != 1 || !strings.Contains(got[0].Message, "geen waarden") {
		t.Errorf("role column issues = %v", got)
	}
}

func TestRunOverrides(t *testing.T) {
	doc := parse(t, "groep;omschrijving;deelnemer;taak\nL01;Yoga;Alice;Leiding\nL01;Yoga;Bob;\n")

	if _, err := Run(doc, Options{Logger: quietLogger()}); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("error = %v, want ErrMissingColumns without overrides", err)
	}

	overrides := types.ColumnMapping{
		types.FieldCoursecode: "groep",
		types.FieldCourse:     "omschrijving",
		types.FieldName:       "deelnemer",
		types.FieldFunction:   "taak",
	}
	result, err := Run(doc, Options{Overrides: overrides, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run with overrides: %v", err)
	}
	lesson := result.Grouped.Lessons[0]
	if lesson.StaffOrdered[0].Name != "Alice" || lesson.Leden[0].Name != "Bob" {
		t.Errorf("lesson = %+v", lesson)
	}

	bad := types.ColumnMapping{types.FieldName: "bestaat-niet"}
	if _, err := Run(doc, Options{Overrides: bad, Logger: quietLogger()}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("error = %v, want ErrUnknownColumn", err)
	}
}

func TestRunCarriesParseWarnings(t *testing.T) {
	doc := parse(t, "coursecode;course;name2;function;phone1\nL01;Yoga;Alice\n")

	result, err := Run(doc, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	parseIssues := result.Report.ByCategory(validation.CategoryParse)
	if len(parseIssues) != 1 || parseIssues[0].RowNumber != 2 {
		t.Errorf("parse issues = %+v", parseIssues)
	}
}
