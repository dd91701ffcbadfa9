package grouping

import (
	"reflect"
	"testing"

	"github.com/ginjaninja78/presentielijst/internal/mapping"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

func record(code, course, name string, role types.RoleCategory, row int) types.NormalizedRecord {
	return types.NormalizedRecord{
		Coursecode:      code,
		Course:          course,
		Name:            name,
		PhoneNumbers:    []string{},
		RoleCategory:    role,
		SourceRowNumber: row,
	}
}

func names(records []types.NormalizedRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if !r.IsPlaceholder {
			out = append(out, r.Name)
		}
	}
	return out
}

func TestGroupByLessonOrdersStaff(t *testing.T) {
	columns := mapping.ResolveColumns([]string{"coursecode", "course", "name2", "function"}).Mapping
	rows := []types.RawRow{
		types.NewRawRow(map[string]string{"coursecode": "L01", "course": "Bootcamp", "name2": "Alice", "function": "Leiding"}),
		types.NewRawRow(map[string]string{"coursecode": "L01", "course": "Bootcamp", "name2": "Bob", "function": "Hulpleiding"}),
		types.NewRawRow(map[string]string{"coursecode": "L01", "course": "Bootcamp", "name2": "Charlie", "function": "Trainer"}),
		types.NewRawRow(map[string]string{"coursecode": "L01", "course": "Bootcamp", "name2": "Dana", "function": ""}),
	}
	normalized := mapping.NormalizeRecords(rows, columns)

	got := GroupByLesson(normalized.Records)
	if len(got.Lessons) != 1 {
		t.Fatalf("got %d lessons, want 1", len(got.Lessons))
	}
	if len(got.EmptyLessons) != 0 {
		t.Errorf("EmptyLessons = %v, want none", got.EmptyLessons)
	}

	lesson := got.Lessons[0]
	if lesson.Coursecode != "L01" || lesson.Course != "Bootcamp" {
		t.Errorf("lesson = %q %q", lesson.Coursecode, lesson.Course)
	}
	if want := []string{"Alice", "Charlie", "Bob"}; !reflect.DeepEqual(names(lesson.StaffOrdered), want) {
		t.Errorf("staff = %v, want %v", names(lesson.StaffOrdered), want)
	}
	if len(lesson.StaffOrdered) != 3+StandInCount {
		t.Fatalf("staff length = %d, want %d", len(lesson.StaffOrdered), 3+StandInCount)
	}
	for _, standIn := range lesson.StaffOrdered[3:] {
		if !standIn.IsPlaceholder || standIn.Name != "" || standIn.Course != "" ||
			standIn.Coursecode != "L01" || standIn.RoleCategory != types.RoleLeden || standIn.SourceRowNumber != 0 {
			t.Errorf("unexpected stand-in %+v", standIn)
		}
	}
	if want := []string{"Dana"}; !reflect.DeepEqual(names(lesson.Leden), want) {
		t.Errorf("leden = %v, want %v", names(lesson.Leden), want)
	}
	if want := []types.TrainerIssueEntry{{Name: "Charlie", RowNumber: 4}}; !reflect.DeepEqual(lesson.TrainerIssues, want) {
		t.Errorf("TrainerIssues = %+v, want %+v", lesson.TrainerIssues, want)
	}
	if lesson.ShouldSkip {
		t.Errorf("lesson with members must not be skipped")
	}
}

func TestGroupByLessonSkipsStaffOnlyLessons(t *testing.T) {
	records := []types.NormalizedRecord{
		record("L02", "", "Eva", types.RoleLeiding, 2),
		record("L02", "Circuit", "Frank", types.RoleAssistent, 3),
		record("L03", "Yoga", "Gijs", types.RoleLeden, 4),
		record("L04", "Pilates", "Hanna", types.RoleLeden, 5),
	}

	got := GroupByLesson(records)

	if len(got.Lessons) != 3 {
		t.Fatalf("got %d lessons, want 3", len(got.Lessons))
	}
	if !got.Lessons[0].ShouldSkip || got.Lessons[1].ShouldSkip || got.Lessons[2].ShouldSkip {
		t.Errorf("skip flags = %v %v %v", got.Lessons[0].ShouldSkip, got.Lessons[1].ShouldSkip, got.Lessons[2].ShouldSkip)
	}
	want := []types.EmptyLessonWarning{{Coursecode: "L02", Course: "Circuit"}}
	if !reflect.DeepEqual(got.EmptyLessons, want) {
		t.Errorf("EmptyLessons = %+v, want %+v", got.EmptyLessons, want)
	}
}

func TestGroupByLessonWithoutStaffIsNotSkipped(t *testing.T) {
	got := GroupByLesson([]types.NormalizedRecord{record("L05", "Dans", "Ilse", types.RoleLeden, 2)})
	if got.Lessons[0].ShouldSkip {
		t.Errorf("members-only lesson must not be skipped")
	}
	if len(got.Lessons[0].StaffOrdered) != StandInCount {
		t.Errorf("staff = %d rows, want only stand-ins", len(got.Lessons[0].StaffOrdered))
	}
}

func TestGroupByLessonDeduplicates(t *testing.T) {
	first := record("L01", "X", "Jan Jansen", types.RoleLeden, 2)
	first.PhoneDisplay = "0612345678"
	records := []types.NormalizedRecord{
		first,
		record("L01", "X", "  jan jansen ", types.RoleLeden, 3),
		record("L01", "X", "JAN JANSEN", types.RoleLeiding, 4),
		record("L01", "X", "Jan Jansen", types.RoleLeiding, 5),
	}

	lesson := GroupByLesson(records).Lessons[0]
	if len(lesson.Leden) != 1 || lesson.Leden[0].SourceRowNumber != 2 || lesson.Leden[0].PhoneDisplay != "0612345678" {
		t.Errorf("leden = %+v, want first occurrence only", lesson.Leden)
	}
	if got := names(lesson.StaffOrdered); !reflect.DeepEqual(got, []string{"JAN JANSEN"}) {
		t.Errorf("staff = %v", got)
	}
}

func TestGroupByLessonSortsByCollation(t *testing.T) {
	records := []types.NormalizedRecord{
		record("b10", "B", "émile", types.RoleLeden, 2),
		record("A2", "A", "zoe", types.RoleLeden, 3),
		record("b10", "B", "Daan", types.RoleLeden, 4),
		record("b10", "B", "anna", types.RoleLeden, 5),
	}

	got := GroupByLesson(records)
	if got.Lessons[0].Coursecode != "A2" || got.Lessons[1].Coursecode != "b10" {
		t.Errorf("lesson order = %q, %q", got.Lessons[0].Coursecode, got.Lessons[1].Coursecode)
	}
	if want := []string{"anna", "Daan", "émile"}; !reflect.DeepEqual(names(got.Lessons[1].Leden), want) {
		t.Errorf("leden = %v, want %v", names(got.Lessons[1].Leden), want)
	}
}

func TestGroupByLessonIsIdempotent(t *testing.T) {
	records := []types.NormalizedRecord{
		record("L01", "X", "Alice", types.RoleLeiding, 2),
		record("L01", "X", "Dana", types.RoleLeden, 3),
		record("L02", "Y", "Eva", types.RoleLeiding, 4),
	}
	records[0].WasTrainer = true

	first := GroupByLesson(records)
	second := GroupByLesson(records)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("grouping is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestGroupByLessonEmptyInput(t *testing.T) {
	got := GroupByLesson(nil)
	if len(got.Lessons) != 0 || len(got.EmptyLessons) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}
