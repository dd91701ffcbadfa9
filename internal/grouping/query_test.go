package grouping

import (
	"testing"

	"github.com/ginjaninja78/presentielijst/internal/types"
)

func sampleLessons() []types.LessonGroup {
	return GroupByLesson([]types.NormalizedRecord{
		record("K01", "Kampvuur", "Alice", types.RoleLeiding, 2),
		record("K01", "Kampvuur", "Dana", types.RoleLeden, 3),
		record("Z02", "Zwemmen", "alice ", types.RoleLeiding, 4),
		record("Z02", "Zwemmen", "Bob", types.RoleAssistent, 5),
		record("Z02", "Zwemmen", "Eva", types.RoleLeden, 6),
		record("S03", "Schaken", "Carla", types.RoleLeiding, 7),
	}).Lessons
}

func TestVisible(t *testing.T) {
	visible := Visible(sampleLessons())
	if len(visible) != 2 {
		t.Fatalf("got %d visible lessons, want 2", len(visible))
	}
	for _, lesson := range visible {
		if lesson.Coursecode == "S03" {
			t.Errorf("staff-only lesson S03 should be hidden")
		}
	}
}

func TestFilter(t *testing.T) {
	lessons := sampleLessons()
	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"   ", 3},
		{"k01", 1},
		{"ZWEM", 1},
		{"0", 3},
		{"tennis", 0},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := Filter(lessons, tt.term); len(got) != tt.want {
				t.Errorf("Filter(%q) = %d lessons, want %d", tt.term, len(got), tt.want)
			}
		})
	}
}

func TestMemberCount(t *testing.T) {
	lesson := sampleLessons()[0]
	lesson.Leden = append(lesson.Leden, types.NewPlaceholder(lesson.Coursecode).Project())
	if got := MemberCount(lesson); got != 1 {
		t.Errorf("MemberCount = %d, want 1", got)
	}
}

func TestLeaderIndex(t *testing.T) {
	index := LeaderIndex(Visible(sampleLessons()))
	if len(index) != 1 {
		t.Fatalf("got %d leaders, want 1: %+v", len(index), index)
	}
	if index[0].Name != "Alice" {
		t.Errorf("leader name = %q, want first occurrence", index[0].Name)
	}
	if len(index[0].Lessons) != 2 || index[0].Lessons[0].Coursecode != "K01" || index[0].Lessons[1].Coursecode != "Z02" {
		t.Errorf("leader lessons = %+v", index[0].Lessons)
	}
}

func TestHasLeaders(t *testing.T) {
	if !HasLeaders(sampleLessons()) {
		t.Errorf("HasLeaders = false, want true")
	}
	membersOnly := GroupByLesson([]types.NormalizedRecord{record("L01", "X", "Dana", types.RoleLeden, 2)}).Lessons
	if HasLeaders(membersOnly) {
		t.Errorf("HasLeaders = true for a lesson with only stand-ins")
	}
}
