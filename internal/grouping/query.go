package grouping

import (
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/types"
)

// Visible returns the lessons that are not skipped.
func Visible(lessons []types.LessonGroup) []types.LessonGroup {
	visible := make([]types.LessonGroup, 0, len(lessons))
	for _, lesson := range lessons {
		if !lesson.ShouldSkip {
			visible = append(visible, lesson)
		}
	}
	return visible
}

// Filter keeps lessons whose coursecode or course contains term,
// case-insensitively. A blank term keeps everything.
func Filter(lessons []types.LessonGroup, term string) []types.LessonGroup {
	if strings.TrimSpace(term) == "" {
		return lessons
	}
	needle := strings.ToLower(term)

	var matched []types.LessonGroup
	for _, lesson := range lessons {
		if strings.Contains(strings.ToLower(lesson.Coursecode), needle) ||
			strings.Contains(strings.ToLower(lesson.Course), needle) {
			matched = append(matched, lesson)
		}
	}
	return matched
}

// MemberCount returns the number of real members in lesson.
func MemberCount(lesson types.LessonGroup) int {
	count := 0
	for _, member := range lesson.Leden {
		if !member.IsPlaceholder {
			count++
		}
	}
	return count
}

// Leaders returns the named, non-placeholder leaders of lesson.
func Leaders(lesson types.LessonGroup) []types.NormalizedRecord {
	var leaders []types.NormalizedRecord
	for _, person := range lesson.StaffOrdered {
		if person.RoleCategory == types.RoleLeiding && !person.IsPlaceholder && strings.TrimSpace(person.Name) != "" {
			leaders = append(leaders, person)
		}
	}
	return leaders
}

// HasLeaders reports whether any lesson has at least one named leader.
func HasLeaders(lessons []types.LessonGroup) bool {
	for _, lesson := range lessons {
		if len(Leaders(lesson)) > 0 {
			return true
		}
	}
	return false
}

// LeaderLessons is one leader and the lessons they lead.
type LeaderLessons struct {
	Name    string
	Lessons []types.LessonGroup
}

// LeaderIndex lists leaders in first-seen order, keyed by NameKey. The name
// of the first occurrence is kept. Each lesson appears once per leader.
func LeaderIndex(lessons []types.LessonGroup) []LeaderLessons {
	var index []LeaderLessons
	positions := make(map[string]int)

	for _, lesson := range lessons {
		for _, leader := range Leaders(lesson) {
			key := NameKey(leader.Name)
			pos, ok := positions[key]
			if !ok {
				pos = len(index)
				positions[key] = pos
				index = append(index, LeaderLessons{Name: leader.Name})
			}
			entry := &index[pos]
			if n := len(entry.Lessons); n > 0 && entry.Lessons[n-1].Coursecode == lesson.Coursecode {
				continue
			}
			entry.Lessons = append(entry.Lessons, lesson)
		}
	}
	return index
}
