// =============================================================================
// Presentielijst - Lesson Grouper
// =============================================================================
//
// Builds one LessonGroup per coursecode from the normalized records of an
// import. The result is a pure function of the record list: grouping the same
// records twice yields identical output.
//
// ALGORITHM:
//   1. Bucket records by coursecode, in first-seen order
//   2. Per lesson keep the first non-empty course name
//   3. Deduplicate people per role bucket by lower-cased, trimmed name
//      (first record wins, later duplicates are dropped)
//   4. Sort leaders, assistants and members by name
//   5. StaffOrdered = leaders + assistants + three stand-in rows
//   6. A lesson with staff but no members is marked ShouldSkip
//   7. Lessons are sorted by coursecode
//
// =============================================================================

package grouping

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/presentielijst/internal/collation"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

// StandInCount is the number of blank staff rows added to every lesson.
const StandInCount = 3

// =============================================================================
// ORDERED BUCKETS
// =============================================================================

// personBucket keeps people in insertion order, unique by name key.
type personBucket struct {
	seen   map[string]struct{}
	people []types.Person
}

func newPersonBucket() *personBucket {
	return &personBucket{seen: make(map[string]struct{})}
}

// add inserts record unless a person with the same name key is present.
func (b *personBucket) add(record types.NormalizedRecord) {
	key := NameKey(record.Name)
	if _, exists := b.seen[key]; exists {
		return
	}
	b.seen[key] = struct{}{}
	b.people = append(b.people, types.Person{Kind: types.RealPerson, Record: record})
}

func (b *personBucket) len() int {
	return len(b.people)
}

// sorted projects the bucket, sorted by name.
func (b *personBucket) sorted(cmp collation.Comparator) []types.NormalizedRecord {
	records := make([]types.NormalizedRecord, 0, len(b.people))
	for _, person := range b.people {
		records = append(records, person.Project())
	}
	sort.SliceStable(records, func(i, j int) bool {
		return cmp.Compare(records[i].Name, records[j].Name) < 0
	})
	return records
}

// lessonAccumulator collects everything known about one coursecode.
type lessonAccumulator struct {
	coursecode    string
	course        string
	leiding       *personBucket
	assistent     *personBucket
	leden         *personBucket
	trainerIssues []types.TrainerIssueEntry
}

func newLessonAccumulator(coursecode string) *lessonAccumulator {
	return &lessonAccumulator{
		coursecode: coursecode,
		leiding:    newPersonBucket(),
		assistent:  newPersonBucket(),
		leden:      newPersonBucket(),
	}
}

func (a *lessonAccumulator) add(record types.NormalizedRecord) {
	if strings.TrimSpace(a.course) == "" && strings.TrimSpace(record.Course) != "" {
		a.course = record.Course
	}

	if record.WasTrainer {
		a.trainerIssues = append(a.trainerIssues, types.TrainerIssueEntry{
			Name:      record.Name,
			RowNumber: record.SourceRowNumber,
		})
	}

	switch record.RoleCategory {
	case types.RoleLeiding:
		a.leiding.add(record)
	case types.RoleAssistent:
		a.assistent.add(record)
	default:
		a.leden.add(record)
	}
}

func (a *lessonAccumulator) build(cmp collation.Comparator) types.LessonGroup {
	staff := make([]types.NormalizedRecord, 0, a.leiding.len()+a.assistent.len()+StandInCount)
	staff = append(staff, a.leiding.sorted(cmp)...)
	staff = append(staff, a.assistent.sorted(cmp)...)
	for i := 0; i < StandInCount; i++ {
		staff = append(staff, types.NewPlaceholder(a.coursecode).Project())
	}

	issues := append([]types.TrainerIssueEntry(nil), a.trainerIssues...)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].RowNumber < issues[j].RowNumber
	})

	hasStaff := a.leiding.len() > 0 || a.assistent.len() > 0
	hasMembers := a.leden.len() > 0

	return types.LessonGroup{
		Coursecode:    a.coursecode,
		Course:        a.course,
		StaffOrdered:  staff,
		Leden:         a.leden.sorted(cmp),
		TrainerIssues: issues,
		ShouldSkip:    hasStaff && !hasMembers,
	}
}

// =============================================================================
// GROUPING
// =============================================================================

// GroupByLesson groups records with the default collation.
func GroupByLesson(records []types.NormalizedRecord) types.GroupedLessons {
	return GroupByLessonWith(records, collation.Default())
}

// GroupByLessonWith groups records, ordering names and coursecodes with cmp.
//
// PARAMETERS:
//   - records: Every normalized record of one import, in source order.
//   - cmp: The comparator used for all sorting.
//
// RETURNS:
//   - The sorted lessons and the lessons that only have staff.
func GroupByLessonWith(records []types.NormalizedRecord, cmp collation.Comparator) types.GroupedLessons {
	var order []string
	accumulators := make(map[string]*lessonAccumulator)

	for _, record := range records {
		acc, ok := accumulators[record.Coursecode]
		if !ok {
			acc = newLessonAccumulator(record.Coursecode)
			accumulators[record.Coursecode] = acc
			order = append(order, record.Coursecode)
		}
		acc.add(record)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return cmp.Compare(order[i], order[j]) < 0
	})

	result := types.GroupedLessons{
		Lessons:      make([]types.LessonGroup, 0, len(order)),
		EmptyLessons: []types.EmptyLessonWarning{},
	}
	for _, coursecode := range order {
		lesson := accumulators[coursecode].build(cmp)
		result.Lessons = append(result.Lessons, lesson)
		if lesson.ShouldSkip {
			result.EmptyLessons = append(result.EmptyLessons, types.EmptyLessonWarning{
				Coursecode: lesson.Coursecode,
				Course:     lesson.Course,
			})
		}
	}

	return result
}

// NameKey is the deduplication key for a person name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
