package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ginjaninja78/presentielijst/internal/export"
	"github.com/ginjaninja78/presentielijst/internal/grouping"
	"github.com/ginjaninja78/presentielijst/internal/types"
	"github.com/ginjaninja78/presentielijst/internal/validation"
)

// printLessons writes the lists as plain text tables. Leaders are marked
// with an asterisk; skipped lessons are only mentioned.
func printLessons(out io.Writer, lessons []types.LessonGroup, opts export.Options, trialsFor types.TrialLookup) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	for _, lesson := range lessons {
		if lesson.ShouldSkip {
			fmt.Fprintf(tw, "%s: alleen leiding, geen lijst.\n\n", validation.LessonLabel(lesson.Coursecode, lesson.Course))
			continue
		}

		var trials []types.Trial
		if trialsFor != nil {
			trials = trialsFor(lesson.Coursecode)
		}

		fmt.Fprintln(tw, export.LessonTitle(lesson, opts.Month, opts.Year))
		printSection(tw, export.StaffSectionTitle, lesson.StaffOrdered, true)
		printSection(tw, export.MembersSectionTitle, export.MemberRows(lesson, trials), false)
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

func printSection(w io.Writer, title string, records []types.NormalizedRecord, markLeaders bool) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Join(export.HeaderLabels, "\t"))
	for _, record := range records {
		columns := export.PersonColumns(record)
		if markLeaders && record.RoleCategory == types.RoleLeiding && !record.IsPlaceholder {
			columns[0] = "* " + columns[0]
		}
		if record.IsPlaceholder && columns[0] == "" {
			columns[0] = "..."
		}
		fmt.Fprintln(w, strings.Join(columns, "\t"))
	}
}

// memberTotals returns the number of lessons with a list and their members.
func memberTotals(lessons []types.LessonGroup) (int, int) {
	visible := grouping.Visible(lessons)
	members := 0
	for _, lesson := range visible {
		members += grouping.MemberCount(lesson)
	}
	return len(visible), members
}
