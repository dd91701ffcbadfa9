package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presentielijst/internal/config"
	"github.com/ginjaninja78/presentielijst/internal/csvparser"
	"github.com/ginjaninja78/presentielijst/internal/export"
	"github.com/ginjaninja78/presentielijst/internal/grouping"
	"github.com/ginjaninja78/presentielijst/internal/trials"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

func settingsCommand(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().IntVar(&processFlags.month, "month", 0, "")
	c.Flags().IntVar(&processFlags.year, "year", 0, "")
	c.Flags().IntVar(&processFlags.columns, "columns", 0, "")
	for name, value := range set {
		if err := c.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	return c
}

func TestResolveSettings(t *testing.T) {
	now := time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		flags map[string]string
		prefs trials.Preferences
		cfg   config.Config
		want  listSettings
	}{
		{
			name: "defaults to now",
			want: listSettings{month: 10, year: 2025, columns: 4},
		},
		{
			name: "config",
			cfg:  config.Config{Month: 9, Year: 2024, ColumnCount: 6},
			want: listSettings{month: 9, year: 2024, columns: 6},
		},
		{
			name:  "preferences beat config",
			cfg:   config.Config{Month: 9, Year: 2024, ColumnCount: 6},
			prefs: trials.Preferences{Month: 3, Year: 2026, Columns: 8},
			want:  listSettings{month: 3, year: 2026, columns: 8},
		},
		{
			name:  "flags beat everything",
			flags: map[string]string{"month": "12", "columns": "50"},
			prefs: trials.Preferences{Month: 3, Year: 2026, Columns: 8},
			want:  listSettings{month: 12, year: 2026, columns: 40},
		},
		{
			name:  "invalid month falls back to now",
			flags: map[string]string{"month": "13"},
			want:  listSettings{month: 10, year: 2025, columns: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := settingsCommand(t, tt.flags)
			cfg := tt.cfg
			if got := resolveSettings(cmd, tt.prefs, &cfg, now); got != tt.want {
				t.Errorf("resolveSettings() = %+v, want %+v", got, tt.want)
			}
			if changed := settingsChanged(cmd); changed != (len(tt.flags) > 0) {
				t.Errorf("settingsChanged() = %v", changed)
			}
		})
	}
}

func TestParseColumnOverrides(t *testing.T) {
	got, err := parseColumnOverrides([]string{"name2=Volledige naam", "rol= Functie ", "telefoon="})
	if err != nil {
		t.Fatalf("parseColumnOverrides() error = %v", err)
	}
	want := types.ColumnMapping{
		types.FieldName:     "Volledige naam",
		types.FieldFunction: "Functie",
		types.FieldPhone1:   "",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for field, column := range want {
		if got[field] != column {
			t.Errorf("%s = %q, want %q", field, got[field], column)
		}
	}

	for _, bad := range []string{"name2", "leeftijd=Leeftijd"} {
		if _, err := parseColumnOverrides([]string{bad}); err == nil {
			t.Errorf("parseColumnOverrides(%q) should fail", bad)
		}
	}

	if got, err := parseColumnOverrides(nil); got != nil || err != nil {
		t.Errorf("parseColumnOverrides(nil) = %v, %v", got, err)
	}
}

func sampleGroups() []types.LessonGroup {
	records := []types.NormalizedRecord{
		{Coursecode: "L01", Course: "Bootcamp", Name: "Alice", RoleCategory: types.RoleLeiding, PhoneNumbers: []string{}},
		{Coursecode: "L01", Course: "Bootcamp", Name: "Dana", RoleCategory: types.RoleLeden, PhoneDisplay: "0612345678", SecretImagesFlag: true, PhoneNumbers: []string{"0612345678"}},
		{Coursecode: "L02", Course: "Yoga", Name: "Eva", RoleCategory: types.RoleLeiding, PhoneNumbers: []string{}},
	}
	return grouping.GroupByLesson(records).Lessons
}

func TestPrintLessons(t *testing.T) {
	var out bytes.Buffer
	lookup := func(code string) []types.Trial {
		return []types.Trial{{Name: "Tom", Count: 2}}
	}

	err := printLessons(&out, sampleGroups(), export.Options{Month: 9, Year: 2025}, lookup)
	if err != nil {
		t.Fatalf("printLessons() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Presentielijst september 2025 voor lesnummer L01: Bootcamp (1 leden)",
		"* Alice",
		"Dana",
		"0612345678",
		"Nee",
		"Tom (2)",
		"L02: Yoga: alleen leiding, geen lijst.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output is missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "* Dana") {
		t.Errorf("members must not be marked as leaders")
	}
}

func TestPrintColumns(t *testing.T) {
	input := "coursecode;course;naam;function\nL01;Bootcamp;Alice;Leiding\nL01;Bootcamp;Dana;Lid\n"
	doc, err := csvparser.Parse(strings.NewReader(input), csvparser.Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var out bytes.Buffer
	if err := printColumns(&out, doc, "function"); err != nil {
		t.Fatalf("printColumns() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{"Naam (name2)", "naam", "gevonden", "Geboortedatum", "niet gevonden", "Leiding", "Lid"} {
		if !strings.Contains(text, want) {
			t.Errorf("output is missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Ontbrekende verplichte kolommen") {
		t.Errorf("no required column is missing:\n%s", text)
	}
}

func TestPrintTrials(t *testing.T) {
	var out bytes.Buffer
	if err := printTrials(&out, nil); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "Geen proefdeelnemers.\n" {
		t.Errorf("empty list = %q", got)
	}

	out.Reset()
	list := []types.Trial{{ID: "abc", Coursecode: "L01", Name: "Tom", Count: 1}}
	if err := printTrials(&out, list); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "abc") || !strings.Contains(out.String(), "Tom") {
		t.Errorf("list output = %q", out.String())
	}
}
