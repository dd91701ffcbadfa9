package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/presentielijst/internal/types"
)

var fixedTime = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func readArchive(t *testing.T, data []byte) map[string]*excelize.File {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	files := make(map[string]*excelize.File)
	for _, entry := range reader.File {
		if !entry.Modified.Equal(fixedTime) {
			t.Errorf("%s modified = %v, want %v", entry.Name, entry.Modified, fixedTime)
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open %s: %v", entry.Name, err)
		}
		f, err := excelize.OpenReader(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name, err)
		}
		t.Cleanup(func() { f.Close() })
		files[entry.Name] = f
	}
	return files
}

func TestAllLessonsZip(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Month: 9, Year: 2025, Columns: 4, Timestamp: fixedTime}
	lookup := func(code string) []types.Trial {
		if code == "L01" {
			return []types.Trial{{Name: "Tom", Count: 3}}
		}
		return nil
	}

	entries, err := AllLessonsZip(&buf, sampleLessons(), opts, lookup)
	if err != nil {
		t.Fatalf("AllLessonsZip() error = %v", err)
	}

	want := []string{
		"L01 Bootcamp september 2025.xlsx",
		"L02 Yoga september 2025.xlsx",
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}

	files := readArchive(t, buf.Bytes())
	if len(files) != 2 {
		t.Fatalf("archive has %d files, want 2", len(files))
	}
	got, err := files[want[0]].GetCellValue(LessonSheetName, "A15")
	if err != nil || got != "Tom (3)" {
		t.Errorf("trial row = %q, %v", got, err)
	}
}

func TestAllLessonsZipDeduplicatesNames(t *testing.T) {
	lessons := []types.LessonGroup{
		{Coursecode: "L/1", Course: "Dans", Leden: []types.NormalizedRecord{person("L/1", "Dans", "A", types.RoleLeden)}},
		{Coursecode: "L-1", Course: "Dans", Leden: []types.NormalizedRecord{person("L-1", "Dans", "B", types.RoleLeden)}},
	}

	var buf bytes.Buffer
	entries, err := AllLessonsZip(&buf, lessons, Options{Month: 1, Year: 2026, Timestamp: fixedTime}, nil)
	if err != nil {
		t.Fatalf("AllLessonsZip() error = %v", err)
	}
	want := []string{"L-1 Dans januari 2026.xlsx", "L-1 Dans januari 2026 (2).xlsx"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}
}

func TestAllLessonsZipNothingToExport(t *testing.T) {
	lessons := []types.LessonGroup{{Coursecode: "L03", ShouldSkip: true}}

	var buf bytes.Buffer
	_, err := AllLessonsZip(&buf, lessons, Options{Month: 1, Year: 2026}, nil)
	if !errors.Is(err, ErrNoLessons) {
		t.Fatalf("error = %v, want ErrNoLessons", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes, want nothing", buf.Len())
	}
}

func TestPerLeaderZip(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Month: 5, Year: 2030, Columns: 2, Timestamp: fixedTime}

	entries, err := PerLeaderZip(&buf, sampleLessons(), opts, nil)
	if err != nil {
		t.Fatalf("PerLeaderZip() error = %v", err)
	}

	// Gijs only leads the skipped lesson L03
	want := []string{"Alice - Presentielijsten mei 2030.xlsx"}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("entries = %v, want %v", entries, want)
	}

	files := readArchive(t, buf.Bytes())
	sheets := files[want[0]].GetSheetList()
	if !reflect.DeepEqual(sheets, []string{"les L01", "les L02"}) {
		t.Errorf("sheets = %v", sheets)
	}
}

func TestPerLeaderZipWithoutLeaders(t *testing.T) {
	lessons := []types.LessonGroup{
		{Coursecode: "L05", Course: "Dans", Leden: []types.NormalizedRecord{person("L05", "Dans", "Ilse", types.RoleLeden)}},
	}

	var buf bytes.Buffer
	_, err := PerLeaderZip(&buf, lessons, Options{Month: 1, Year: 2026}, nil)
	if !errors.Is(err, ErrNoLeaders) {
		t.Fatalf("error = %v, want ErrNoLeaders", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes, want nothing", buf.Len())
	}
}

func TestWriteLessonFile(t *testing.T) {
	dir := t.TempDir()
	lessons := sampleLessons()

	path, err := WriteLessonFile(dir, lessons[0], Options{Month: 9, Year: 2025, Columns: 4}, nil)
	if err != nil {
		t.Fatalf("WriteLessonFile() error = %v", err)
	}
	if want := filepath.Join(dir, "L01 Bootcamp september 2025.xlsx"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}

	if _, err := WriteLessonFile(dir, lessons[2], Options{Month: 9, Year: 2025}, nil); !errors.Is(err, ErrNoLessons) {
		t.Errorf("skipped lesson error = %v, want ErrNoLessons", err)
	}
}

func TestWriteZipFileRemovesOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.zip")
	_, err := WriteZipFile(path, func(w io.Writer) ([]string, error) {
		return AllLessonsZip(w, nil, Options{}, nil)
	})
	if !errors.Is(err, ErrNoLessons) {
		t.Fatalf("error = %v, want ErrNoLessons", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("archive should be removed, stat = %v", statErr)
	}
}
