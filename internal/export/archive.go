package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/presentielijst/internal/grouping"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

var (
	// ErrNoLessons is returned when every lesson is skipped.
	ErrNoLessons = errors.New("no lessons with members to export")

	// ErrNoLeaders is returned when no exported lesson has a named leader.
	ErrNoLeaders = errors.New("no leaders found in lessons with members")
)

// WriteLessonFile renders lesson into dir and returns the written path.
// Skipped lessons are not written and return ErrNoLessons.
func WriteLessonFile(dir string, lesson types.LessonGroup, opts Options, trials []types.Trial) (string, error) {
	if lesson.ShouldSkip {
		return "", ErrNoLessons
	}

	file, err := BuildLessonWorkbook(lesson, opts, trials)
	if err != nil {
		return "", err
	}
	defer file.Close()

	path := filepath.Join(dir, LessonFilename(lesson.Coursecode, lesson.Course, opts.Month, opts.Year))
	if err := file.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// AllLessonsZip writes one workbook per exported lesson into a ZIP archive.
//
// PARAMETERS:
//   - w: Destination of the archive.
//   - lessons: Grouped lessons; skipped ones are left out.
//   - opts: Render options.
//   - trialsFor: Trial lookup per coursecode; may be nil.
//
// RETURNS:
//   - The archive entry names, in lesson order.
//   - ErrNoLessons, before anything is written, when no lesson qualifies.
func AllLessonsZip(w io.Writer, lessons []types.LessonGroup, opts Options, trialsFor types.TrialLookup) ([]string, error) {
	eligible := grouping.Visible(lessons)
	if len(eligible) == 0 {
		return nil, ErrNoLessons
	}

	archive := newArchive(w, opts)
	for _, lesson := range eligible {
		file, err := BuildLessonWorkbook(lesson, opts, lookupTrials(trialsFor, lesson.Coursecode))
		if err != nil {
			archive.abort()
			return nil, err
		}
		err = archive.add(LessonFilename(lesson.Coursecode, lesson.Course, opts.Month, opts.Year), file)
		file.Close()
		if err != nil {
			archive.abort()
			return nil, err
		}
	}
	return archive.finish()
}

// PerLeaderZip writes one workbook per leader into a ZIP archive. Each
// workbook holds a sheet for every lesson the leader leads.
//
// RETURNS:
//   - The archive entry names, in first-seen leader order.
//   - ErrNoLessons or ErrNoLeaders, before anything is written.
func PerLeaderZip(w io.Writer, lessons []types.LessonGroup, opts Options, trialsFor types.TrialLookup) ([]string, error) {
	eligible := grouping.Visible(lessons)
	if len(eligible) == 0 {
		return nil, ErrNoLessons
	}
	leaders := grouping.LeaderIndex(eligible)
	if len(leaders) == 0 {
		return nil, ErrNoLeaders
	}

	archive := newArchive(w, opts)
	for _, leader := range leaders {
		file, err := BuildMultiLessonWorkbook(leader.Lessons, opts, trialsFor)
		if err != nil {
			archive.abort()
			return nil, err
		}
		err = archive.add(LeaderWorkbookFilename(leader.Name, opts.Month, opts.Year), file)
		file.Close()
		if err != nil {
			archive.abort()
			return nil, err
		}
	}
	return archive.finish()
}

// =============================================================================
// ARCHIVE WRITER
// =============================================================================

type archiveWriter struct {
	zip     *zip.Writer
	opts    Options
	names   *nameSet
	entries []string
}

func newArchive(w io.Writer, opts Options) *archiveWriter {
	return &archiveWriter{zip: zip.NewWriter(w), opts: opts, names: newNameSet()}
}

// add writes workbook under a unique variant of name.
func (a *archiveWriter) add(name string, workbook *excelize.File) error {
	name = a.names.reserveFile(name)
	entry, err := a.zip.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.opts.timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if err := workbook.Write(entry); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	a.entries = append(a.entries, name)
	return nil
}

func (a *archiveWriter) finish() ([]string, error) {
	if err := a.zip.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return a.entries, nil
}

func (a *archiveWriter) abort() {
	a.zip.Close()
}

// WriteZipFile creates path and fills it with write. The file is removed
// again when write fails.
func WriteZipFile(path string, write func(io.Writer) ([]string, error)) ([]string, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	entries, err := write(file)
	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return entries, nil
}
