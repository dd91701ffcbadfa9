// =============================================================================
// Presentielijst - File Manager Utility
// =============================================================================
//
// File helpers for the command line:
//   - Output directory management
//   - Collision-free output paths
//   - The import report written next to the generated lists
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager places generated files in the output directory.
type FileManager struct {
	// OutputDir receives every generated file.
	OutputDir string

	// Overwrite replaces existing files instead of picking a new name.
	Overwrite bool
}

// NewFileManager creates a FileManager for outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{OutputDir: outputDir}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath returns the path for name inside the output directory. Unless
// Overwrite is set, an existing file gets " (2)", " (3)", ... inserted before
// its extension.
func (fm *FileManager) OutputPath(name string) string {
	path := filepath.Join(fm.OutputDir, name)
	if fm.Overwrite || !FileExists(path) {
		return path
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 2; ; counter++ {
		candidate := filepath.Join(fm.OutputDir, fmt.Sprintf("%s (%d)%s", base, counter, ext))
		if !FileExists(candidate) {
			return candidate
		}
	}
}

// =============================================================================
// IMPORT REPORT
// =============================================================================

// ImportSummary describes one processed member export.
type ImportSummary struct {
	RunID      string
	SourceFile string
	StartTime  time.Time
	EndTime    time.Time

	RowsRead       int
	RecordsKept    int
	RowsDropped    int
	Lessons        int
	SkippedLessons int
	Errors         int
	Warnings       int

	// Issues is the formatted issue list.
	Issues string

	// OutputFiles lists the files written during the run.
	OutputFiles []string
}

// WriteImportReport writes summary to name in the output directory.
//
// PARAMETERS:
//   - summary: The run to describe.
//   - name: The report file name, e.g. "importrapport.txt".
//
// RETURNS:
//   - The path to the report file.
//   - An error if writing fails.
func (fm *FileManager) WriteImportReport(summary ImportSummary, name string) (string, error) {
	reportPath := fm.OutputPath(name)

	file, err := os.Create(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to create import report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Presentielijst - Importrapport\n"+
		"================================================================================\n\n"+
		"Import:\n"+
		"  Run ID:               %s\n"+
		"  Bestand:              %s\n"+
		"  Gestart:              %s\n"+
		"  Duur:                 %s\n\n"+
		"Statistieken:\n"+
		"  Rijen gelezen:        %d\n"+
		"  Deelnemers:           %d\n"+
		"  Rijen overgeslagen:   %d\n"+
		"  Lessen:               %d\n"+
		"  Lessen zonder leden:  %d\n"+
		"  Fouten:               %d\n"+
		"  Waarschuwingen:       %d\n\n",
		summary.RunID,
		summary.SourceFile,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.RowsRead,
		summary.RecordsKept,
		summary.RowsDropped,
		summary.Lessons,
		summary.SkippedLessons,
		summary.Errors,
		summary.Warnings)

	writer.WriteString("Meldingen:\n")
	writer.WriteString("--------------------------------------------------------------------------------\n")
	writer.WriteString(strings.TrimRight(summary.Issues, "\n"))
	writer.WriteString("\n\n")

	if len(summary.OutputFiles) > 0 {
		writer.WriteString("Bestanden:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, output := range summary.OutputFiles {
			fmt.Fprintf(writer, "  %s\n", output)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"Einde rapport\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush import report: %w", err)
	}

	return reportPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
