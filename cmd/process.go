// =============================================================================
// Presentielijst - Process Command
// =============================================================================
//
// This file defines the 'process' command, which turns a member export into
// attendance lists.
//
// COMMAND USAGE:
//   presentielijst process --file leden.csv [flags]
//
// FLAGS:
//   --file          : The member export to read (required)
//   --month, --year : The month on the lists (default: saved, then config, then now)
//   --columns       : Number of date columns (default: saved, then config)
//   --dated-columns : Label date columns with consecutive days
//   --delimiter     : Field separator, or "auto"
//   --encoding      : Character encoding, or "auto"
//   --map           : Manual column choice, e.g. --map name2=Volledige naam
//   --filter        : Only lessons whose code or name contains this text
//   --print         : Print the lists to the terminal
//   --per-leader    : Also write one workbook per leader
//   --dry-run       : Run the import without writing any file
//
// PROCESSING PIPELINE:
//   1. Read and tokenize the export
//   2. Resolve month, year and column count
//   3. Run the import (columns, records, lessons, report)
//   4. Print the report and, optionally, the lists
//   5. Write the ZIP archives and the import report
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presentielijst/internal/config"
	"github.com/ginjaninja78/presentielijst/internal/csvparser"
	"github.com/ginjaninja78/presentielijst/internal/dates"
	"github.com/ginjaninja78/presentielijst/internal/export"
	"github.com/ginjaninja78/presentielijst/internal/grouping"
	"github.com/ginjaninja78/presentielijst/internal/importer"
	"github.com/ginjaninja78/presentielijst/internal/mapping"
	"github.com/ginjaninja78/presentielijst/internal/trials"
	"github.com/ginjaninja78/presentielijst/internal/types"
	"github.com/ginjaninja78/presentielijst/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var processFlags struct {
	file         string
	month        int
	year         int
	columns      int
	datedColumns bool
	delimiter    string
	encoding     string
	mappings     []string
	filter       string
	print        bool
	perLeader    bool
	dryRun       bool
}

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Build attendance lists from a member export",
	Long: `The process command reads a member export, groups everyone per lesson and
writes one attendance list per lesson into a ZIP archive in the output
directory.

Lessons with staff but without members get no list; they are listed in the
import report instead. Trial participants registered with 'presentielijst
trials' are added below the members of their lesson.

The chosen month, year and column count are remembered for the next run.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	flags.StringVarP(&processFlags.file, "file", "f", "", "Path to the member export (CSV)")
	flags.IntVar(&processFlags.month, "month", 0, "Month on the lists (1-12)")
	flags.IntVar(&processFlags.year, "year", 0, "Year on the lists")
	flags.IntVar(&processFlags.columns, "columns", 0, fmt.Sprintf("Number of date columns (%d-%d)", dates.MinColumnCount, dates.MaxColumnCount))
	flags.BoolVar(&processFlags.datedColumns, "dated-columns", false, "Label the date columns with consecutive days of the month")
	flags.StringVar(&processFlags.delimiter, "delimiter", "", `Field separator: ";", ",", "tab", "|" or "auto"`)
	flags.StringVar(&processFlags.encoding, "encoding", "", `Character encoding, e.g. "utf-8", "windows-1252" or "auto"`)
	flags.StringArrayVar(&processFlags.mappings, "map", nil, "Use a specific column for a field: field=column (repeatable)")
	flags.StringVar(&processFlags.filter, "filter", "", "Only lessons whose code or name contains this text")
	flags.BoolVar(&processFlags.print, "print", false, "Print the lists to the terminal")
	flags.BoolVar(&processFlags.perLeader, "per-leader", false, "Also write one workbook per leader")
	flags.BoolVar(&processFlags.dryRun, "dry-run", false, "Run the import without writing output files")

	processCmd.MarkFlagRequired("file")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command, out io.Writer) error {
	startTime := time.Now()
	logger := log.WithField("file", filepath.Base(processFlags.file))

	// =========================================================================
	// STEP 1: READ THE EXPORT
	// =========================================================================

	delimiterName := processFlags.delimiter
	if delimiterName == "" {
		delimiterName = appConfig.Delimiter
	}
	delimiter, err := csvparser.ParseDelimiter(delimiterName)
	if err != nil {
		return err
	}
	encoding := processFlags.encoding
	if encoding == "" {
		encoding = appConfig.Encoding
	}

	doc, err := csvparser.ParseFile(processFlags.file, csvparser.Options{Delimiter: delimiter, Encoding: encoding})
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"rows":      len(doc.Rows),
		"delimiter": string(doc.Delimiter),
		"encoding":  doc.Encoding,
	}).Debug("export read")

	// =========================================================================
	// STEP 2: RESOLVE LIST SETTINGS
	// =========================================================================

	s, registry, err := openRegistry()
	if err != nil {
		return err
	}

	prefs, err := trials.LoadPreferences(s)
	if err != nil {
		logger.WithError(err).Warn("could not read saved preferences")
	}
	settings := resolveSettings(cmd, prefs, appConfig, startTime)

	if settingsChanged(cmd) && !processFlags.dryRun {
		saved := trials.Preferences{Month: settings.month, Year: settings.year, Columns: settings.columns}
		if err := trials.SavePreferences(s, saved); err != nil {
			logger.WithError(err).Warn("could not save preferences")
		}
	}

	// =========================================================================
	// STEP 3: RUN THE IMPORT
	// =========================================================================

	overrides, err := parseColumnOverrides(processFlags.mappings)
	if err != nil {
		return err
	}

	result, runErr := importer.Run(doc, importer.Options{Overrides: overrides, Logger: logger})

	fmt.Fprintln(out, strings.TrimRight(result.Report.Format(), "\n"))
	if runErr != nil {
		return runErr
	}

	lessons := grouping.Filter(result.Grouped.Lessons, processFlags.filter)
	if len(lessons) == 0 {
		fmt.Fprintf(out, "\nGeen lessen gevonden voor %q.\n", processFlags.filter)
		return nil
	}

	renderOpts := export.Options{
		Month:        settings.month,
		Year:         settings.year,
		Columns:      settings.columns,
		DatedColumns: processFlags.datedColumns,
		Timestamp:    startTime,
	}
	lookup := registry.Lookup()

	// =========================================================================
	// STEP 4: PRINT THE LISTS
	// =========================================================================

	if processFlags.print {
		fmt.Fprintln(out)
		if err := printLessons(out, lessons, renderOpts, lookup); err != nil {
			return err
		}
	}

	if processFlags.dryRun {
		lists, members := memberTotals(lessons)
		fmt.Fprintf(out, "\n[DRY RUN] %d lijst(en) met %d leden voor %s; er is niets weggeschreven.\n",
			lists, members, dates.MonthTitle(settings.month, settings.year))
		return nil
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(appConfig.OutputDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	var written []string

	path, entries, err := writeArchive(fm, export.ZipFilename(settings.month, settings.year), func(w io.Writer) ([]string, error) {
		return export.AllLessonsZip(w, lessons, renderOpts, lookup)
	})
	switch {
	case errors.Is(err, export.ErrNoLessons):
		logger.Warn("no lessons with members; no lists written")
	case err != nil:
		return err
	default:
		written = append(written, path)
		logger.WithFields(log.Fields{"archive": path, "lists": len(entries)}).Info("lists written")
	}

	if processFlags.perLeader {
		path, entries, err := writeArchive(fm, export.PerLeaderZipFilename(settings.month, settings.year), func(w io.Writer) ([]string, error) {
			return export.PerLeaderZip(w, lessons, renderOpts, lookup)
		})
		switch {
		case errors.Is(err, export.ErrNoLessons), errors.Is(err, export.ErrNoLeaders):
			logger.WithError(err).Warn("no per-leader workbooks written")
		case err != nil:
			return err
		default:
			written = append(written, path)
			logger.WithFields(log.Fields{"archive": path, "leaders": len(entries)}).Info("per-leader workbooks written")
		}
	}

	reportPath, err := fm.WriteImportReport(importSummary(result, startTime, written), appConfig.ReportFile)
	if err != nil {
		return err
	}

	// =========================================================================
	// FINAL SUMMARY
	// =========================================================================

	fmt.Fprintln(out)
	for _, path := range written {
		fmt.Fprintf(out, "Geschreven: %s\n", path)
	}
	fmt.Fprintf(out, "Importrapport: %s\n", reportPath)
	logger.WithField("duration", time.Since(startTime)).Debug("process finished")

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// listSettings are the month, year and column count used for one run.
type listSettings struct {
	month   int
	year    int
	columns int
}

// resolveSettings picks each setting from the flags, then the saved
// preferences, then the config file, then now.
func resolveSettings(cmd *cobra.Command, prefs trials.Preferences, cfg *config.Config, now time.Time) listSettings {
	settings := listSettings{
		month:   int(now.Month()),
		year:    now.Year(),
		columns: dates.DefaultColumnCount,
	}

	if cfg.Month != 0 {
		settings.month = cfg.Month
	}
	if cfg.Year != 0 {
		settings.year = cfg.Year
	}
	if cfg.ColumnCount != 0 {
		settings.columns = cfg.ColumnCount
	}

	if prefs.Month != 0 {
		settings.month = prefs.Month
	}
	if prefs.Year != 0 {
		settings.year = prefs.Year
	}
	if prefs.Columns != 0 {
		settings.columns = prefs.Columns
	}

	flags := cmd.Flags()
	if flags.Changed("month") {
		settings.month = processFlags.month
	}
	if flags.Changed("year") {
		settings.year = processFlags.year
	}
	if flags.Changed("columns") {
		settings.columns = processFlags.columns
	}

	if settings.month < 1 || settings.month > 12 {
		settings.month = int(now.Month())
	}
	settings.columns = dates.ClampColumnCount(settings.columns)
	return settings
}

func settingsChanged(cmd *cobra.Command) bool {
	flags := cmd.Flags()
	return flags.Changed("month") || flags.Changed("year") || flags.Changed("columns")
}

// parseColumnOverrides reads --map values of the form field=column. The
// field may be given by key ("name2") or by any of its header aliases.
func parseColumnOverrides(values []string) (types.ColumnMapping, error) {
	if len(values) == 0 {
		return nil, nil
	}

	overrides := make(types.ColumnMapping, len(values))
	for _, value := range values {
		name, column, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map %q: expected field=column", value)
		}
		field, ok := lookupField(name)
		if !ok {
			return nil, fmt.Errorf("invalid --map %q: unknown field %q", value, strings.TrimSpace(name))
		}
		overrides[field] = strings.TrimSpace(column)
	}
	return overrides, nil
}

func lookupField(name string) (types.Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, field := range types.Fields {
		if string(field) == name {
			return field, true
		}
	}
	for _, field := range types.Fields {
		for _, alias := range mapping.Aliases(field) {
			if alias == name {
				return field, true
			}
		}
	}
	return "", false
}

// writeArchive writes an archive to a free path in the output directory.
func writeArchive(fm *utils.FileManager, name string, write func(io.Writer) ([]string, error)) (string, []string, error) {
	path := fm.OutputPath(name)
	entries, err := export.WriteZipFile(path, write)
	if err != nil {
		return "", nil, err
	}
	return path, entries, nil
}

func importSummary(result *importer.Result, start time.Time, written []string) utils.ImportSummary {
	return utils.ImportSummary{
		RunID:          result.ID,
		SourceFile:     processFlags.file,
		StartTime:      start,
		EndTime:        time.Now(),
		RowsRead:       result.Stats.RowsRead,
		RecordsKept:    result.Stats.RecordsKept,
		RowsDropped:    result.Stats.RowsDropped,
		Lessons:        result.Stats.Lessons,
		SkippedLessons: result.Stats.SkippedLessons,
		Errors:         result.Report.ErrorCount(),
		Warnings:       result.Report.WarningCount(),
		Issues:         result.Report.Format(),
		OutputFiles:    written,
	}
}
