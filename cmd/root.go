// =============================================================================
// Presentielijst - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (presentielijst)
//   ├── processCmd (presentielijst process)
//   ├── columnsCmd (presentielijst columns)
//   ├── trialsCmd  (presentielijst trials add|list|update|remove)
//   └── versionCmd (presentielijst version)
//
// Before any subcommand runs, the root command loads the configuration and
// sets up logging.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presentielijst/internal/config"
	"github.com/ginjaninja78/presentielijst/internal/store"
	"github.com/ginjaninja78/presentielijst/internal/trials"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// appConfig is loaded once before a subcommand runs.
var appConfig *config.Config

// logOutput is the open log file, if any.
var logOutput io.Closer

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "presentielijst",
	Short: "Presentielijst - Build printable attendance lists from a member export",
	Long: `Presentielijst reads the semicolon- or comma-separated member export of the
club administration and turns it into one printable attendance list per
lesson.

Key Features:
  - Automatic column detection, with manual overrides
  - Leaders, assistants and members grouped per lesson
  - Trial participants kept between runs
  - Excel lists per lesson, bundled in a ZIP, or one workbook per leader
  - An import report listing every problem found in the export

Example Usage:
  presentielijst process --file leden.csv --month 9 --year 2025
  presentielijst columns --file leden.csv
  presentielijst trials add --lesson L01 --name "Tom" --count 1`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return setupLogging(cfg, verbose)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOutput != nil {
			logOutput.Close()
			logOutput = nil
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// setupLogging configures the standard logrus logger from cfg.
func setupLogging(cfg *config.Config, verbose bool) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.LogFile == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)
	logOutput = file
	return nil
}

// openRegistry opens the configured store and the trial registry on top of it.
func openRegistry() (*store.File, *trials.Registry, error) {
	s, err := store.OpenFile(appConfig.StoreFile)
	if err != nil {
		return nil, nil, err
	}
	logger := log.WithField("store", s.Path())
	return s, trials.NewRegistry(s, logger), nil
}
