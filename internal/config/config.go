// =============================================================================
// Presentielijst - Configuration Module
// =============================================================================
//
// Loads the application configuration. Values are resolved in this order,
// later sources winning:
//
//   1. Built-in defaults
//   2. The YAML file given with --config (default: presentielijst.yaml)
//   3. PRESENTIELIJST_* environment variables, optionally from a .env file
//
// A missing config file is not an error; the defaults are used instead.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/presentielijst/internal/csvparser"
	"github.com/ginjaninja78/presentielijst/internal/dates"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "presentielijst.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PRESENTIELIJST_"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application settings.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir receives the generated workbooks, archives and reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`

	// StoreFile holds trial participants and saved preferences.
	// Default: "./presentielijst-data.yaml"
	StoreFile string `yaml:"store_file" env:"STORE_FILE"`

	// =========================================================================
	// IMPORT SETTINGS
	// =========================================================================

	// Delimiter of the member export. "auto" sniffs it from the first lines.
	// Default: "auto"
	Delimiter string `yaml:"delimiter" env:"DELIMITER"`

	// Encoding of the member export: "auto", "utf-8", "windows-1252", ...
	// Default: "auto"
	Encoding string `yaml:"encoding" env:"ENCODING"`

	// =========================================================================
	// LIST SETTINGS
	// =========================================================================

	// Month and Year of the lists. Zero means the current month or year.
	Month int `yaml:"month" env:"MONTH"`
	Year  int `yaml:"year" env:"YEAR"`

	// ColumnCount is the number of date columns on each list.
	// Default: 4
	ColumnCount int `yaml:"column_count" env:"COLUMN_COUNT"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is any level logrus understands.
	// Default: "info"
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	// LogFile receives the log output. Empty means stderr.
	LogFile string `yaml:"log_file" env:"LOG_FILE"`

	// ReportFile is the name of the import report written next to the lists.
	// Default: "importrapport.txt"
	ReportFile string `yaml:"report_file" env:"REPORT_FILE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - path: The YAML file to read. A missing file yields the defaults.
//
// RETURNS:
//   - The resolved configuration.
//   - An error if the file cannot be parsed or a value is invalid.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WithField("config", path).Debug("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads path into the environment when it exists. Variables that
// are already set are kept.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields that carry an env tag with the matching
// PRESENTIELIJST_* variable.
func applyEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		name = EnvPrefix + name
		value, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}

		target := v.Field(i)
		switch target.Kind() {
		case reflect.String:
			target.SetString(value)
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
			}
			target.SetInt(int64(n))
		default:
			return fmt.Errorf("unsupported field type for %s: %s", name, target.Kind())
		}
	}

	return nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.StoreFile == "" {
		cfg.StoreFile = "./presentielijst-data.yaml"
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = "auto"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = csvparser.EncodingAuto
	}
	if cfg.ColumnCount == 0 {
		cfg.ColumnCount = dates.DefaultColumnCount
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.ReportFile == "" {
		cfg.ReportFile = "importrapport.txt"
	}
}

// Validate checks every option and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := csvparser.ParseDelimiter(c.Delimiter); err != nil {
		problems = append(problems, fmt.Sprintf("delimiter: %v", err))
	}
	if c.Month < 0 || c.Month > 12 {
		problems = append(problems, fmt.Sprintf("month must be 1-12, got %d", c.Month))
	}
	if c.Year < 0 {
		problems = append(problems, fmt.Sprintf("year must be positive, got %d", c.Year))
	}
	if c.ColumnCount < dates.MinColumnCount || c.ColumnCount > dates.MaxColumnCount {
		problems = append(problems, fmt.Sprintf("column_count must be %d-%d, got %d",
			dates.MinColumnCount, dates.MaxColumnCount, c.ColumnCount))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level: %v", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("log_format must be text or json, got %q", c.LogFormat))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
