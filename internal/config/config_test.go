package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presentielijst.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if cfg.Delimiter != "auto" || cfg.ColumnCount != 4 || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
output_dir: ./lijsten
delimiter: ","
month: 9
year: 2025
column_count: 8
log_format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OutputDir != "./lijsten" || cfg.Delimiter != "," || cfg.Month != 9 ||
		cfg.Year != 2025 || cfg.ColumnCount != 8 || cfg.LogFormat != "json" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.StoreFile != "./presentielijst-data.yaml" {
		t.Errorf("StoreFile default not applied: %q", cfg.StoreFile)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "month: 3\noutput_dir: ./from-file\n")
	t.Setenv("PRESENTIELIJST_MONTH", "11")
	t.Setenv("PRESENTIELIJST_OUTPUT_DIR", "./from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Month != 11 || cfg.OutputDir != "./from-env" {
		t.Errorf("env override not applied: %+v", cfg)
	}
}

func TestLoadInvalidEnvValue(t *testing.T) {
	t.Setenv("PRESENTIELIJST_COLUMN_COUNT", "veel")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil ||
		!strings.Contains(err.Error(), "PRESENTIELIJST_COLUMN_COUNT") {
		t.Errorf("Load() error = %v, want mention of the variable", err)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "month: [1, 2\n")
	if _, err := Load(path); err == nil {
		t.Errorf("Load() should fail on malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"auto delimiter", func(c *Config) { c.Delimiter = "auto" }, ""},
		{"tab delimiter", func(c *Config) { c.Delimiter = "tab" }, ""},
		{"bad delimiter", func(c *Config) { c.Delimiter = ";;" }, "delimiter"},
		{"month", func(c *Config) { c.Month = 13 }, "month"},
		{"year", func(c *Config) { c.Year = -1 }, "year"},
		{"columns", func(c *Config) { c.ColumnCount = 41 }, "column_count"},
		{"level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
