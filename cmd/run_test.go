package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProcessDryRunDetectsCommaDelimiter(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "leden.csv")
	content := "coursecode,course,name2,function\n" +
		"L01,Yoga,Ann,Leiding\n" +
		"L01,Yoga,Bob,\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	t.Setenv("PRESENTIELIJST_STORE_FILE", filepath.Join(dir, "store.yaml"))
	t.Setenv("PRESENTIELIJST_OUTPUT_DIR", filepath.Join(dir, "output"))

	saved := processFlags
	t.Cleanup(func() { processFlags = saved })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"process", "--file", csvPath, "--dry-run",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("process: %v\n%s", err, out.String())
	}
	if appConfig.Delimiter != "auto" {
		t.Errorf("default delimiter = %q, want auto", appConfig.Delimiter)
	}
	if !strings.Contains(out.String(), "[DRY RUN] 1 lijst(en)") {
		t.Errorf("output missing dry run summary:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "output")); !os.IsNotExist(err) {
		t.Errorf("dry run created the output directory")
	}
}
