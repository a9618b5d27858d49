package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "datatable.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.GetRowsPerPage() != 10 {
		t.Errorf("rows per page = %d, want 10", cfg.GetRowsPerPage())
	}
	if got := cfg.GetPageSizes(); !slices.Equal(got, []int{5, 10, 25, 50}) {
		t.Errorf("page sizes = %v", got)
	}
	if !cfg.GetSeedData() {
		t.Error("seed data should default on")
	}
	if cfg.GetLogLevel() != log.InfoLevel {
		t.Errorf("log level = %v", cfg.GetLogLevel())
	}
	if got := cfg.GetLogFile(); got != filepath.Join(".datatable", "datatable.log") {
		t.Errorf("log file = %q", got)
	}
	if cfg.Path() != "" {
		t.Errorf("default config has a path: %q", cfg.Path())
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
name: team-table
data_dir: /var/lib/datatable
table:
  rows_per_page: 25
  seed_data: false
import:
  dir: ./incoming
export:
  dir: ./out
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "team-table" || cfg.GetDataDir() != "/var/lib/datatable" {
		t.Errorf("name/data_dir = %q/%q", cfg.Name, cfg.GetDataDir())
	}
	if cfg.GetRowsPerPage() != 25 || cfg.GetSeedData() {
		t.Errorf("table = %+v", cfg.Table)
	}
	if got := cfg.GetPageSizes(); !slices.Equal(got, []int{5, 10, 25, 50}) {
		t.Errorf("unset page sizes should keep defaults, got %v", got)
	}
	dir, pattern := cfg.GetImportSource()
	if dir != "./incoming" || pattern != "**/*.csv" {
		t.Errorf("import = %q %q", dir, pattern)
	}
	if cfg.GetExportDir() != "./out" {
		t.Errorf("export dir = %q", cfg.GetExportDir())
	}
	if cfg.GetLogLevel() != log.DebugLevel {
		t.Errorf("log level = %v", cfg.GetLogLevel())
	}
	if got := cfg.GetLogFile(); got != filepath.Join("/var/lib/datatable", "datatable.log") {
		t.Errorf("log file = %q", got)
	}
	if !filepath.IsAbs(cfg.Path()) {
		t.Errorf("path not absolute: %q", cfg.Path())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "table: [", wantErr: "failed to parse"},
		{name: "zero page size", content: "table:\n  rows_per_page: 0\n", wantErr: "rows_per_page"},
		{name: "negative page sizes", content: "table:\n  page_sizes: [5, -1]\n", wantErr: "page_sizes"},
		{name: "unknown log level", content: "log:\n  level: loud\n", wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "table:\n  rows_per_page: 5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	writeConfig(t, dir, "table:\n  rows_per_page: 50\n")
	if err := cfg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.GetRowsPerPage() != 50 {
		t.Errorf("rows per page = %d, want 50", cfg.GetRowsPerPage())
	}

	writeConfig(t, dir, "table:\n  rows_per_page: -3\n")
	if err := cfg.Reload(); err == nil {
		t.Error("expected error for invalid reload")
	}
	if cfg.GetRowsPerPage() != 50 {
		t.Errorf("failed reload changed values: %d", cfg.GetRowsPerPage())
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "table:\n  rows_per_page: 5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	reloaded := make(chan int, 4)
	w.OnReload(func(c *Config) { reloaded <- c.GetRowsPerPage() })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, dir, "table:\n  rows_per_page: 25\n")

	select {
	case n := <-reloaded:
		if n != 25 {
			t.Errorf("reloaded rows per page = %d, want 25", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatcher_NoPath(t *testing.T) {
	w, err := NewWatcher(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Errorf("Start without a config file: %v", err)
	}
	w.Stop()
	w.Stop()
}
