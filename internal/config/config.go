// Package config handles configuration file parsing and hot-reloading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/johan-st/datatable/internal/table"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Name string `yaml:"name"`

	// Directory for the state database and log file
	DataDir string `yaml:"data_dir"`

	Table  TableConfig  `yaml:"table"`
	Import ImportConfig `yaml:"import"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`

	// Internal: path to the config file
	path string

	// Internal: last modified time
	modTime time.Time

	mu sync.RWMutex
}

// TableConfig contains table defaults.
type TableConfig struct {
	RowsPerPage int   `yaml:"rows_per_page"`
	PageSizes   []int `yaml:"page_sizes"`

	// Start with the sample rows when nothing is imported
	SeedData bool `yaml:"seed_data"`
}

// ImportConfig says where CSV files are looked for.
type ImportConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// ExportConfig says where exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`

	// Log file used while the terminal UI runs; relative to data_dir
	File string `yaml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "datatable",
		DataDir: ".datatable",
		Table: TableConfig{
			RowsPerPage: table.DefaultRowsPerPage,
			PageSizes:   slices.Clone(table.PageSizes),
			SeedData:    true,
		},
		Import: ImportConfig{
			Dir:     ".",
			Pattern: "**/*.csv",
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level: "info",
			File:  "datatable.log",
		},
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	cfg, err := parseFile(absPath)
	if err != nil {
		return nil, err
	}
	cfg.path = absPath

	// Get file modification time
	info, err := os.Stat(absPath)
	if err == nil {
		cfg.modTime = info.ModTime()
	}

	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

// validate checks values and fills in the ones left empty.
func (c *Config) validate() error {
	if c.Table.RowsPerPage <= 0 {
		return fmt.Errorf("table.rows_per_page must be positive, got %d", c.Table.RowsPerPage)
	}
	for _, n := range c.Table.PageSizes {
		if n <= 0 {
			return fmt.Errorf("table.page_sizes must be positive, got %d", n)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if len(c.Table.PageSizes) == 0 {
		c.Table.PageSizes = slices.Clone(table.PageSizes)
	}
	if c.DataDir == "" {
		c.DataDir = ".datatable"
	}
	if c.Import.Dir == "" {
		c.Import.Dir = "."
	}
	if c.Import.Pattern == "" {
		c.Import.Pattern = "**/*.csv"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
	return nil
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Reload reloads the configuration from disk. On error the current values
// are kept.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	newCfg, err := parseFile(c.path)
	if err != nil {
		return err
	}

	// Update fields
	c.Name = newCfg.Name
	c.DataDir = newCfg.DataDir
	c.Table = newCfg.Table
	c.Import = newCfg.Import
	c.Export = newCfg.Export
	c.Log = newCfg.Log

	// Update mod time
	info, err := os.Stat(c.path)
	if err == nil {
		c.modTime = info.ModTime()
	}

	return nil
}

// HasChanged checks if the config file has been modified.
func (c *Config) HasChanged() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(c.modTime)
}

// GetDataDir returns the data directory path.
func (c *Config) GetDataDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DataDir
}

// GetRowsPerPage returns the initial page size.
func (c *Config) GetRowsPerPage() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Table.RowsPerPage
}

// GetPageSizes returns the page sizes the UI cycles through.
func (c *Config) GetPageSizes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.Table.PageSizes)
}

// GetSeedData reports whether to start with the sample rows.
func (c *Config) GetSeedData() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Table.SeedData
}

// GetImportSource returns the import directory and file pattern.
func (c *Config) GetImportSource() (dir, pattern string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Import.Dir, c.Import.Pattern
}

// GetExportDir returns the export directory.
func (c *Config) GetExportDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Export.Dir
}

// GetLogLevel returns the configured log level, defaulting to info.
func (c *Config) GetLogLevel() log.Level {
	c.mu.RLock()
	defer c.mu.RUnlock()

	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// GetLogFile returns the log file path, resolved against the data directory.
func (c *Config) GetLogFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, c.Log.File)
}
