// Package prefs saves and restores the persisted table preferences (column
// configuration and theme) through a key-value store.
package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/johan-st/datatable/internal/table"
)

// Storage keys.
const (
	KeyColumns = "tableColumns"
	KeyTheme   = "tableTheme"
)

// KV is a string key-value store. Get reports false for a missing key.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Adapter reads and writes table preferences. A nil KV means storage is
// unavailable: loads find nothing and saves do nothing.
type Adapter struct {
	kv KV
}

// New creates an adapter over kv, which may be nil.
func New(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Available reports whether the adapter has a backing store.
func (a *Adapter) Available() bool {
	return a != nil && a.kv != nil
}

// LoadColumns returns the stored column configuration. It reports false when
// nothing is stored or the stored value cannot be read.
func (a *Adapter) LoadColumns() ([]table.ColumnConfig, bool) {
	raw, ok := a.get(KeyColumns)
	if !ok {
		return nil, false
	}
	var columns []table.ColumnConfig
	if err := json.Unmarshal([]byte(raw), &columns); err != nil {
		return nil, false
	}
	return columns, true
}

// LoadTheme returns the stored theme. Anything other than "dark" is light.
func (a *Adapter) LoadTheme() (table.Theme, bool) {
	raw, ok := a.get(KeyTheme)
	if !ok {
		return table.Light, false
	}
	return table.ParseTheme(raw), true
}

// Load merges stored preferences into s. Values that are missing or
// malformed leave the defaults in place.
func (a *Adapter) Load(s table.State) table.State {
	if columns, ok := a.LoadColumns(); ok {
		s.Columns = columns
	}
	if theme, ok := a.LoadTheme(); ok {
		s.Theme = theme
	}
	return s
}

// SaveColumns stores the entire column list.
func (a *Adapter) SaveColumns(columns []table.ColumnConfig) error {
	if !a.Available() {
		return nil
	}
	if columns == nil {
		columns = []table.ColumnConfig{}
	}
	data, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	if err := a.kv.Set(KeyColumns, string(data)); err != nil {
		return fmt.Errorf("save columns: %w", err)
	}
	return nil
}

// SaveTheme stores the theme.
func (a *Adapter) SaveTheme(theme table.Theme) error {
	if !a.Available() {
		return nil
	}
	if err := a.kv.Set(KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (a *Adapter) get(key string) (string, bool) {
	if !a.Available() {
		return "", false
	}
	raw, ok, err := a.kv.Get(key)
	if err != nil || !ok {
		return "", false
	}
	return raw, true
}
