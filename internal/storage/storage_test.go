package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/johan-st/datatable/internal/prefs"
	"github.com/johan-st/datatable/internal/table"
)

var _ prefs.KV = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestStore_KV(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	if err := s.Set("tableTheme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("tableTheme", "light"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, ok, err := s.Get("tableTheme")
	if err != nil || !ok || got != "light" {
		t.Errorf("Get = %q, %v, %v; want light", got, ok, err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	a := prefs.New(s)
	cols := append(table.DefaultColumns(), table.ColumnConfig{ID: "salary", Label: "Salary", Visible: true, Sortable: true})
	if err := a.SaveColumns(cols); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	loaded, ok := prefs.New(s).LoadColumns()
	if !ok || len(loaded) != 7 || loaded[6].ID != "salary" {
		t.Errorf("columns after reopen = %+v, %v", loaded, ok)
	}
}

func TestStore_Audit(t *testing.T) {
	s := openTestStore(t)

	if err := s.RecordAudit("import", map[string]any{"rows": 3, "file": "a.csv"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAudit("export", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAudit("import", map[string]any{"rows": 5}); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListAudit("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Action != "import" || all[1].Action != "export" {
		t.Errorf("expected newest first, got %s, %s", all[0].Action, all[1].Action)
	}

	imports, err := s.ListAudit("import", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(imports) != 1 {
		t.Fatalf("limit not applied: %d", len(imports))
	}
	var details map[string]any
	if err := json.Unmarshal([]byte(imports[0].Details), &details); err != nil {
		t.Fatalf("details: %v", err)
	}
	if details["rows"] != float64(5) {
		t.Errorf("details = %v", details)
	}
	if all[1].Details != "" {
		t.Errorf("nil details stored as %q", all[1].Details)
	}
}
