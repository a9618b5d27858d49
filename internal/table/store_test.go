package table

import (
	"errors"
	"testing"
)

type recordingPersister struct {
	columns [][]ColumnConfig
	themes  []Theme
	err     error
}

func (p *recordingPersister) SaveColumns(columns []ColumnConfig) error {
	p.columns = append(p.columns, columns)
	return p.err
}

func (p *recordingPersister) SaveTheme(theme Theme) error {
	p.themes = append(p.themes, theme)
	return p.err
}

func newTestStore(t *testing.T) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	return NewStore(DefaultState(SeedRows()), WithPersister(p)), p
}

func TestStore_SearchResetsPage(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetPage(3)
	s.SetSearchQuery("")

	if got := s.Snapshot().Page; got != 0 {
		t.Errorf("Page = %d after SetSearchQuery, want 0", got)
	}
}

func TestStore_RowsPerPageResetsPage(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetPage(1)
	s.SetRowsPerPage(25)

	st := s.Snapshot()
	if st.Page != 0 || st.RowsPerPage != 25 {
		t.Errorf("got page=%d rowsPerPage=%d, want 0 and 25", st.Page, st.RowsPerPage)
	}
}

func TestStore_SetPageNotClamped(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetPage(99)
	if got := s.Snapshot().Page; got != 99 {
		t.Errorf("Page = %d, want 99", got)
	}
	if v := s.View(); len(v.Rows) != 0 || v.Total != 12 {
		t.Errorf("view = %d rows / total %d, want 0 / 12", len(v.Rows), v.Total)
	}
}

func TestStore_ToggleSortDirection(t *testing.T) {
	s, _ := newTestStore(t)

	steps := []struct {
		column  string
		wantCol string
		wantDir Direction
	}{
		{FieldAge, FieldAge, Asc},
		{FieldAge, FieldAge, Desc},
		{FieldName, FieldName, Asc},
		{FieldName, FieldName, Desc},
		{FieldName, FieldName, Asc},
	}

	for i, step := range steps {
		s.ToggleSortDirection(step.column)
		st := s.Snapshot()
		if st.SortColumn != step.wantCol || st.SortDirection != step.wantDir {
			t.Fatalf("step %d: got %s/%s, want %s/%s", i, st.SortColumn, st.SortDirection, step.wantCol, step.wantDir)
		}
	}
}

func TestStore_SetSorting(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetSorting(FieldEmail, Desc)
	st := s.Snapshot()
	if st.SortColumn != FieldEmail || st.SortDirection != Desc {
		t.Errorf("got %s/%s", st.SortColumn, st.SortDirection)
	}
}

func TestStore_ToggleColumnVisibilityIsIdempotentPair(t *testing.T) {
	s, p := newTestStore(t)
	before, _ := s.Snapshot().Column(FieldDepartment)

	s.ToggleColumnVisibility(FieldDepartment)
	mid, _ := s.Snapshot().Column(FieldDepartment)
	if mid.Visible == before.Visible {
		t.Fatalf("first toggle did not change visibility")
	}

	s.ToggleColumnVisibility(FieldDepartment)
	after, _ := s.Snapshot().Column(FieldDepartment)
	if after.Visible != before.Visible {
		t.Errorf("visibility after two toggles = %v, want %v", after.Visible, before.Visible)
	}

	if len(p.columns) != 2 {
		t.Fatalf("expected 2 column saves, got %d", len(p.columns))
	}
	if len(p.columns[0]) != len(DefaultColumns()) {
		t.Errorf("expected the full column list to be saved, got %d columns", len(p.columns[0]))
	}
}

func TestStore_ToggleUnknownColumnIsNoop(t *testing.T) {
	s, p := newTestStore(t)
	s.ToggleColumnVisibility("nope")
	if len(p.columns) != 0 {
		t.Errorf("unknown column must not persist, got %d saves", len(p.columns))
	}
}

func TestStore_AddColumn(t *testing.T) {
	s, p := newTestStore(t)
	s.AddColumn("  Start Date ", "Start date")

	st := s.Snapshot()
	last := st.Columns[len(st.Columns)-1]
	want := ColumnConfig{ID: "start_date", Label: "Start date", Visible: true, Sortable: true}
	if last != want {
		t.Errorf("added column = %+v, want %+v", last, want)
	}
	if len(p.columns) != 1 {
		t.Errorf("expected one save, got %d", len(p.columns))
	}
}

func TestStore_AddColumnCollision(t *testing.T) {
	s, p := newTestStore(t)
	s.AddColumn(FieldName, "X")

	st := s.Snapshot()
	if len(st.Columns) != len(DefaultColumns()) {
		t.Errorf("column count = %d, want %d", len(st.Columns), len(DefaultColumns()))
	}
	if c, _ := st.Column(FieldName); c.Label != "Name" {
		t.Errorf("existing label changed to %q", c.Label)
	}
	if len(p.columns) != 0 {
		t.Errorf("collision must not persist")
	}
}

func TestStore_AddColumnEdgeCases(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddColumn("   ", "Blank")
	if n := len(s.Snapshot().Columns); n != len(DefaultColumns()) {
		t.Errorf("blank id added a column")
	}

	s.AddColumn("salary", "")
	c, ok := s.Snapshot().Column("salary")
	if !ok || c.Label != "salary" {
		t.Errorf("expected label to fall back to id, got %+v", c)
	}
}

func TestStore_RowLifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	id := s.AddRow(Row{Name: "Kim"})
	if id == "" {
		t.Fatal("expected generated id")
	}
	st := s.Snapshot()
	if st.Rows[len(st.Rows)-1].ID != id {
		t.Fatalf("row not appended")
	}

	s.UpdateRow(Row{ID: "3", Name: "Robert Johnson", Age: AgeOf(46)})
	st = s.Snapshot()
	if st.Rows[2].ID != "3" || st.Rows[2].Name != "Robert Johnson" {
		t.Errorf("update did not replace in place: %+v", st.Rows[2])
	}

	s.UpdateRow(Row{ID: "missing", Name: "Ghost"})
	if len(s.Snapshot().Rows) != 13 {
		t.Errorf("update of unknown id changed row count")
	}

	s.DeleteRow("3")
	s.DeleteRow("missing")
	st = s.Snapshot()
	if len(st.Rows) != 12 {
		t.Errorf("row count = %d, want 12", len(st.Rows))
	}
	if _, ok := st.Row("3"); ok {
		t.Errorf("row 3 still present")
	}
}

func TestStore_DeleteClearsEditingRow(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetEditingRowID("4")
	s.DeleteRow("5")
	if got := s.Snapshot().EditingRowID; got != "4" {
		t.Fatalf("deleting another row cleared editing id: %q", got)
	}

	s.DeleteRow("4")
	if got := s.Snapshot().EditingRowID; got != "" {
		t.Errorf("EditingRowID = %q after deleting it, want empty", got)
	}
}

func TestStore_SetDataReplacesAndClearsStaleEdit(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetEditingRowID("1")
	s.SetData([]Row{{ID: "x", Name: "Only"}})

	st := s.Snapshot()
	if len(st.Rows) != 1 || st.Rows[0].ID != "x" {
		t.Errorf("rows = %v", rowIDs(st.Rows))
	}
	if st.EditingRowID != "" {
		t.Errorf("stale editing id kept: %q", st.EditingRowID)
	}
}

func TestStore_EditingRowReplaced(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetEditingRowID("1")
	s.SetEditingRowID("2")
	if got := s.Snapshot().EditingRowID; got != "2" {
		t.Errorf("EditingRowID = %q, want 2", got)
	}
	s.SetEditingRowID("")
	if got := s.Snapshot().EditingRowID; got != "" {
		t.Errorf("EditingRowID = %q, want empty", got)
	}
}

func TestStore_Theme(t *testing.T) {
	s, p := newTestStore(t)
	s.ToggleTheme()
	if got := s.Snapshot().Theme; got != Dark {
		t.Fatalf("Theme = %s, want dark", got)
	}
	s.SetTheme(Theme("sepia"))
	if got := s.Snapshot().Theme; got != Light {
		t.Errorf("unknown theme = %s, want light", got)
	}
	if len(p.themes) != 2 || p.themes[0] != Dark || p.themes[1] != Light {
		t.Errorf("saved themes = %v", p.themes)
	}
}

func TestStore_PersistFailureIsSwallowed(t *testing.T) {
	p := &recordingPersister{err: errors.New("quota exceeded")}
	s := NewStore(DefaultState(nil), WithPersister(p))

	s.ToggleTheme()
	s.AddColumn("salary", "Salary")

	st := s.Snapshot()
	if st.Theme != Dark {
		t.Errorf("in-memory theme not applied")
	}
	if _, ok := st.Column("salary"); !ok {
		t.Errorf("in-memory column not applied")
	}
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	st := s.Snapshot()
	st.Rows[0].Name = "Mutated"
	st.Columns[0].Label = "Mutated"
	*st.Rows[0].Age = 99

	fresh := s.Snapshot()
	if fresh.Rows[0].Name == "Mutated" || fresh.Columns[0].Label == "Mutated" || *fresh.Rows[0].Age == 99 {
		t.Errorf("snapshot shares memory with the store")
	}
}

func TestStore_Subscribe(t *testing.T) {
	s, _ := newTestStore(t)

	var calls []string
	unsubscribe := s.Subscribe(func(st State) { calls = append(calls, st.SearchQuery) })
	s.Subscribe(func(State) { calls = append(calls, "second") })

	s.SetSearchQuery("ann")
	if len(calls) != 2 || calls[0] != "ann" || calls[1] != "second" {
		t.Fatalf("calls = %v", calls)
	}

	unsubscribe()
	s.SetSearchQuery("bo")
	if len(calls) != 3 || calls[2] != "second" {
		t.Errorf("calls after unsubscribe = %v", calls)
	}
}

func TestStore_Close(t *testing.T) {
	s, p := newTestStore(t)
	called := false
	s.Subscribe(func(State) { called = true })

	s.Close()
	s.ToggleTheme()

	if called {
		t.Errorf("subscriber called after Close")
	}
	if s.Snapshot().Theme != Light || len(p.themes) != 0 {
		t.Errorf("transition applied after Close")
	}
}
