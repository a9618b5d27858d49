package table

import "testing"

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := DefaultState(SeedRows())
	before := s.Clone()

	Reduce(s, DeleteRow{ID: "1"})
	Reduce(s, ToggleColumnVisibility{ID: FieldName})
	Reduce(s, UpdateRow{Row: Row{ID: "2", Name: "Changed"}})

	if s.Rows[0].ID != before.Rows[0].ID || s.Rows[1].Name != before.Rows[1].Name {
		t.Errorf("rows mutated")
	}
	if s.Columns[0].Visible != before.Columns[0].Visible {
		t.Errorf("columns mutated")
	}
}

func TestReduce_Effects(t *testing.T) {
	s := DefaultState(nil)
	tests := []struct {
		name   string
		action Action
		want   Effect
	}{
		{"search", SetSearchQuery{Query: "x"}, 0},
		{"toggle column", ToggleColumnVisibility{ID: FieldRole}, PersistColumns},
		{"add column", AddColumn{ID: "salary", Label: "Salary"}, PersistColumns},
		{"duplicate column", AddColumn{ID: FieldRole, Label: "Role"}, 0},
		{"toggle theme", ToggleTheme{}, PersistTheme},
		{"set theme", SetTheme{Theme: Dark}, PersistTheme},
		{"page", SetPage{Page: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := Reduce(s, tt.action); got != tt.want {
				t.Errorf("effect = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestReduce_SetSorting(t *testing.T) {
	s := DefaultState(SeedRows())

	got, eff := Reduce(s, SetSorting{Column: FieldAge, Direction: Desc})
	if got.SortColumn != FieldAge || got.SortDirection != Desc {
		t.Errorf("sort = %q %v, want age desc", got.SortColumn, got.SortDirection)
	}
	if eff != 0 {
		t.Errorf("effect = %b, want none", eff)
	}
}
