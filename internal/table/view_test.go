package table

import (
	"slices"
	"testing"
)

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps all", query: "", want: rowIDs(SeedRows())},
		{name: "case insensitive", query: "JANE", want: []string{"2"}},
		{name: "hidden column still searched", query: "seattle", want: []string{"5"}},
		{name: "numeric field", query: "45", want: []string{"3"}},
		{name: "id field", query: "12", want: []string{"12"}},
		{name: "no match", query: "zebra", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowIDs(Filter(SeedRows(), tt.query))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilter_ExtraFieldsAndNulls(t *testing.T) {
	rows := []Row{
		{ID: "a", Extra: map[string]Value{"team": String("Platform")}},
		{ID: "b", Age: nil},
	}

	if got := rowIDs(Filter(rows, "platform")); !slices.Equal(got, []string{"a"}) {
		t.Errorf("expected extra field to match, got %v", got)
	}
	if got := rowIDs(Filter(rows, "null")); len(got) != 0 {
		t.Errorf("null values must not match, got %v", got)
	}
}

func TestSortRows_NullsLast(t *testing.T) {
	rows := func() []Row {
		return []Row{
			{ID: "1", Age: nil},
			{ID: "2", Age: AgeOf(5)},
			{ID: "3", Age: nil},
		}
	}

	for _, dir := range []Direction{Asc, Desc} {
		t.Run(string(dir), func(t *testing.T) {
			got := rows()
			SortRows(got, FieldAge, dir)
			if ids := rowIDs(got); !slices.Equal(ids, []string{"2", "1", "3"}) {
				t.Errorf("sort %s = %v, want [2 1 3]", dir, ids)
			}
		})
	}
}

func TestSortRows_MissingExtraSortsLast(t *testing.T) {
	rows := []Row{
		{ID: "1"},
		{ID: "2", Extra: map[string]Value{"salary": Number(10)}},
		{ID: "3", Extra: map[string]Value{"salary": Number(2)}},
	}
	SortRows(rows, "salary", Desc)
	if ids := rowIDs(rows); !slices.Equal(ids, []string{"2", "3", "1"}) {
		t.Errorf("got %v, want [2 3 1]", ids)
	}
}

func TestSortRows_Numeric(t *testing.T) {
	rows := SeedRows()
	SortRows(rows, FieldAge, Asc)
	for i := 1; i < len(rows); i++ {
		if *rows[i-1].Age > *rows[i].Age {
			t.Fatalf("ages out of order at %d: %d > %d", i, *rows[i-1].Age, *rows[i].Age)
		}
	}

	SortRows(rows, FieldAge, Desc)
	if rows[0].ID != "3" {
		t.Errorf("oldest first in desc order, got id %s", rows[0].ID)
	}
}

func TestSortRows_NumbersCompareNumerically(t *testing.T) {
	rows := []Row{
		{ID: "a", Extra: map[string]Value{"n": Number(10)}},
		{ID: "b", Extra: map[string]Value{"n": Number(9)}},
	}
	SortRows(rows, "n", Asc)
	if rows[0].ID != "b" {
		t.Errorf("expected 9 before 10, got %v", rowIDs(rows))
	}
}

func TestSortRows_StringsLocaleAware(t *testing.T) {
	rows := []Row{
		{ID: "1", Name: "bob"},
		{ID: "2", Name: "Alice"},
		{ID: "3", Name: "Émile"},
		{ID: "4", Name: "eve"},
	}
	SortRows(rows, FieldName, Asc)
	want := []string{"2", "1", "3", "4"}
	if ids := rowIDs(rows); !slices.Equal(ids, want) {
		t.Errorf("got %v, want %v", ids, want)
	}
}

func TestSortRows_Stable(t *testing.T) {
	rows := SeedRows()
	SortRows(rows, FieldRole, Asc)
	var developers []string
	for _, r := range rows {
		if r.Role == "Developer" {
			developers = append(developers, r.ID)
		}
	}
	want := []string{"1", "4", "7", "10"}
	if !slices.Equal(developers, want) {
		t.Errorf("equal keys reordered: got %v, want %v", developers, want)
	}
}

func TestPaginate(t *testing.T) {
	rows := SeedRows()
	tests := []struct {
		name          string
		page, perPage int
		want          []string
	}{
		{name: "first page", page: 0, perPage: 5, want: []string{"1", "2", "3", "4", "5"}},
		{name: "last partial page", page: 1, perPage: 10, want: []string{"11", "12"}},
		{name: "out of range", page: 5, perPage: 10, want: []string{}},
		{name: "negative page", page: -1, perPage: 10, want: []string{}},
		{name: "zero size", page: 0, perPage: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowIDs(Paginate(rows, tt.page, tt.perPage))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Paginate(%d, %d) = %v, want %v", tt.page, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestDerive_TotalIgnoresPage(t *testing.T) {
	s := DefaultState(SeedRows())
	s.RowsPerPage = 10
	s.Page = 5

	v := Derive(s)
	if len(v.Rows) != 0 {
		t.Errorf("expected empty page, got %d rows", len(v.Rows))
	}
	if v.Total != 12 {
		t.Errorf("Total = %d, want 12", v.Total)
	}
	if v.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", v.PageCount)
	}
}

func TestDerive_Pipeline(t *testing.T) {
	s := DefaultState(SeedRows())
	s.SearchQuery = "developer"
	s.SortColumn = FieldAge
	s.SortDirection = Desc
	s.RowsPerPage = 2

	v := Derive(s)
	if v.Total != 4 {
		t.Fatalf("Total = %d, want 4", v.Total)
	}
	if ids := rowIDs(v.Rows); !slices.Equal(ids, []string{"10", "7"}) {
		t.Errorf("page 0 = %v, want [10 7]", ids)
	}
	if len(v.Columns) != 4 {
		t.Errorf("expected 4 visible columns, got %d", len(v.Columns))
	}
}

func TestDerive_DoesNotReorderState(t *testing.T) {
	s := DefaultState(SeedRows())
	s.SortColumn = FieldName
	Derive(s)
	if ids := rowIDs(s.Rows); !slices.Equal(ids, rowIDs(SeedRows())) {
		t.Errorf("Derive mutated state rows: %v", ids)
	}
}
