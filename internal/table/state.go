// Package table holds the table state, the transitions that change it and
// the derived view the UI renders.
package table

import (
	"regexp"
	"strings"
)

// ColumnConfig describes one column. The JSON layout is what gets persisted.
type ColumnConfig struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Visible  bool   `json:"visible"`
	Sortable bool   `json:"sortable"`
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Theme is the UI color mode.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme maps "dark" to Dark and everything else to Light.
func ParseTheme(s string) Theme {
	if s == string(Dark) {
		return Dark
	}
	return Light
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// DefaultRowsPerPage is the initial page size.
const DefaultRowsPerPage = 10

// PageSizes are the page sizes offered by the UI.
var PageSizes = []int{5, 10, 25, 50}

// State is everything the table view is derived from.
type State struct {
	Rows          []Row
	Columns       []ColumnConfig
	SearchQuery   string
	SortColumn    string // empty when unsorted
	SortDirection Direction
	Page          int
	RowsPerPage   int
	EditingRowID  string // empty when no row is being edited
	Theme         Theme
}

// DefaultColumns returns the initial column set.
func DefaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: FieldName, Label: "Name", Visible: true, Sortable: true},
		{ID: FieldEmail, Label: "Email", Visible: true, Sortable: true},
		{ID: FieldAge, Label: "Age", Visible: true, Sortable: true},
		{ID: FieldRole, Label: "Role", Visible: true, Sortable: true},
		{ID: FieldDepartment, Label: "Department", Visible: false, Sortable: true},
		{ID: FieldLocation, Label: "Location", Visible: false, Sortable: true},
	}
}

// SeedRows returns the sample data set shown on a fresh start.
func SeedRows() []Row {
	return []Row{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Age: AgeOf(28), Role: "Developer", Department: "Engineering", Location: "New York"},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Age: AgeOf(32), Role: "Designer", Department: "Design", Location: "San Francisco"},
		{ID: "3", Name: "Bob Johnson", Email: "bob@example.com", Age: AgeOf(45), Role: "Manager", Department: "Management", Location: "Chicago"},
		{ID: "4", Name: "Alice Williams", Email: "alice@example.com", Age: AgeOf(26), Role: "Developer", Department: "Engineering", Location: "Boston"},
		{ID: "5", Name: "Charlie Brown", Email: "charlie@example.com", Age: AgeOf(35), Role: "Analyst", Department: "Analytics", Location: "Seattle"},
		{ID: "6", Name: "Diana Prince", Email: "diana@example.com", Age: AgeOf(29), Role: "Designer", Department: "Design", Location: "Los Angeles"},
		{ID: "7", Name: "Eve Davis", Email: "eve@example.com", Age: AgeOf(31), Role: "Developer", Department: "Engineering", Location: "Austin"},
		{ID: "8", Name: "Frank Miller", Email: "frank@example.com", Age: AgeOf(38), Role: "Manager", Department: "Management", Location: "Denver"},
		{ID: "9", Name: "Grace Lee", Email: "grace@example.com", Age: AgeOf(27), Role: "Analyst", Department: "Analytics", Location: "Portland"},
		{ID: "10", Name: "Henry Wilson", Email: "henry@example.com", Age: AgeOf(42), Role: "Developer", Department: "Engineering", Location: "Phoenix"},
		{ID: "11", Name: "Iris Taylor", Email: "iris@example.com", Age: AgeOf(30), Role: "Designer", Department: "Design", Location: "Miami"},
		{ID: "12", Name: "Jack Anderson", Email: "jack@example.com", Age: AgeOf(33), Role: "Manager", Department: "Management", Location: "Atlanta"},
	}
}

// DefaultState returns a fresh state with the given rows and default columns.
func DefaultState(rows []Row) State {
	return State{
		Rows:          rows,
		Columns:       DefaultColumns(),
		SortDirection: Asc,
		RowsPerPage:   DefaultRowsPerPage,
		Theme:         Light,
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Rows = cloneRows(s.Rows)
	out.Columns = cloneColumns(s.Columns)
	return out
}

// VisibleColumns returns the visible columns in display order.
func (s State) VisibleColumns() []ColumnConfig {
	return VisibleColumns(s.Columns)
}

// Column returns the column with the given id.
func (s State) Column(id string) (ColumnConfig, bool) {
	for _, c := range s.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return ColumnConfig{}, false
}

// Row returns the row with the given id.
func (s State) Row(id string) (Row, bool) {
	if i := indexOfRow(s.Rows, id); i >= 0 {
		return s.Rows[i], true
	}
	return Row{}, false
}

// VisibleColumns filters columns down to the visible ones, keeping order.
func VisibleColumns(columns []ColumnConfig) []ColumnConfig {
	out := make([]ColumnConfig, 0, len(columns))
	for _, c := range columns {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeColumnID lowercases an id and replaces whitespace runs with
// underscores.
func NormalizeColumnID(id string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(id)), "_")
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func cloneColumns(columns []ColumnConfig) []ColumnConfig {
	if columns == nil {
		return nil
	}
	out := make([]ColumnConfig, len(columns))
	copy(out, columns)
	return out
}

func indexOfRow(rows []Row, id string) int {
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}
