package table

import "slices"

// Action is a state transition. The set of Action types is the whole
// mutation surface of the table.
type Action interface {
	action()
}

type (
	SetData                struct{ Rows []Row }
	AddRow                 struct{ Row Row }
	UpdateRow              struct{ Row Row }
	DeleteRow              struct{ ID string }
	SetSearchQuery         struct{ Query string }
	ToggleSortDirection    struct{ Column string }
	SetPage                struct{ Page int }
	SetRowsPerPage         struct{ RowsPerPage int }
	ToggleColumnVisibility struct{ ID string }
	AddColumn              struct{ ID, Label string }
	SetEditingRowID        struct{ ID string }
	ToggleTheme            struct{}
	SetTheme               struct{ Theme Theme }
)

type SetSorting struct {
	Column    string
	Direction Direction
}

func (SetData) action()                {}
func (AddRow) action()                 {}
func (UpdateRow) action()              {}
func (DeleteRow) action()              {}
func (SetSearchQuery) action()         {}
func (SetSorting) action()             {}
func (ToggleSortDirection) action()    {}
func (SetPage) action()                {}
func (SetRowsPerPage) action()         {}
func (ToggleColumnVisibility) action() {}
func (AddColumn) action()              {}
func (SetEditingRowID) action()        {}
func (ToggleTheme) action()            {}
func (SetTheme) action()               {}

// Effect tells the caller which persisted values a transition changed.
type Effect uint8

const (
	PersistColumns Effect = 1 << iota
	PersistTheme
)

// Has reports whether e includes f.
func (e Effect) Has(f Effect) bool { return e&f != 0 }

// Reduce applies an action to a state and returns the new state. The input
// state is never modified; slices that change are copied first. Actions that
// do not apply (unknown ids, duplicate columns) return the state unchanged
// and no effect.
func Reduce(s State, a Action) (State, Effect) {
	switch a := a.(type) {
	case SetData:
		s.Rows = cloneRows(a.Rows)
		if s.EditingRowID != "" && indexOfRow(s.Rows, s.EditingRowID) < 0 {
			s.EditingRowID = ""
		}
		return s, 0

	case AddRow:
		rows := make([]Row, len(s.Rows), len(s.Rows)+1)
		copy(rows, s.Rows)
		s.Rows = append(rows, a.Row.Clone())
		return s, 0

	case UpdateRow:
		i := indexOfRow(s.Rows, a.Row.ID)
		if i < 0 {
			return s, 0
		}
		rows := slices.Clone(s.Rows)
		rows[i] = a.Row.Clone()
		s.Rows = rows
		return s, 0

	case DeleteRow:
		i := indexOfRow(s.Rows, a.ID)
		if i < 0 {
			return s, 0
		}
		s.Rows = slices.Delete(slices.Clone(s.Rows), i, i+1)
		if s.EditingRowID == a.ID {
			s.EditingRowID = ""
		}
		return s, 0

	case SetSearchQuery:
		s.SearchQuery = a.Query
		s.Page = 0
		return s, 0

	case SetSorting:
		s.SortColumn = a.Column
		s.SortDirection = a.Direction
		return s, 0

	case ToggleSortDirection:
		if s.SortColumn == a.Column {
			s.SortDirection = s.SortDirection.Flip()
		} else {
			s.SortColumn = a.Column
			s.SortDirection = Asc
		}
		return s, 0

	case SetPage:
		s.Page = a.Page
		return s, 0

	case SetRowsPerPage:
		s.RowsPerPage = a.RowsPerPage
		s.Page = 0
		return s, 0

	case ToggleColumnVisibility:
		i := slices.IndexFunc(s.Columns, func(c ColumnConfig) bool { return c.ID == a.ID })
		if i < 0 {
			return s, 0
		}
		columns := cloneColumns(s.Columns)
		columns[i].Visible = !columns[i].Visible
		s.Columns = columns
		return s, PersistColumns

	case AddColumn:
		id := NormalizeColumnID(a.ID)
		if id == "" {
			return s, 0
		}
		if _, exists := s.Column(id); exists {
			return s, 0
		}
		label := a.Label
		if label == "" {
			label = id
		}
		columns := make([]ColumnConfig, len(s.Columns), len(s.Columns)+1)
		copy(columns, s.Columns)
		s.Columns = append(columns, ColumnConfig{ID: id, Label: label, Visible: true, Sortable: true})
		return s, PersistColumns

	case SetEditingRowID:
		s.EditingRowID = a.ID
		return s, 0

	case ToggleTheme:
		s.Theme = s.Theme.Toggle()
		return s, PersistTheme

	case SetTheme:
		s.Theme = ParseTheme(string(a.Theme))
		return s, PersistTheme
	}
	return s, 0
}
