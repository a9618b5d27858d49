package table

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Persister saves the persisted parts of the state. Implementations report
// failures, but the Store only logs them.
type Persister interface {
	SaveColumns(columns []ColumnConfig) error
	SaveTheme(theme Theme) error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister sets where column and theme changes are saved.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is the single owner of the table state. Every change goes through
// Dispatch (or one of the named methods wrapping it).
type Store struct {
	state     State
	persister Persister
	logger    *log.Logger

	subscribers map[int]func(State)
	nextSubID   int
	closed      bool

	mu sync.Mutex
}

// NewStore creates a store holding initial.
func NewStore(initial State, opts ...StoreOption) *Store {
	s := &Store{
		state:       initial.Clone(),
		logger:      log.New(io.Discard),
		subscribers: make(map[int]func(State)),
	}
	if s.state.SortDirection == "" {
		s.state.SortDirection = Asc
	}
	if s.state.Theme == "" {
		s.state.Theme = Light
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies an action, persists what it changed and notifies
// subscribers. It is a no-op once the store is closed.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	next, effect := Reduce(s.state, a)
	s.state = next

	if s.persister != nil {
		if effect.Has(PersistColumns) {
			if err := s.persister.SaveColumns(cloneColumns(next.Columns)); err != nil {
				s.logger.Debug("persist columns failed", "err", err)
			}
		}
		if effect.Has(PersistTheme) {
			if err := s.persister.SaveTheme(next.Theme); err != nil {
				s.logger.Debug("persist theme failed", "err", err)
			}
		}
	}

	subs := s.subscriberList()
	snapshot := next.Clone()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View derives the visible page from the current state.
func (s *Store) View() View {
	return Derive(s.Snapshot())
}

// Subscribe registers fn to be called with a snapshot after every
// transition. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close drops all subscribers; later transitions are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subscribers = make(map[int]func(State))
}

// subscriberList returns subscribers in registration order. Caller holds mu.
func (s *Store) subscriberList() []func(State) {
	subs := make([]func(State), 0, len(s.subscribers))
	for id := 0; id < s.nextSubID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

// SetData replaces every row.
func (s *Store) SetData(rows []Row) { s.Dispatch(SetData{Rows: rows}) }

// UpdateRow replaces the row with the same id. Unknown ids are ignored.
func (s *Store) UpdateRow(row Row) { s.Dispatch(UpdateRow{Row: row}) }

// DeleteRow removes the row with the given id and ends its edit, if any.
func (s *Store) DeleteRow(id string) { s.Dispatch(DeleteRow{ID: id}) }

// SetPage moves to a zero-based page. It is not clamped.
func (s *Store) SetPage(page int) { s.Dispatch(SetPage{Page: page}) }

// ToggleTheme switches between light and dark and saves the choice.
func (s *Store) ToggleTheme() { s.Dispatch(ToggleTheme{}) }

// SetTheme sets the theme and saves it.
func (s *Store) SetTheme(theme Theme) { s.Dispatch(SetTheme{Theme: theme}) }

// AddRow appends a row, giving it a fresh id when it has none. It returns
// the id the row was stored under.
func (s *Store) AddRow(row Row) string {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	s.Dispatch(AddRow{Row: row})
	return row.ID
}

// SetSearchQuery sets the search query and returns to the first page.
func (s *Store) SetSearchQuery(q string) { s.Dispatch(SetSearchQuery{Query: q}) }

// SetSorting sets the sort column and direction. An empty column means
// unsorted.
func (s *Store) SetSorting(column string, dir Direction) {
	s.Dispatch(SetSorting{Column: column, Direction: dir})
}

// ToggleSortDirection sorts by column ascending, or flips the direction when
// column is already the sort column.
func (s *Store) ToggleSortDirection(column string) {
	s.Dispatch(ToggleSortDirection{Column: column})
}

// SetRowsPerPage changes the page size and returns to the first page.
func (s *Store) SetRowsPerPage(n int) { s.Dispatch(SetRowsPerPage{RowsPerPage: n}) }

// ToggleColumnVisibility shows or hides a column and saves the layout.
func (s *Store) ToggleColumnVisibility(id string) {
	s.Dispatch(ToggleColumnVisibility{ID: id})
}

// AddColumn adds a visible, sortable column. The id is normalized; an id
// that already exists leaves the columns unchanged.
func (s *Store) AddColumn(id, label string) {
	s.Dispatch(AddColumn{ID: id, Label: label})
}

// SetEditingRowID marks a row as being edited; "" clears it.
func (s *Store) SetEditingRowID(id string) { s.Dispatch(SetEditingRowID{ID: id}) }
