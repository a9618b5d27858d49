package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/johan-st/datatable/internal/config"
	"github.com/johan-st/datatable/internal/csvio"
	datatable "github.com/johan-st/datatable/internal/table"
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeEditRow
	ModeConfirmDelete
	ModeColumns
	ModeAddColumn
	ModeImport
)

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 4 * time.Second

// App is the main TUI application model.
type App struct {
	// Dependencies
	store     *datatable.Store
	transfer  *csvio.Transfer
	discovery *csvio.Discovery
	config    *config.Config

	// Window size
	width, height int

	// Table state as of the last sync
	state datatable.State
	view  datatable.View

	mode      Mode
	activeCol int // index into view.Columns

	dataTable table.Model
	search    textinput.Model

	// Dialogs
	form         *rowForm
	deleteID     string
	columnCursor int
	columnForm   *columnForm
	files        []*csvio.File
	fileCursor   int

	// Transient message under the table
	notice    string
	noticeErr bool
	noticeID  int

	theme  datatable.Theme
	styles Styles
	help   help.Model
	keys   KeyMap
}

// NewApp creates a new TUI application over store. discovery may be nil, in
// which case the import picker is unavailable. A nil cfg means defaults.
func NewApp(store *datatable.Store, transfer *csvio.Transfer, discovery *csvio.Discovery, cfg *config.Config, width, height int) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search all fields"

	dataTable := table.New(
		table.WithColumns([]table.Column{}),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
	)

	a := &App{
		store:     store,
		transfer:  transfer,
		discovery: discovery,
		config:    cfg,
		width:     width,
		height:    height,
		dataTable: dataTable,
		search:    search,
		help:      help.New(),
		keys:      DefaultKeyMap(),
	}
	a.help.Width = width
	a.sync()
	a.updateSizes()
	return a
}

// Mode returns the current input mode.
func (a *App) Mode() Mode { return a.mode }

// Notice returns the notice currently shown and whether it is an error.
func (a *App) Notice() (string, bool) { return a.notice, a.noticeErr }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Run starts a Bubble Tea program for app and blocks until it exits. Store
// and discovery notifications are forwarded into the program.
func Run(a *App, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(a, opts...)

	// Subscribers run on the dispatching goroutine, which may be the update
	// loop itself, so Send must not block it.
	unsubscribe := a.store.Subscribe(func(datatable.State) {
		go p.Send(StateChangedMsg{})
	})
	defer unsubscribe()

	if a.discovery != nil {
		a.discovery.OnChange(func(added, removed []*csvio.File) {
			go p.Send(FilesChangedMsg{})
		})
	}

	_, err := p.Run()
	return err
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.updateSizes()
		return a, nil

	case StateChangedMsg:
		a.sync()
		return a, nil

	case FilesChangedMsg:
		if a.mode == ModeImport {
			a.loadFiles()
		}
		return a, nil

	case ImportDoneMsg:
		if msg.Error != nil {
			return a, a.setNotice(importFailure(msg.Error), true)
		}
		a.sync()
		a.dataTable.SetCursor(0)
		return a, a.setNotice(fmt.Sprintf("Imported %s rows from %s", humanize.Comma(int64(msg.Count)), filepath.Base(msg.Path)), false)

	case ExportDoneMsg:
		if msg.Error != nil {
			return a, a.setNotice(fmt.Sprintf("Export failed: %v", msg.Error), true)
		}
		return a, a.setNotice("Exported to "+msg.Path, false)

	case noticeExpiredMsg:
		if msg.id == a.noticeID {
			a.notice = ""
			a.noticeErr = false
		}
		return a, nil
	}

	return a, nil
}

func importFailure(err error) string {
	var perr *csvio.ParseError
	switch {
	case errors.Is(err, csvio.ErrNoData):
		return "Import failed: the file has no data rows"
	case errors.As(err, &perr):
		return fmt.Sprintf("Import failed: line %d: %v", perr.Line, perr.Err)
	}
	return fmt.Sprintf("Import failed: %v", err)
}

// sync refreshes the local copy of the store state and the table widget.
func (a *App) sync() {
	a.state = a.store.Snapshot()
	a.view = datatable.Derive(a.state)

	// Deleting the last row of the last page leaves an empty page behind.
	if len(a.view.Rows) == 0 && a.view.Page > 0 && a.view.Total > 0 {
		a.store.SetPage(a.view.PageCount - 1)
		a.state = a.store.Snapshot()
		a.view = datatable.Derive(a.state)
	}

	if a.state.Theme != a.theme {
		a.theme = a.state.Theme
		a.styles = NewStyles(a.theme)
		a.dataTable.SetStyles(a.styles.Table)
	}

	if a.activeCol >= len(a.view.Columns) {
		a.activeCol = max(len(a.view.Columns)-1, 0)
	}
	a.updateDataTable()
}

// setNotice shows text under the table and schedules its removal.
func (a *App) setNotice(text string, isErr bool) tea.Cmd {
	a.noticeID++
	a.notice = text
	a.noticeErr = isErr
	id := a.noticeID
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// selectedRow returns the row under the cursor. Nothing is selectable
// while every column is hidden.
func (a *App) selectedRow() (datatable.Row, bool) {
	i := a.dataTable.Cursor()
	if len(a.view.Columns) == 0 || i < 0 || i >= len(a.view.Rows) {
		return datatable.Row{}, false
	}
	return a.view.Rows[i], true
}

// activeColumn returns the column that sorting applies to.
func (a *App) activeColumn() (datatable.ColumnConfig, bool) {
	if a.activeCol < 0 || a.activeCol >= len(a.view.Columns) {
		return datatable.ColumnConfig{}, false
	}
	return a.view.Columns[a.activeCol], true
}

func (a *App) updateSizes() {
	// title (1) + pane borders (2) + pager (1) + notice (1) + help
	chrome := 5 + a.helpHeight()
	tableHeight := a.height - chrome
	if tableHeight < 3 {
		tableHeight = 3
	}
	a.dataTable.SetHeight(tableHeight)
	a.dataTable.SetWidth(max(a.width-4, 10))
	a.updateDataTable()
}

func (a *App) helpHeight() int {
	if a.help.ShowAll {
		return 4
	}
	return 1
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.mode {
	case ModeSearch:
		return a.handleSearchInput(msg)
	case ModeEditRow:
		return a.handleFormInput(msg)
	case ModeConfirmDelete:
		return a.handleConfirmDelete(msg)
	case ModeColumns:
		return a.handleColumnsKey(msg)
	case ModeAddColumn:
		return a.handleAddColumnInput(msg)
	case ModeImport:
		return a.handleImportKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.updateSizes()
		return a, nil

	case key.Matches(msg, a.keys.Back):
		if a.help.ShowAll {
			a.help.ShowAll = false
			a.updateSizes()
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.dataTable.MoveUp(1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.dataTable.MoveDown(1)
		return a, nil

	case key.Matches(msg, a.keys.Left):
		if a.activeCol > 0 {
			a.activeCol--
			a.updateDataTable()
		}
		return a, nil

	case key.Matches(msg, a.keys.Right):
		if a.activeCol < len(a.view.Columns)-1 {
			a.activeCol++
			a.updateDataTable()
		}
		return a, nil

	case key.Matches(msg, a.keys.NextPage):
		if a.view.Page+1 < a.view.PageCount {
			a.store.SetPage(a.view.Page + 1)
			a.sync()
			a.dataTable.SetCursor(0)
		}
		return a, nil

	case key.Matches(msg, a.keys.PrevPage):
		if a.view.Page > 0 {
			a.store.SetPage(a.view.Page - 1)
			a.sync()
			a.dataTable.SetCursor(0)
		}
		return a, nil

	case key.Matches(msg, a.keys.Grow):
		return a.changePageSize(1)

	case key.Matches(msg, a.keys.Shrink):
		return a.changePageSize(-1)

	case key.Matches(msg, a.keys.Sort):
		if col, ok := a.activeColumn(); ok && col.Sortable {
			a.store.ToggleSortDirection(col.ID)
			a.sync()
		}
		return a, nil

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.search.SetValue(a.state.SearchQuery)
		a.search.CursorEnd()
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.Edit):
		row, ok := a.selectedRow()
		if !ok {
			return a, nil
		}
		a.store.SetEditingRowID(row.ID)
		a.sync()
		return a, a.openForm(row)

	case key.Matches(msg, a.keys.Add):
		return a, a.openForm(datatable.Row{})

	case key.Matches(msg, a.keys.Delete):
		if row, ok := a.selectedRow(); ok {
			a.deleteID = row.ID
			a.mode = ModeConfirmDelete
		}
		return a, nil

	case key.Matches(msg, a.keys.Columns):
		a.mode = ModeColumns
		a.columnCursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Import):
		if a.discovery == nil {
			return a, a.setNotice("No import directory configured", true)
		}
		a.mode = ModeImport
		a.fileCursor = 0
		a.loadFiles()
		return a, nil

	case key.Matches(msg, a.keys.Export):
		if len(a.state.Rows) == 0 {
			return a, a.setNotice("Nothing to export", true)
		}
		return a, a.export()

	case key.Matches(msg, a.keys.Theme):
		a.store.ToggleTheme()
		a.sync()
		return a, nil
	}

	return a, nil
}

// changePageSize steps to the next larger (dir > 0) or smaller page size.
func (a *App) changePageSize(dir int) (tea.Model, tea.Cmd) {
	sizes := a.config.GetPageSizes()
	slices.Sort(sizes)
	current := a.state.RowsPerPage

	next := 0
	if dir > 0 {
		for _, n := range sizes {
			if n > current {
				next = n
				break
			}
		}
	} else {
		for i := len(sizes) - 1; i >= 0; i-- {
			if sizes[i] < current {
				next = sizes[i]
				break
			}
		}
	}
	if next == 0 {
		return a, nil
	}

	a.store.SetRowsPerPage(next)
	a.sync()
	a.dataTable.SetCursor(0)
	return a, nil
}

func (a *App) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.mode = ModeBrowse
		a.search.Blur()
		return a, nil

	case tea.KeyEsc:
		a.mode = ModeBrowse
		a.search.Blur()
		a.search.SetValue("")
		if a.state.SearchQuery != "" {
			a.store.SetSearchQuery("")
			a.sync()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if q := a.search.Value(); q != a.state.SearchQuery {
		a.store.SetSearchQuery(q)
		a.sync()
		a.dataTable.SetCursor(0)
	}
	return a, cmd
}

func (a *App) openForm(row datatable.Row) tea.Cmd {
	columns := a.view.Columns
	if len(columns) == 0 {
		columns = a.state.Columns
	}
	a.form = newRowForm(row, columns)
	a.mode = ModeEditRow
	return a.form.focusField(0)
}

func (a *App) closeForm() {
	if !a.form.adding() {
		a.store.SetEditingRowID("")
	}
	a.form = nil
	a.mode = ModeBrowse
	a.sync()
}

func (a *App) handleFormInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.closeForm()
		return a, nil

	case tea.KeyEnter:
		return a, a.saveForm()
	}

	switch {
	case key.Matches(msg, a.keys.NextItem):
		return a, a.form.focusField(a.form.focus + 1)
	case key.Matches(msg, a.keys.PrevItem):
		return a, a.form.focusField(a.form.focus - 1)
	}
	return a, a.form.update(msg)
}

func (a *App) saveForm() tea.Cmd {
	f := a.form
	if f.adding() {
		row := f.apply(datatable.Row{})
		a.store.AddRow(row)
		a.closeForm()
		return a.setNotice("Row added", false)
	}

	base, ok := a.state.Row(f.rowID)
	if !ok {
		a.closeForm()
		return a.setNotice("Row no longer exists", true)
	}
	a.store.UpdateRow(f.apply(base))
	a.closeForm()
	return a.setNotice("Row saved", false)
}

func (a *App) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := a.deleteID
	a.deleteID = ""
	a.mode = ModeBrowse

	if !key.Matches(msg, a.keys.Confirm) {
		return a, nil
	}
	a.store.DeleteRow(id)
	a.sync()
	return a, a.setNotice("Row deleted", false)
}

func (a *App) handleColumnsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Columns), key.Matches(msg, a.keys.Quit):
		a.mode = ModeBrowse
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.columnCursor > 0 {
			a.columnCursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.columnCursor < len(a.state.Columns)-1 {
			a.columnCursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Toggle):
		if a.columnCursor < len(a.state.Columns) {
			a.store.ToggleColumnVisibility(a.state.Columns[a.columnCursor].ID)
			a.sync()
		}
		return a, nil

	case key.Matches(msg, a.keys.Add):
		a.columnForm = newColumnForm()
		a.mode = ModeAddColumn
		return a, textinput.Blink
	}
	return a, nil
}

func (a *App) handleAddColumnInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.columnForm = nil
		a.mode = ModeColumns
		return a, nil

	case tea.KeyEnter:
		id, label, ok := a.columnForm.values()
		if !ok {
			return a, a.setNotice("Both an id and a label are required", true)
		}
		if _, exists := a.state.Column(datatable.NormalizeColumnID(id)); exists {
			return a, a.setNotice(fmt.Sprintf("Column %q already exists", datatable.NormalizeColumnID(id)), true)
		}
		a.store.AddColumn(id, label)
		a.columnForm = nil
		a.mode = ModeColumns
		a.sync()
		a.columnCursor = len(a.state.Columns) - 1
		return a, a.setNotice("Column added", false)
	}

	if key.Matches(msg, a.keys.NextItem) || key.Matches(msg, a.keys.PrevItem) {
		return a, a.columnForm.toggleFocus()
	}
	return a, a.columnForm.update(msg)
}

func (a *App) loadFiles() {
	a.files = a.discovery.Files()
	if a.fileCursor >= len(a.files) {
		a.fileCursor = max(len(a.files)-1, 0)
	}
}

func (a *App) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Quit):
		a.mode = ModeBrowse
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.fileCursor > 0 {
			a.fileCursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.fileCursor < len(a.files)-1 {
			a.fileCursor++
		}
		return a, nil

	case msg.Type == tea.KeyEnter:
		if a.fileCursor >= len(a.files) {
			return a, nil
		}
		a.mode = ModeBrowse
		return a, a.importFile(a.files[a.fileCursor].Path)
	}
	return a, nil
}

func (a *App) importFile(path string) tea.Cmd {
	return func() tea.Msg {
		n, err := a.transfer.ImportFile(path)
		return ImportDoneMsg{Path: path, Count: n, Error: err}
	}
}

func (a *App) export() tea.Cmd {
	dir := a.config.GetExportDir()
	return func() tea.Msg {
		path, err := a.transfer.Export(dir)
		return ExportDoneMsg{Path: path, Error: err}
	}
}
