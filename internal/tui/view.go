package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	datatable "github.com/johan-st/datatable/internal/table"
)

const (
	minColWidth = 6
	maxColWidth = 32
)

// View implements tea.Model.
func (a *App) View() string {
	if a.width < 40 || a.height < 10 {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			a.styles.Error.Render("Terminal too small\nMin: 40x10"))
	}

	switch a.mode {
	case ModeEditRow:
		return a.renderModal(a.renderForm())
	case ModeColumns:
		return a.renderModal(a.renderColumns())
	case ModeAddColumn:
		return a.renderModal(a.renderAddColumn())
	case ModeImport:
		return a.renderModal(a.renderImport())
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(a.styles.Pane.Width(a.width - 2).Render(a.renderBody()))
	b.WriteString("\n")
	b.WriteString(a.renderPager())
	b.WriteString("\n")
	b.WriteString(a.renderNotice())
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderTitleBar() string {
	left := a.styles.Title.Render("datatable")
	if a.mode == ModeSearch {
		left += " " + a.search.View()
	} else if a.state.SearchQuery != "" {
		left += " " + a.styles.Dim.Render(fmt.Sprintf("search: %q", a.state.SearchQuery))
	}

	right := a.styles.StatusKey.Render(string(a.state.Theme))
	if a.state.SortColumn != "" {
		right = a.styles.Dim.Render(fmt.Sprintf("sorted by %s %s |", a.state.SortColumn, a.state.SortDirection)) + " " + right
	}

	padding := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return a.styles.StatusBar.Width(a.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (a *App) renderBody() string {
	switch {
	case len(a.view.Columns) == 0:
		return a.styles.Dim.Render("No columns are visible. Press c to choose columns.")
	case a.view.Total == 0 && a.state.SearchQuery != "":
		return a.styles.Dim.Render("No rows match the search.")
	case a.view.Total == 0:
		return a.styles.Dim.Render("No data. Press i to import a CSV file or a to add a row.")
	}

	body := a.dataTable.View()
	if a.mode == ModeConfirmDelete {
		name := a.deleteID
		if row, ok := a.state.Row(a.deleteID); ok && row.Name != "" {
			name = row.Name
		}
		body += "\n" + a.styles.Error.Render(fmt.Sprintf("Delete %s? (y/n)", name))
	}
	return body
}

func (a *App) renderPager() string {
	v := a.view
	if v.Total == 0 {
		return a.styles.Dim.Render(fmt.Sprintf("0 rows | %d per page", v.RowsPerPage))
	}
	first := v.Page*v.RowsPerPage + 1
	last := first + len(v.Rows) - 1
	text := fmt.Sprintf("%s-%s of %s rows | page %d of %d | %d per page",
		humanize.Comma(int64(first)), humanize.Comma(int64(last)), humanize.Comma(int64(v.Total)),
		v.Page+1, v.PageCount, v.RowsPerPage)
	return a.styles.Dim.Render(text)
}

func (a *App) renderNotice() string {
	if a.notice == "" {
		return ""
	}
	if a.noticeErr {
		return a.styles.Error.Render(a.notice)
	}
	return a.styles.Success.Render(a.notice)
}

func (a *App) renderModal(content string) string {
	modal := a.styles.Modal.Render(content)
	if a.notice != "" {
		modal = lipgloss.JoinVertical(lipgloss.Center, modal, a.renderNotice())
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a *App) renderForm() string {
	f := a.form
	var b strings.Builder
	if f.adding() {
		b.WriteString(a.styles.Title.Render("Add row"))
	} else {
		b.WriteString(a.styles.Title.Render("Edit row"))
	}
	b.WriteString("\n\n")

	labelWidth := 0
	for _, col := range f.fields {
		labelWidth = max(labelWidth, lipgloss.Width(col.Label))
	}

	for i, col := range f.fields {
		label := fmt.Sprintf("%-*s  ", labelWidth, col.Label)
		if i == f.focus {
			b.WriteString(a.styles.Selected.Render(label))
		} else {
			b.WriteString(a.styles.HelpDesc.Render(label))
		}
		b.WriteString(f.inputs[i].View())
		if err := f.fieldError(col.ID); err != nil {
			b.WriteString("  " + a.styles.Error.Render(err.Error()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Dim.Render("enter save | esc cancel | tab next field"))
	return b.String()
}

func (a *App) renderColumns() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Columns"))
	b.WriteString("\n\n")

	for i, col := range a.state.Columns {
		check := "[ ]"
		if col.Visible {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, col.Label)
		if col.Label != col.ID {
			line += a.styles.Dim.Render(" (" + col.ID + ")")
		}
		if i == a.columnCursor {
			b.WriteString(a.styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Dim.Render("space toggle | a add column | esc close"))
	return b.String()
}

func (a *App) renderAddColumn() string {
	f := a.columnForm
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Add column"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.HelpKey.Render("ID     "))
	b.WriteString(f.id.View())
	b.WriteString("\n")
	b.WriteString(a.styles.HelpKey.Render("Label  "))
	b.WriteString(f.label.View())
	b.WriteString("\n\n")
	b.WriteString(a.styles.Dim.Render("enter add | tab switch | esc back"))
	return b.String()
}

func (a *App) renderImport() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Import CSV"))
	b.WriteString("\n")
	b.WriteString(a.styles.Dim.Render(a.discovery.Dir()))
	b.WriteString("\n\n")

	if len(a.files) == 0 {
		b.WriteString(a.styles.Dim.Render("No CSV files found"))
		b.WriteString("\n")
	}
	for i, f := range a.files {
		line := fmt.Sprintf("%s  %s  %s", f.Name,
			a.styles.Dim.Render(humanize.Bytes(uint64(f.Size))),
			a.styles.Dim.Render(humanize.Time(f.ModTime)))
		if i == a.fileCursor {
			b.WriteString(a.styles.Selected.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Dim.Render("Importing replaces all rows | enter import | esc cancel"))
	return b.String()
}

// columnTitle is the header text for col, with the sort arrow when the table
// is sorted by it.
func (a *App) columnTitle(col datatable.ColumnConfig) string {
	title := col.Label
	if a.state.SortColumn == col.ID {
		if a.state.SortDirection == datatable.Desc {
			title += " ▼"
		} else {
			title += " ▲"
		}
	}
	return title
}

func (a *App) updateDataTable() {
	if len(a.view.Columns) == 0 {
		a.dataTable.SetRows([]table.Row{})
		a.dataTable.SetColumns([]table.Column{})
		return
	}

	titles := make([]string, len(a.view.Columns))
	widths := make([]int, len(a.view.Columns))
	for i, col := range a.view.Columns {
		titles[i] = a.columnTitle(col)
		if i == a.activeCol {
			titles[i] = "[" + titles[i] + "]"
		}
		widths[i] = lipgloss.Width(titles[i])
	}

	rows := make([]table.Row, len(a.view.Rows))
	for r, row := range a.view.Rows {
		cells := make([]string, len(a.view.Columns))
		for i, col := range a.view.Columns {
			v, _ := row.Get(col.ID)
			cells[i] = v.Text()
			widths[i] = max(widths[i], lipgloss.Width(cells[i]))
		}
		rows[r] = cells
	}

	columns := make([]table.Column, len(a.view.Columns))
	for i := range a.view.Columns {
		w := min(max(widths[i], minColWidth), maxColWidth)
		columns[i] = table.Column{Title: truncateString(titles[i], w), Width: w}
		for _, cells := range rows {
			cells[i] = truncateString(cells[i], w)
		}
	}

	// Must set rows before columns to avoid index panic in bubbles/table
	a.dataTable.SetRows([]table.Row{})
	a.dataTable.SetColumns(columns)
	a.dataTable.SetRows(rows)
	switch c := a.dataTable.Cursor(); {
	case c >= len(rows):
		a.dataTable.SetCursor(len(rows) - 1)
	case c < 0:
		a.dataTable.SetCursor(0)
	}
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
