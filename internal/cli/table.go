package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/johan-st/datatable/internal/csvio"
	"github.com/johan-st/datatable/internal/table"
)

// cmdRows prints a page of rows after search and sort.
func (h *Handler) cmdRows(ctx *CommandContext) {
	page, ok := ctx.GetIntFlag("page", 1)
	if !ok {
		return
	}
	perPage, ok := ctx.GetIntFlag("per-page", ctx.Store.Snapshot().RowsPerPage)
	if !ok {
		return
	}
	if page < 1 || perPage < 1 {
		ctx.Fail("--page and --per-page must be at least 1")
		return
	}

	if q := ctx.GetFlag("search"); q != "" {
		ctx.Store.SetSearchQuery(q)
	}
	if col := ctx.GetFlag("sort"); col != "" {
		dir := table.Asc
		if ctx.HasFlag("desc") {
			dir = table.Desc
		}
		ctx.Store.SetSorting(col, dir)
	}
	ctx.Store.SetRowsPerPage(perPage)
	ctx.Store.SetPage(page - 1)

	view := ctx.Store.View()

	switch format := ctx.GetFlag("format"); format {
	case "json":
		printJSON(ctx.Out, rowsJSON(view))

	case "csv":
		if len(view.Rows) == 0 {
			return
		}
		if err := csvio.Encode(ctx.Out, view.Rows, view.Columns); err != nil {
			ctx.Fail("Failed to encode CSV: %v", err)
		}

	case "", "table":
		printRowsTable(ctx, view)

	default:
		ctx.Fail("Unknown format: %s (use table, json or csv)", format)
	}
}

func rowsJSON(view table.View) map[string]any {
	rows := make([]map[string]table.Value, 0, len(view.Rows))
	for _, r := range view.Rows {
		m := map[string]table.Value{table.FieldID: table.String(r.ID)}
		for _, c := range view.Columns {
			v, _ := r.Get(c.ID)
			m[c.ID] = v
		}
		rows = append(rows, m)
	}
	return map[string]any{
		"page":       view.Page + 1,
		"page_count": view.PageCount,
		"per_page":   view.RowsPerPage,
		"total":      view.Total,
		"rows":       rows,
	}
}

func printRowsTable(ctx *CommandContext, view table.View) {
	if len(view.Columns) == 0 {
		fmt.Fprintln(ctx.Out, "No visible columns. Use 'toggle-column <id>' to show one.")
		return
	}
	if len(view.Rows) == 0 {
		fmt.Fprintln(ctx.Out, "No rows found.")
		fmt.Fprintf(ctx.Out, "(%s matching rows)\n", humanize.Comma(int64(view.Total)))
		return
	}

	headers := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		headers[i] = strings.ToUpper(c.Label)
	}
	fmt.Fprintln(ctx.Out, strings.Join(headers, "\t"))

	values := make([]string, len(view.Columns))
	for _, r := range view.Rows {
		for i, c := range view.Columns {
			v, _ := r.Get(c.ID)
			values[i] = v.Text()
		}
		fmt.Fprintln(ctx.Out, strings.Join(values, "\t"))
	}

	first := view.Page*view.RowsPerPage + 1
	last := first + len(view.Rows) - 1
	fmt.Fprintf(ctx.Out, "\nShowing %d-%d of %s rows (page %d of %d)\n",
		first, last, humanize.Comma(int64(view.Total)), view.Page+1, view.PageCount)
}

// cmdColumns lists the column configuration.
func (h *Handler) cmdColumns(ctx *CommandContext) {
	columns := ctx.Store.Snapshot().Columns

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, columns)
		return
	}

	fmt.Fprintln(ctx.Out, "ID\tLABEL\tVISIBLE\tSORTABLE")
	for _, c := range columns {
		fmt.Fprintf(ctx.Out, "%s\t%s\t%s\t%s\n", c.ID, c.Label, yesNo(c.Visible), yesNo(c.Sortable))
	}
}

// cmdAddColumn adds a column.
func (h *Handler) cmdAddColumn(ctx *CommandContext) {
	args := ctx.GetPositionalArgs()
	if len(args) < 2 {
		fmt.Fprintln(ctx.Err, "Usage: add-column <id> <label>")
		ctx.Exit(1)
		return
	}

	id := table.NormalizeColumnID(args[0])
	label := strings.Join(args[1:], " ")
	if id == "" {
		ctx.Fail("Column id must not be empty")
		return
	}
	if _, exists := ctx.Store.Snapshot().Column(id); exists {
		ctx.Fail("Column already exists: %s", id)
		return
	}

	ctx.Store.AddColumn(id, label)
	fmt.Fprintf(ctx.Out, "Added column %s (%s)\n", id, label)
}

// cmdToggleColumn flips a column's visibility.
func (h *Handler) cmdToggleColumn(ctx *CommandContext) {
	id, ok := ctx.RequireArg(0, "column id")
	if !ok {
		return
	}
	if _, exists := ctx.Store.Snapshot().Column(id); !exists {
		ctx.Fail("Column not found: %s", id)
		return
	}

	ctx.Store.ToggleColumnVisibility(id)
	c, _ := ctx.Store.Snapshot().Column(id)
	state := "hidden"
	if c.Visible {
		state = "visible"
	}
	fmt.Fprintf(ctx.Out, "Column %s is now %s\n", id, state)
}

// cmdTheme shows or changes the theme.
func (h *Handler) cmdTheme(ctx *CommandContext) {
	args := ctx.GetPositionalArgs()
	if len(args) > 0 {
		switch args[0] {
		case "toggle":
			ctx.Store.ToggleTheme()
		case string(table.Light), string(table.Dark):
			ctx.Store.SetTheme(table.Theme(args[0]))
		default:
			ctx.Fail("Unknown theme: %s (use light, dark or toggle)", args[0])
			return
		}
	}
	fmt.Fprintf(ctx.Out, "Theme: %s\n", ctx.Store.Snapshot().Theme)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
