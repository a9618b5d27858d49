package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// cmdHelp shows help information.
func (h *Handler) cmdHelp(ctx *CommandContext) {
	args := ctx.GetPositionalArgs()

	if len(args) > 0 {
		h.showCommandHelp(ctx, args[0])
		return
	}

	fmt.Fprintln(ctx.Out, `datatable - terminal data table manager

USAGE:
  datatable [flags] command [arguments] [options]
  datatable [flags]                  Start the interactive table

TABLE COMMANDS:
  rows                             Show a page of rows
  columns                          List columns
  add-column <id> <label>          Add a column
  toggle-column <id>               Show or hide a column
  theme [light|dark|toggle]        Show or change the theme

TRANSFER COMMANDS:
  import <file.csv>                Import rows from a CSV file
  export [--out=dir]               Export visible columns to CSV
  files [dir]                      List CSV files available for import
  history                          Show import/export history

UTILITY COMMANDS:
  help [command]                   Show help
  version                          Show version

FLAGS:
  -config <file>                   Configuration file
  -data <file.csv>                 Import a CSV file at start
  -ephemeral                       Do not read or write local storage

Run 'help <command>' for detailed help on a specific command.`)
}

// showCommandHelp shows help for a specific command.
func (h *Handler) showCommandHelp(ctx *CommandContext, command string) {
	help := map[string]string{
		"rows": `rows - Show a page of rows

USAGE:
  rows [options]

OPTIONS:
  --search=text      Keep rows where any field contains text
  --sort=column      Sort by column id
  --desc             Sort descending
  --page=N           Page number, starting at 1 (default: 1)
  --per-page=N       Rows per page
  --format=table     Tab-separated output (default)
  --format=json      Output as JSON
  --format=csv       Output visible columns as CSV

EXAMPLES:
  rows --search=developer --sort=age --desc
  rows --page=2 --per-page=5 --format=json`,

		"add-column": `add-column - Add a column

USAGE:
  add-column <id> <label>

The id is lowercased and whitespace becomes underscores. The new column is
visible and sortable. Adding an id that already exists fails.

EXAMPLE:
  add-column start_date "Start date"`,

		"import": `import - Import rows from a CSV file

USAGE:
  import <file.csv>

The first line names the fields. Recognized fields are id, name, email, age,
role, department and location; other fields are kept as they are. Rows
without an id get a generated one. Import replaces all rows.`,

		"export": `export - Export to CSV

USAGE:
  export [--out=dir]

Writes the visible columns of every row to table-export-YYYY-MM-DD.csv in
the export directory.`,

		"files": `files - List CSV files available for import

USAGE:
  files [dir] [--pattern=glob] [--format=json]

Defaults to the import directory and pattern from the configuration.`,

		"history": `history - Show import/export history

USAGE:
  history [--limit=N] [--action=import|export] [--format=json]`,
	}

	if h, ok := help[command]; ok {
		fmt.Fprintln(ctx.Out, h)
	} else {
		fmt.Fprintf(ctx.Out, "No detailed help available for '%s'\n", command)
	}
}

// cmdVersion shows version information.
func (h *Handler) cmdVersion(ctx *CommandContext) {
	format := ctx.GetFlag("format")
	if format == "json" {
		printJSON(ctx.Out, map[string]string{"version": h.version})
		return
	}
	fmt.Fprintf(ctx.Out, "datatable %s\n", h.version)
}

// printJSON writes JSON to a writer.
func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
