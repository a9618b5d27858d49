package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/johan-st/datatable/internal/csvio"
)

// cmdImport loads a CSV file into the table.
func (h *Handler) cmdImport(ctx *CommandContext) {
	path, ok := ctx.RequireArg(0, "file")
	if !ok {
		return
	}

	n, err := h.transfer.ImportFile(path)
	if err != nil {
		ctx.Fail("Import failed: %v", err)
		return
	}
	fmt.Fprintf(ctx.Out, "Successfully imported %s rows from %s\n", humanize.Comma(int64(n)), path)
}

// cmdExport writes the table to a CSV file.
func (h *Handler) cmdExport(ctx *CommandContext) {
	dir := ctx.GetFlag("out")
	if dir == "" {
		dir = h.config.GetExportDir()
	}

	path, err := h.transfer.Export(dir)
	if errors.Is(err, csvio.ErrNothingToExport) {
		ctx.Fail("Nothing to export: the table has no rows")
		return
	}
	if err != nil {
		ctx.Fail("Export failed: %v", err)
		return
	}

	n := len(ctx.Store.Snapshot().Rows)
	fmt.Fprintf(ctx.Out, "Exported %s rows to %s\n", humanize.Comma(int64(n)), path)
}

// cmdFiles lists CSV files available for import.
func (h *Handler) cmdFiles(ctx *CommandContext) {
	dir, pattern := h.config.GetImportSource()
	if args := ctx.GetPositionalArgs(); len(args) > 0 {
		dir = args[0]
	}
	if p := ctx.GetFlag("pattern"); p != "" {
		pattern = p
	}

	d, err := csvio.NewDiscovery(dir, pattern, nil)
	if err != nil {
		ctx.Fail("Failed to start discovery: %v", err)
		return
	}
	defer d.Stop()

	if err := d.Refresh(); err != nil {
		ctx.Fail("Failed to list %s: %v", dir, err)
		return
	}
	files := d.Files()

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, files)
		return
	}

	if len(files) == 0 {
		fmt.Fprintf(ctx.Out, "No CSV files found in %s\n", dir)
		return
	}

	fmt.Fprintln(ctx.Out, "NAME\tSIZE\tMODIFIED")
	for _, f := range files {
		fmt.Fprintf(ctx.Out, "%s\t%s\t%s\n", f.Name, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime))
	}
}

// cmdHistory shows the transfer audit log.
func (h *Handler) cmdHistory(ctx *CommandContext) {
	if h.audit == nil {
		ctx.Fail("History not available: local storage is disabled")
		return
	}

	limit, ok := ctx.GetIntFlag("limit", 50)
	if !ok {
		return
	}

	entries, err := h.audit.ListAudit(ctx.GetFlag("action"), limit)
	if err != nil {
		ctx.Fail("Error fetching history: %v", err)
		return
	}

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, entries)
		return
	}

	if len(entries) == 0 {
		fmt.Fprintln(ctx.Out, "No history")
		return
	}

	fmt.Fprintln(ctx.Out, "TIME\tACTION\tDETAILS")
	for _, e := range entries {
		details := e.Details
		if len(details) > 60 {
			details = details[:57] + "..."
		}
		fmt.Fprintf(ctx.Out, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, details)
	}
}
