// Package cli implements the one-shot command mode.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/johan-st/datatable/internal/config"
	"github.com/johan-st/datatable/internal/csvio"
	"github.com/johan-st/datatable/internal/storage"
	"github.com/johan-st/datatable/internal/table"
)

// AuditLog lists recorded transfers.
type AuditLog interface {
	ListAudit(action string, limit int) ([]*storage.AuditRecord, error)
}

// Handler runs CLI commands against a table store.
type Handler struct {
	store    *table.Store
	transfer *csvio.Transfer
	audit    AuditLog
	config   *config.Config
	version  string
}

// NewHandler creates a new CLI handler. audit may be nil when storage is
// unavailable.
func NewHandler(store *table.Store, transfer *csvio.Transfer, audit AuditLog, cfg *config.Config, version string) *Handler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handler{
		store:    store,
		transfer: transfer,
		audit:    audit,
		config:   cfg,
		version:  version,
	}
}

// LocalContext wraps command execution for one process invocation.
type LocalContext struct {
	Args []string
	Out  io.Writer
	Err  io.Writer
}

// NewLocalContext creates a context for local CLI execution.
func NewLocalContext(args []string, out, errOut io.Writer) *LocalContext {
	return &LocalContext{
		Args: args,
		Out:  out,
		Err:  errOut,
	}
}

// HandleLocal processes a CLI command.
func (h *Handler) HandleLocal(lctx *LocalContext) error {
	if len(lctx.Args) == 0 {
		fmt.Fprintln(lctx.Out, "No command specified. Run 'help' for usage.")
		return nil
	}

	ctx := &CommandContext{
		Store:    h.store,
		Args:     lctx.Args[1:],
		Out:      lctx.Out,
		Err:      lctx.Err,
		exitCode: 0,
	}

	h.routeCommand(lctx.Args[0], ctx)

	if ctx.exitCode != 0 {
		return fmt.Errorf("command failed with exit code %d", ctx.exitCode)
	}
	return nil
}

// routeCommand routes a command to its handler.
func (h *Handler) routeCommand(cmd string, ctx *CommandContext) {
	switch cmd {
	// Table commands
	case "rows", "ls":
		h.cmdRows(ctx)
	case "columns":
		h.cmdColumns(ctx)
	case "add-column":
		h.cmdAddColumn(ctx)
	case "toggle-column":
		h.cmdToggleColumn(ctx)
	case "theme":
		h.cmdTheme(ctx)

	// Transfer commands
	case "import":
		h.cmdImport(ctx)
	case "export":
		h.cmdExport(ctx)
	case "files":
		h.cmdFiles(ctx)
	case "history":
		h.cmdHistory(ctx)

	// Utility commands
	case "help":
		h.cmdHelp(ctx)
	case "version":
		h.cmdVersion(ctx)

	default:
		fmt.Fprintf(ctx.Err, "Unknown command: %s\n", cmd)
		fmt.Fprintln(ctx.Err, "Run 'help' for usage.")
		ctx.Exit(1)
	}
}

// CommandContext provides context for command execution.
type CommandContext struct {
	Store    *table.Store
	Args     []string
	Out      io.Writer
	Err      io.Writer
	exitCode int
}

// Exit sets the exit code.
func (c *CommandContext) Exit(code int) {
	c.exitCode = code
}

// ExitCode returns the exit code set by the command.
func (c *CommandContext) ExitCode() int {
	return c.exitCode
}

// Fail reports an error on stderr and sets exit code 1.
func (c *CommandContext) Fail(format string, args ...any) {
	fmt.Fprintf(c.Err, format+"\n", args...)
	c.Exit(1)
}

// RequireArg ensures an argument is provided.
func (c *CommandContext) RequireArg(index int, name string) (string, bool) {
	args := c.GetPositionalArgs()
	if index >= len(args) {
		fmt.Fprintf(c.Err, "Missing required argument: %s\n", name)
		c.Exit(1)
		return "", false
	}
	return args[index], true
}

// GetFlag returns a flag value from args (e.g., --format=json).
func (c *CommandContext) GetFlag(name string) string {
	prefix := "--" + name + "="
	shortPrefix := "-" + name + "="
	for _, arg := range c.Args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix)
		}
		if strings.HasPrefix(arg, shortPrefix) {
			return strings.TrimPrefix(arg, shortPrefix)
		}
	}
	return ""
}

// GetIntFlag returns an integer flag value, or def when the flag is absent.
// A value that is not an integer is reported and ok is false.
func (c *CommandContext) GetIntFlag(name string, def int) (n int, ok bool) {
	raw := c.GetFlag(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.Fail("Invalid value for --%s: %q is not a number", name, raw)
		return 0, false
	}
	return n, true
}

// HasFlag checks if a boolean flag is present.
func (c *CommandContext) HasFlag(name string) bool {
	flag := "--" + name
	shortFlag := "-" + name
	for _, arg := range c.Args {
		if arg == flag || arg == shortFlag {
			return true
		}
	}
	return false
}

// GetPositionalArgs returns args that are not flags.
func (c *CommandContext) GetPositionalArgs() []string {
	var result []string
	for _, arg := range c.Args {
		if !strings.HasPrefix(arg, "-") {
			result = append(result, arg)
		}
	}
	return result
}
