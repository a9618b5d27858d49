// datatable is a terminal data table manager: browse, search, sort, edit,
// import and export tabular records. It runs as an interactive TUI or as a
// one-shot CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/johan-st/datatable/internal/cli"
	"github.com/johan-st/datatable/internal/config"
	"github.com/johan-st/datatable/internal/csvio"
	"github.com/johan-st/datatable/internal/prefs"
	"github.com/johan-st/datatable/internal/storage"
	"github.com/johan-st/datatable/internal/table"
	"github.com/johan-st/datatable/internal/tui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// defaultConfigFile is loaded from the working directory when -config is
// not given.
const defaultConfigFile = "datatable.yaml"

var errCommandFailed = errors.New("command failed")

func main() {
	// Parse flags
	configPath := flag.String("config", "", "path to config file (default ./"+defaultConfigFile+" if present)")
	dataPath := flag.String("data", "", "CSV file to import at start")
	ephemeral := flag.Bool("ephemeral", false, "keep preferences in memory only")
	showVersion := flag.Bool("version", false, "show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("datatable %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		dataPath:  *dataPath,
		ephemeral: *ephemeral,
		args:      flag.Args(),
	}
	if err := run(cfg, opts); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "datatable - terminal data table manager")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  datatable [flags]                    Interactive TUI mode")
	fmt.Fprintln(out, "  datatable [flags] <command> [args]   CLI mode (run and exit)")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Examples:")
	fmt.Fprintln(out, "  datatable -data people.csv           Open people.csv in the TUI")
	fmt.Fprintln(out, "  datatable rows --sort=age --desc     Print the first page sorted by age")
	fmt.Fprintln(out, "  datatable -data people.csv export    Write people.csv back out as an export")
	fmt.Fprintln(out, "  datatable help                       List CLI commands")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return config.DefaultConfig(), nil
		}
		path = defaultConfigFile
	}
	return config.Load(path)
}

type options struct {
	dataPath  string
	ephemeral bool
	args      []string
}

// session is everything a run shares between CLI and TUI mode.
type session struct {
	cfg      *config.Config
	logger   *log.Logger
	db       *storage.Store // nil when ephemeral or unavailable
	store    *table.Store
	transfer *csvio.Transfer
	closers  []func()
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func run(cfg *config.Config, opts options) error {
	cliMode := len(opts.args) > 0

	s, err := newSession(cfg, opts, cliMode)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.dataPath != "" {
		n, err := s.transfer.ImportFile(opts.dataPath)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", opts.dataPath, err)
		}
		s.logger.Debug("imported start data", "path", opts.dataPath, "rows", n)
	}

	if cliMode {
		return runCLI(s, opts.args)
	}
	return runTUI(s)
}

func newSession(cfg *config.Config, opts options, cliMode bool) (*session, error) {
	s := &session{cfg: cfg}

	logger, closeLog, err := newLogger(cfg, cliMode)
	if err != nil {
		return nil, err
	}
	s.logger = logger
	s.closers = append(s.closers, closeLog)

	// Interface values stay nil unless storage is really there.
	var (
		kv       prefs.KV
		recorder csvio.Recorder
	)
	switch {
	case opts.ephemeral:
		kv = prefs.NewMemoryKV()
	default:
		db, err := storage.Open(cfg.GetDataDir())
		if err != nil {
			logger.Warn("local storage unavailable, preferences will not be saved", "err", err)
			break
		}
		s.db = db
		s.closers = append(s.closers, func() { db.Close() })
		kv = db
		recorder = db
		logger.Debug("opened local storage", "path", db.Path())
	}
	adapter := prefs.New(kv)

	var rows []table.Row
	if cfg.GetSeedData() {
		rows = table.SeedRows()
	}
	initial := table.DefaultState(rows)
	initial.RowsPerPage = cfg.GetRowsPerPage()
	initial = adapter.Load(initial)

	s.store = table.NewStore(initial, table.WithPersister(adapter), table.WithLogger(logger))
	s.closers = append(s.closers, s.store.Close)
	s.transfer = csvio.NewTransfer(s.store, recorder, logger)
	return s, nil
}

// newLogger writes to stderr in CLI mode and to the configured log file while
// the TUI owns the terminal.
func newLogger(cfg *config.Config, cliMode bool) (*log.Logger, func(), error) {
	level := cfg.GetLogLevel()

	if cliMode {
		// Info lines would interleave with command output.
		if level == log.InfoLevel {
			level = log.WarnLevel
		}
		logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, Prefix: "datatable"})
		return logger, func() {}, nil
	}

	path := cfg.GetLogFile()
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	if err := os.MkdirAll(cfg.GetDataDir(), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, func() { f.Close() }, nil
}

// runCLI runs one command and exits.
func runCLI(s *session, args []string) error {
	var audit cli.AuditLog
	if s.db != nil {
		audit = s.db
	}

	handler := cli.NewHandler(s.store, s.transfer, audit, s.cfg, version)
	ctx := cli.NewLocalContext(args, os.Stdout, os.Stderr)
	if err := handler.HandleLocal(ctx); err != nil {
		s.logger.Debug("command failed", "command", args[0], "err", err)
		return errCommandFailed
	}
	return nil
}

// runTUI runs the interactive TUI.
func runTUI(s *session) error {
	dir, pattern := s.cfg.GetImportSource()
	discovery, err := csvio.NewDiscovery(dir, pattern, s.logger)
	if err != nil {
		s.logger.Warn("CSV discovery unavailable", "err", err)
	} else {
		if err := discovery.Start(); err != nil {
			s.logger.Warn("failed to start CSV discovery", "dir", dir, "err", err)
		}
		defer discovery.Stop()
	}

	// Start config watcher for hot-reloading
	if s.cfg.Path() != "" {
		watcher, err := config.NewWatcher(s.cfg, s.logger)
		if err != nil {
			s.logger.Warn("failed to create config watcher", "err", err)
		} else {
			watcher.OnReload(reloadHandler(s, discovery))
			if err := watcher.Start(); err != nil {
				s.logger.Warn("failed to start config watcher", "err", err)
			} else {
				defer watcher.Stop()
			}
		}
	}

	// Get terminal size
	width, height := 80, 24
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	s.logger.Info("starting", "version", version, "rows", len(s.store.Snapshot().Rows))
	app := tui.NewApp(s.store, s.transfer, discovery, s.cfg, width, height)
	return tui.Run(app, tea.WithAltScreen())
}

// reloadHandler applies config changes that matter while running: the page
// size and the import source.
func reloadHandler(s *session, discovery *csvio.Discovery) func(*config.Config) {
	rowsPerPage := s.cfg.GetRowsPerPage()
	return func(cfg *config.Config) {
		if n := cfg.GetRowsPerPage(); n != rowsPerPage {
			rowsPerPage = n
			s.store.SetRowsPerPage(n)
		}
		if discovery != nil {
			if err := discovery.SetSource(cfg.GetImportSource()); err != nil {
				s.logger.Warn("failed to rescan import directory", "err", err)
			}
		}
	}
}
