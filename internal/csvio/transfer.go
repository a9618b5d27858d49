package csvio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/johan-st/datatable/internal/table"
)

// Audit actions recorded for transfers.
const (
	ActionImport = "import"
	ActionExport = "export"
)

// Recorder keeps a log of completed transfers.
type Recorder interface {
	RecordAudit(action string, details map[string]any) error
}

// Transfer moves rows between a Store and CSV files.
type Transfer struct {
	store    *table.Store
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

// NewTransfer creates a Transfer for store. recorder and logger may be nil.
func NewTransfer(store *table.Store, recorder Recorder, logger *log.Logger) *Transfer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Transfer{
		store:    store,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// ImportFile parses the CSV file at path and replaces the store's rows with
// its contents. On error the store is left untouched.
func (t *Transfer) ImportFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV file: %w", err)
	}
	defer f.Close()
	return t.Import(f, path)
}

// Import parses CSV from r and replaces the store's rows. source names the
// input in the audit log.
func (t *Transfer) Import(r io.Reader, source string) (int, error) {
	rows, err := Parse(r, t.store.Snapshot().Columns, t.now())
	if err != nil {
		t.logger.Warn("import failed", "source", source, "err", err)
		return 0, err
	}

	t.store.SetData(rows)
	t.logger.Info("imported rows", "source", source, "rows", len(rows))
	t.record(ActionImport, map[string]any{"source": source, "rows": len(rows)})
	return len(rows), nil
}

// Export writes the store's rows to a new file in dir and returns its path.
// The file appears under its final name only once fully written.
func (t *Transfer) Export(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	snapshot := t.store.Snapshot()

	var buf bytes.Buffer
	if err := Encode(&buf, snapshot.Rows, snapshot.Columns); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(t.now()))
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	t.logger.Info("exported rows", "path", path, "rows", len(snapshot.Rows))
	t.record(ActionExport, map[string]any{"path": path, "rows": len(snapshot.Rows)})
	return path, nil
}

// WriteTo encodes the store's rows to w.
func (t *Transfer) WriteTo(w io.Writer) error {
	snapshot := t.store.Snapshot()
	return Encode(w, snapshot.Rows, snapshot.Columns)
}

func (t *Transfer) record(action string, details map[string]any) {
	if t.recorder == nil {
		return
	}
	if err := t.recorder.RecordAudit(action, details); err != nil {
		t.logger.Debug("audit record failed", "action", action, "err", err)
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
