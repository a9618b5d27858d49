// Package csvio converts between table rows and CSV, and finds CSV files to
// import.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/johan-st/datatable/internal/table"
)

var (
	// ErrNoData is returned by Parse when the input has no data rows.
	ErrNoData = errors.New("no valid data found in CSV file")

	// ErrNothingToExport is returned by Encode for an empty row set.
	ErrNothingToExport = errors.New("no rows to export")
)

// ParseError reports a structural problem in the CSV input.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("CSV parsing error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("CSV parsing error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const bom = "\ufeff"

// Parse reads CSV with a header row into rows. Headers name row fields; a
// header equal to a column label (and to no column id) maps to that column's
// id, so exported files import back. Rows without an id get one derived from
// now and their index.
//
// A quote inside an unquoted field is kept as text. A quoted field that is
// never closed is an error, as is a row whose field count differs from the
// header's.
func Parse(r io.Reader, columns []table.ColumnConfig, now time.Time) ([]table.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte(bom))
	if line, open := unclosedQuote(data); open {
		return nil, &ParseError{Line: line, Err: csv.ErrQuote}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, parseError(err)
	}
	fields := headerFields(header, columns)

	var rows []table.Row
	for index := 0; ; index++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		rows = append(rows, buildRow(fields, record, now, index))
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// unclosedQuote reports the line of a quoted field that runs to the end of
// data. A quote only opens a field at the start of the field; "" inside a
// quoted field is an escaped quote.
func unclosedQuote(data []byte) (line int, open bool) {
	cur := 1
	fieldStart := true
	for i := 0; i < len(data); i++ {
		c := data[i]
		if open {
			switch {
			case c == '"' && i+1 < len(data) && data[i+1] == '"':
				i++
			case c == '"' && (i+1 == len(data) || strings.IndexByte(",\r\n", data[i+1]) >= 0):
				open = false
			case c == '\n':
				cur++
			}
			continue
		}
		switch c {
		case '"':
			if fieldStart {
				open, line = true, cur
			}
		case ',':
			fieldStart = true
			continue
		case '\n':
			cur++
			fieldStart = true
			continue
		}
		fieldStart = false
	}
	return line, open
}

func parseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}

// headerFields maps each header cell to the row field it fills.
func headerFields(header []string, columns []table.ColumnConfig) []string {
	ids := make(map[string]bool, len(columns))
	byLabel := make(map[string]string, len(columns))
	for _, c := range columns {
		ids[c.ID] = true
		if _, seen := byLabel[c.Label]; !seen {
			byLabel[c.Label] = c.ID
		}
	}

	fields := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case h == "":
		case ids[h] || table.IsKnownField(h):
			fields[i] = h
		case byLabel[h] != "":
			fields[i] = byLabel[h]
		default:
			fields[i] = h
		}
	}
	return fields
}

func buildRow(fields, record []string, now time.Time, index int) table.Row {
	var row table.Row
	var age string
	for i, field := range fields {
		if field == "" || i >= len(record) {
			continue
		}
		value := record[i]
		switch field {
		case table.FieldID:
			row.ID = value
		case table.FieldAge:
			age = value
		default:
			row.Set(field, table.String(value))
		}
	}
	if row.ID == "" {
		row.ID = ImportedID(now, index)
	}
	row.Age = table.AgeOf(table.CoerceInt(age))
	return row
}

// ImportedID is the id given to the index-th imported row that has none.
func ImportedID(now time.Time, index int) string {
	return "imported-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(index)
}

// Encode writes rows as CSV: a header of the visible column labels, then one
// line per row with the visible values. Null and missing values are empty.
func Encode(w io.Writer, rows []table.Row, columns []table.ColumnConfig) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	visible := table.VisibleColumns(columns)

	cw := csv.NewWriter(w)
	header := make([]string, len(visible))
	for i, c := range visible {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(visible))
	for _, row := range rows {
		for i, c := range visible {
			v, _ := row.Get(c.ID)
			record[i] = v.Text()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename returns the export file name for the UTC date of t.
func ExportFilename(t time.Time) string {
	return "table-export-" + t.UTC().Format(time.DateOnly) + ".csv"
}
