package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	datatable "github.com/johan-st/datatable/internal/table"
)

var errAgeNotNumber = errors.New("must be a number")

// validateAge reports whether s can be saved as an age. Blank counts as zero.
func validateAge(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return errAgeNotNumber
	}
	return nil
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	return ti
}

// rowForm edits the visible fields of one row.
type rowForm struct {
	rowID  string // empty when adding a row
	fields []datatable.ColumnConfig
	inputs []textinput.Model
	focus  int
}

func newRowForm(row datatable.Row, columns []datatable.ColumnConfig) *rowForm {
	f := &rowForm{
		rowID:  row.ID,
		fields: columns,
		inputs: make([]textinput.Model, len(columns)),
	}
	for i, col := range columns {
		f.inputs[i] = newInput(col.Label)
		if v, ok := row.Get(col.ID); ok {
			f.inputs[i].SetValue(v.Text())
		}
	}
	return f
}

func (f *rowForm) adding() bool { return f.rowID == "" }

// focusField moves focus to field i, wrapping around.
func (f *rowForm) focusField(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *rowForm) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *rowForm) value(field string) (string, bool) {
	for i, col := range f.fields {
		if col.ID == field {
			return f.inputs[i].Value(), true
		}
	}
	return "", false
}

// fieldError returns the validation error for field, if any.
func (f *rowForm) fieldError(field string) error {
	if field != datatable.FieldAge {
		return nil
	}
	v, ok := f.value(field)
	if !ok {
		return nil
	}
	return validateAge(v)
}

// apply writes the form values onto row. Extra fields left blank are not
// added to rows that lack them.
func (f *rowForm) apply(row datatable.Row) datatable.Row {
	row = row.Clone()
	for i, col := range f.fields {
		v := f.inputs[i].Value()
		if v == "" && !datatable.IsKnownField(col.ID) {
			if _, ok := row.Get(col.ID); !ok {
				continue
			}
		}
		row.Set(col.ID, datatable.String(v))
	}
	return row
}

// columnForm collects the id and label of a new column.
type columnForm struct {
	id    textinput.Model
	label textinput.Model
	focus int
}

func newColumnForm() *columnForm {
	f := &columnForm{
		id:    newInput("id, e.g. start_date"),
		label: newInput("label, e.g. Start Date"),
	}
	f.id.Focus()
	return f
}

func (f *columnForm) toggleFocus() tea.Cmd {
	if f.focus == 0 {
		f.focus = 1
		f.id.Blur()
		return f.label.Focus()
	}
	f.focus = 0
	f.label.Blur()
	return f.id.Focus()
}

func (f *columnForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.id, cmd = f.id.Update(msg)
	} else {
		f.label, cmd = f.label.Update(msg)
	}
	return cmd
}

// values returns the trimmed id and label and whether both are filled in.
func (f *columnForm) values() (id, label string, ok bool) {
	id = strings.TrimSpace(f.id.Value())
	label = strings.TrimSpace(f.label.Value())
	return id, label, id != "" && label != ""
}
