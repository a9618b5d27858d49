package table

import (
	"errors"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Known row field names.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldAge        = "age"
	FieldRole       = "role"
	FieldDepartment = "department"
	FieldLocation   = "location"
)

var knownFields = []string{
	FieldID, FieldName, FieldEmail, FieldAge, FieldRole, FieldDepartment, FieldLocation,
}

// IsKnownField reports whether name is one of the typed row fields.
func IsKnownField(name string) bool {
	return slices.Contains(knownFields, name)
}

// Row is one record. The typed fields cover the known columns; anything else
// an import brings along lives in Extra.
type Row struct {
	ID         string
	Name       string
	Email      string
	Age        *int // nil when unknown
	Role       string
	Department string
	Location   string

	Extra map[string]Value
}

// Get returns the value of a field and whether the row carries it.
func (r Row) Get(field string) (Value, bool) {
	switch field {
	case FieldID:
		return String(r.ID), true
	case FieldName:
		return String(r.Name), true
	case FieldEmail:
		return String(r.Email), true
	case FieldAge:
		if r.Age == nil {
			return Null(), true
		}
		return Int(*r.Age), true
	case FieldRole:
		return String(r.Role), true
	case FieldDepartment:
		return String(r.Department), true
	case FieldLocation:
		return String(r.Location), true
	}
	v, ok := r.Extra[field]
	return v, ok
}

// Set writes a field. The id is immutable and is ignored here; age is
// coerced to an integer.
func (r *Row) Set(field string, v Value) {
	switch field {
	case FieldID:
		return
	case FieldName:
		r.Name = v.Text()
	case FieldEmail:
		r.Email = v.Text()
	case FieldAge:
		if v.IsNull() {
			r.Age = nil
			return
		}
		var age int
		if v.IsNumber() {
			age = int(v.Float())
		} else {
			age = CoerceInt(v.Text())
		}
		r.Age = &age
	case FieldRole:
		r.Role = v.Text()
	case FieldDepartment:
		r.Department = v.Text()
	case FieldLocation:
		r.Location = v.Text()
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]Value)
		}
		r.Extra[field] = v
	}
}

// Fields lists the fields present on the row: known fields first, then
// extras in sorted order.
func (r Row) Fields() []string {
	fields := make([]string, 0, len(knownFields)+len(r.Extra))
	fields = append(fields, knownFields...)
	extras := slices.Sorted(maps.Keys(r.Extra))
	for _, k := range extras {
		if !IsKnownField(k) {
			fields = append(fields, k)
		}
	}
	return fields
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := r
	if r.Age != nil {
		age := *r.Age
		out.Age = &age
	}
	if r.Extra != nil {
		out.Extra = maps.Clone(r.Extra)
	}
	return out
}

// AgeOf is a convenience for building rows with a known age.
func AgeOf(n int) *int { return &n }

// CoerceInt parses a leading integer the way a lenient form field would:
// optional surrounding space, optional sign, then digits. Anything that does
// not start with a digit yields 0.
func CoerceInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, strconv.IntSize)
	if errors.Is(err, strconv.ErrRange) {
		// Saturate instead of wrapping.
		if neg {
			return math.MinInt
		}
		return math.MaxInt
	}
	if neg {
		return int(-n)
	}
	return int(n)
}
