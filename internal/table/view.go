package table

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View is the derived, render-ready slice of the table.
type View struct {
	// Rows is the current page.
	Rows []Row
	// Total is the filtered and sorted count, before pagination.
	Total       int
	Page        int
	RowsPerPage int
	PageCount   int
	// Columns are the visible columns in display order.
	Columns []ColumnConfig
}

// Derive runs the filter, sort and paginate pipeline over a state.
func Derive(s State) View {
	sorted := FilterAndSort(s.Rows, s.SearchQuery, s.SortColumn, s.SortDirection)
	return View{
		Rows:        Paginate(sorted, s.Page, s.RowsPerPage),
		Total:       len(sorted),
		Page:        s.Page,
		RowsPerPage: s.RowsPerPage,
		PageCount:   pageCount(len(sorted), s.RowsPerPage),
		Columns:     s.VisibleColumns(),
	}
}

// FilterAndSort returns the rows matching query, stably sorted by column.
// The input slice is not modified.
func FilterAndSort(rows []Row, query, column string, dir Direction) []Row {
	out := Filter(rows, query)
	if column != "" {
		SortRows(out, column, dir)
	}
	return out
}

// Filter keeps the rows where any field contains query, case-insensitively.
// An empty query keeps everything.
func Filter(rows []Row, query string) []Row {
	if query == "" {
		return slices.Clone(rows)
	}
	needle := strings.ToLower(query)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if rowMatches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(r Row, needle string) bool {
	for _, f := range r.Fields() {
		v, ok := r.Get(f)
		if !ok || v.IsNull() {
			continue
		}
		if strings.Contains(strings.ToLower(v.Text()), needle) {
			return true
		}
	}
	return false
}

// SortRows stably sorts rows in place by column. Null or missing values go
// last regardless of direction.
func SortRows(rows []Row, column string, dir Direction) {
	col := collate.New(language.English)
	slices.SortStableFunc(rows, func(a, b Row) int {
		return compareRows(col, a, b, column, dir)
	})
}

func compareRows(col *collate.Collator, a, b Row, column string, dir Direction) int {
	av, aok := a.Get(column)
	bv, bok := b.Get(column)
	aNull := !aok || av.IsNull()
	bNull := !bok || bv.IsNull()
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return 1
	case bNull:
		return -1
	}

	var c int
	if av.IsNumber() && bv.IsNumber() {
		switch x, y := av.Float(), bv.Float(); {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else {
		c = col.CompareString(av.Text(), bv.Text())
	}
	if dir == Desc {
		return -c
	}
	return c
}

// Paginate returns the window [page*perPage, page*perPage+perPage). Pages
// outside the data yield an empty slice.
func Paginate(rows []Row, page, perPage int) []Row {
	if page < 0 || perPage <= 0 {
		return []Row{}
	}
	start := page * perPage
	if start >= len(rows) {
		return []Row{}
	}
	end := min(start+perPage, len(rows))
	return rows[start:end]
}

func pageCount(total, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
