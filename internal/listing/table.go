// Package listing holds the in-memory record table shared by the list pages:
// column-toggled sorting, client-side text filtering and plain-text rendering.
package listing

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Placeholder is rendered as the only row of an empty table.
const Placeholder = "Nenhum registro encontrado"

// Column describes one table column.
type Column[T any] struct {
	Header string
	// Text is the rendered cell value.
	Text func(T) string
	// Key is the lexical sort key. Defaults to Text.
	Key func(T) string
	// Number makes the column sort numerically.
	Number func(T) float64
}

// Table is the record set of a list page plus its sort direction.
type Table[T any] struct {
	columns   []Column[T]
	records   []T
	ascending bool
}

// New creates an empty table. The first sort is ascending.
func New[T any](columns ...Column[T]) *Table[T] {
	return &Table[T]{columns: columns, ascending: true}
}

// Columns returns the column definitions.
func (t *Table[T]) Columns() []Column[T] {
	return t.columns
}

// Set replaces the records wholesale.
func (t *Table[T]) Set(records []T) {
	t.records = append([]T(nil), records...)
}

// Records returns the current records in display order.
func (t *Table[T]) Records() []T {
	return t.records
}

// Len returns the number of records.
func (t *Table[T]) Len() int {
	return len(t.records)
}

// Ascending reports the direction the next Sort call will use.
func (t *Table[T]) Ascending() bool {
	return t.ascending
}

// Sort orders the records by column index and flips the direction for the
// next call, so sorting the same column twice reverses it.
func (t *Table[T]) Sort(index int) error {
	if index < 0 || index >= len(t.columns) {
		return fmt.Errorf("column %d out of range (0-%d)", index, len(t.columns)-1)
	}
	col := t.columns[index]
	asc := t.ascending

	sort.SliceStable(t.records, func(i, j int) bool {
		a, b := t.records[i], t.records[j]
		if asc {
			return compare(col, a, b) < 0
		}
		return compare(col, b, a) < 0
	})
	t.ascending = !t.ascending
	return nil
}

func compare[T any](col Column[T], a, b T) int {
	if col.Number != nil {
		x, y := col.Number(a), col.Number(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	key := col.Key
	if key == nil {
		key = col.Text
	}
	return strings.Compare(key(a), key(b))
}

// Filter returns the records where any of the fields contains query,
// ignoring case. An empty query returns every record.
func Filter[T any](records []T, query string, fields ...func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	var out []T
	for _, r := range records {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(r)), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Render writes the table as aligned text: a header line, then one line per
// record or the placeholder row when empty.
func Render[T any](w io.Writer, t *Table[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	if len(t.records) == 0 {
		fmt.Fprintln(tw, Placeholder)
		return tw.Flush()
	}

	cells := make([]string, len(t.columns))
	for _, r := range t.records {
		for i, c := range t.columns {
			cells[i] = sanitize(c.Text(r))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// Rows returns the rendered cell values, for exporters.
func Rows[T any](t *Table[T]) (headers []string, rows [][]string) {
	for _, c := range t.columns {
		headers = append(headers, c.Header)
	}
	for _, r := range t.records {
		row := make([]string, len(t.columns))
		for i, c := range t.columns {
			row[i] = c.Text(r)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}
