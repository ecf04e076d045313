// Package table provides a small in-memory table with an explicit column
// order, used to carry rows between pipeline stages. It supports the handful
// of relational operations the pipeline needs: rename, strict drop, appending
// derived columns, distinct keys, and left joins.
package table

import (
	"fmt"
)

// Row maps column names to cell values. Absent weather/coordinate matches are
// represented as nil cells.
type Row map[string]any

// Table is an ordered-column collection of rows. Every row is expected to
// hold a value (possibly nil) for every column.
type Table struct {
	columns []string
	rows    []Row
}

// ErrColumnMissing is returned by strict operations when a named column is
// not present, signalling upstream schema drift.
var ErrColumnMissing = fmt.Errorf("column missing")

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{columns: append([]string(nil), columns...)}
}

// Columns returns the column names in order. The slice is a copy.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the underlying rows. Callers in later stages treat the result
// as read-only; mutating stages build a new table instead.
func (t *Table) Rows() []Row {
	return t.rows
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row. Cells for columns the row does not mention are nil.
func (t *Table) Append(r Row) {
	t.rows = append(t.rows, r)
}

// AppendColumnName declares an additional column at the end of the column
// order without populating any cells. It is a no-op if the column exists.
func (t *Table) AppendColumnName(name string) {
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
	}
}

// AddColumn appends a new column with one value per row.
func (t *Table) AddColumn(name string, values []any) error {
	if t.HasColumn(name) {
		return fmt.Errorf("add column %q: already present", name)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("add column %q: %d values for %d rows", name, len(values), len(t.rows))
	}
	t.columns = append(t.columns, name)
	for i, r := range t.rows {
		r[name] = values[i]
	}
	return nil
}

// Rename changes a column's name in place, keeping its position.
func (t *Table) Rename(old, new string) error {
	for i, c := range t.columns {
		if c == old {
			t.columns[i] = new
			for _, r := range t.rows {
				if v, ok := r[old]; ok {
					r[new] = v
					delete(r, old)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("rename %q: %w", old, ErrColumnMissing)
}

// Drop removes the named columns. Every name must be present; a missing
// column is a contract violation and returns ErrColumnMissing.
func (t *Table) Drop(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("drop %q: %w", name, ErrColumnMissing)
		}
	}
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	kept := t.columns[:0]
	for _, c := range t.columns {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	t.columns = kept
	for _, r := range t.rows {
		for name := range drop {
			delete(r, name)
		}
	}
	return nil
}

// Distinct returns each distinct key in first-occurrence order, along with
// the first row carrying it. Rows for which keyFn reports false are skipped.
func (t *Table) Distinct(keyFn func(Row) (string, bool)) []Row {
	seen := make(map[string]bool)
	var out []Row
	for _, r := range t.rows {
		key, ok := keyFn(r)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// LeftJoin returns a new table containing every row of t extended with the
// right-only columns of right. Rows join when leftKey and rightKey produce
// equal keys; unmatched left rows get nil for each right-only column, and a
// left row whose key function reports false never matches. When multiple
// right rows share a key the first wins, so the result always has exactly
// len(t.Rows()) rows.
func (t *Table) LeftJoin(right *Table, leftKey, rightKey func(Row) (string, bool)) *Table {
	rightOnly := make([]string, 0, len(right.columns))
	for _, c := range right.columns {
		if !t.HasColumn(c) {
			rightOnly = append(rightOnly, c)
		}
	}

	index := make(map[string]Row, len(right.rows))
	for _, r := range right.rows {
		key, ok := rightKey(r)
		if !ok {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = r
		}
	}

	joined := New(append(t.Columns(), rightOnly...)...)
	for _, lr := range t.rows {
		out := make(Row, len(lr)+len(rightOnly))
		for k, v := range lr {
			out[k] = v
		}
		var match Row
		if key, ok := leftKey(lr); ok {
			match = index[key]
		}
		for _, c := range rightOnly {
			if match != nil {
				out[c] = match[c]
			} else {
				out[c] = nil
			}
		}
		joined.Append(out)
	}
	return joined
}
