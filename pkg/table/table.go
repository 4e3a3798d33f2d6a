package table

import "fmt"

// Table is an ordered-column, string-celled tabular value. It is the unit of
// exchange between dataset ingestion, the cleaning pipeline, and the
// reporting functions. Cells are kept as raw strings so a cleaned table
// round-trips byte-identically through CSV export.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds an empty table with the given column headers.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Clone returns a deep copy; mutations on the copy never reach the source.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := New(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cp := make([]string, len(row))
		copy(cp, row)
		out.Rows[i] = cp
	}
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex resolves a header to its position.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// HasColumn reports whether the header exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// AppendRow adds a row, padding or truncating to the column count so every
// row stays rectangular.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Cell returns the value at (row, column name); empty string when the
// column is absent.
func (t *Table) Cell(row int, name string) string {
	idx, ok := t.ColumnIndex(name)
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// SetCell writes a value at (row, column name); no-op when absent.
func (t *Table) SetCell(row int, name, value string) {
	idx, ok := t.ColumnIndex(name)
	if !ok || row < 0 || row >= len(t.Rows) {
		return
	}
	t.Rows[row][idx] = value
}

// Column returns a copy of the named column's values, nil when absent.
func (t *Table) Column(name string) []string {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// SetColumn replaces the named column's values in place.
func (t *Table) SetColumn(name string, values []string) error {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("column %q not present", name)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}

// RenameColumn renames a header in place; no-op when the old name is absent.
func (t *Table) RenameColumn(oldName, newName string) {
	if idx, ok := t.ColumnIndex(oldName); ok {
		t.Columns[idx] = newName
	}
}

// EnsureColumn appends a column filled with the default when it is missing.
func (t *Table) EnsureColumn(name, defaultValue string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], defaultValue)
	}
}

// Filter returns a new table containing the rows for which keep reports
// true, preserving input order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := New(t.Columns...)
	for i, row := range t.Rows {
		if keep(i) {
			cp := make([]string, len(row))
			copy(cp, row)
			out.Rows = append(out.Rows, cp)
		}
	}
	return out
}
