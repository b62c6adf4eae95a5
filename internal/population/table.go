// Package population holds the tabular population a sampling run draws from.
// A Table is an ordered set of rows with a header-derived column set; cell
// values are strings and the empty string marks a missing value (blank CSV
// cell or SQL NULL).
package population

import (
	"fmt"
	"strconv"
)

// Row is one population record. Index is the zero-based position in source
// order and doubles as the fallback identifier when no id column is set.
type Row struct {
	Index  int
	Values []string
}

// Table is an in-memory population. Rows keep their source order for the
// lifetime of a run; nothing mutates them after load.
type Table struct {
	Columns []string
	Rows    []Row

	colIndex map[string]int
}

// NewTable builds an empty table for the given header. Duplicate column
// names are rejected because stratify and id lookups would be ambiguous.
func NewTable(columns []string) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", c)
		}
		idx[c] = i
	}
	return &Table{Columns: append([]string(nil), columns...), colIndex: idx}, nil
}

// Append adds one row in source order. Short records are padded with missing
// values so every row is aligned with the header.
func (t *Table) Append(values []string) {
	row := Row{Index: len(t.Rows), Values: make([]string, len(t.Columns))}
	copy(row.Values, values)
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether the header contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Value returns the cell for the named column, and whether the column exists.
// A present column with a blank cell returns ("", true).
func (t *Table) Value(row Row, column string) (string, bool) {
	i, ok := t.colIndex[column]
	if !ok || i >= len(row.Values) {
		return "", ok
	}
	return row.Values[i], true
}

// Identifier returns the row's identity for the sampling summary: the id
// column's value when one is configured and non-blank, else the positional
// index rendered as a decimal string.
func (t *Table) Identifier(row Row, idColumn string) string {
	if idColumn != "" {
		if v, ok := t.Value(row, idColumn); ok && v != "" {
			return v
		}
	}
	return strconv.Itoa(row.Index)
}

// Size returns the population size.
func (t *Table) Size() int { return len(t.Rows) }
