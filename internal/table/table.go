package table

import "nctrace/internal/value"

// Table is the finalized, column-oriented projection of an interpreter
// run: a fixed column order, one Column per name, all columns sharing
// NRows cells. Row position is the only index; there is no separate
// row-label concept.
type Table struct {
	ColumnOrder []string
	Columns     map[string]*Column
	NRows       int
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.Columns[name]
	return c, ok
}

// Row materializes row i as an ordered slice of cells, following
// ColumnOrder. Sinks use this instead of reaching into Columns directly.
func (t *Table) Row(i int) []value.Value {
	out := make([]value.Value, len(t.ColumnOrder))
	for j, name := range t.ColumnOrder {
		out[j] = t.Columns[name].At(i)
	}
	return out
}
