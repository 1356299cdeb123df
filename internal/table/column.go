// Package table turns an interpreter run's row-oriented output (one
// map[string]value.Value per block) into a column-oriented Table with a
// fixed schema.
package table

import "nctrace/internal/value"

// Dtype names a column's settled type, mirroring dataframe.Series.Dtype
// but drawn from the closed set the interpreter ever produces.
type Dtype string

const (
	DtypeInt64   Dtype = "int64"
	DtypeFloat64 Dtype = "float64"
	DtypeString  Dtype = "string"
	DtypeStrList Dtype = "list<string>"
)

// Column is one named, typed slice of cells, index-aligned with every
// other column in the owning Table.
type Column struct {
	Name  string
	Dtype Dtype
	Cells []value.Value
}

func newColumn(name string, dtype Dtype, nRows int) *Column {
	cells := make([]value.Value, nRows)
	for i := range cells {
		cells[i] = value.Null()
	}
	return &Column{Name: name, Dtype: dtype, Cells: cells}
}

// At returns the cell at row i, or the zero Value (Null) if i is out of
// range — callers iterate Cells directly when they need bounds safety
// elsewhere, this is for sinks indexing by row.
func (c *Column) At(i int) value.Value {
	if i < 0 || i >= len(c.Cells) {
		return value.Null()
	}
	return c.Cells[i]
}
