package sink

import (
	"encoding/csv"
	"os"

	"nctrace/internal/table"
	"nctrace/internal/value"
)

// CSVSink writes a table to a plain CSV file, following the header-then-
// rows shape of dataframe.go's ToCSV. Unlike ToCSV it preserves the
// table's fixed column order instead of sorting headers, and it explodes
// the M column: a block with k M-commands becomes k output rows, one
// per command, each otherwise identical to the source row.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Write(t *table.Table) error {
	file, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(t.ColumnOrder); err != nil {
		return err
	}

	mIndex := -1
	for i, name := range t.ColumnOrder {
		if name == "M" {
			mIndex = i
		}
	}

	for i := 0; i < t.NRows; i++ {
		row := t.Row(i)
		for _, rendered := range explodeRow(row, mIndex) {
			if err := w.Write(rendered); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

// explodeRow renders one Table row as one or more CSV records: a row
// whose M cell holds a non-empty list becomes one record per M command,
// with every other column repeated verbatim; a row with no M commands
// becomes exactly one record with an empty M field.
func explodeRow(row []value.Value, mIndex int) [][]string {
	if mIndex < 0 {
		return [][]string{renderRow(row, mIndex, "")}
	}
	codes, ok := row[mIndex].StrList()
	if !ok || len(codes) == 0 {
		return [][]string{renderRow(row, mIndex, "")}
	}
	out := make([][]string, len(codes))
	for i, code := range codes {
		out[i] = renderRow(row, mIndex, code)
	}
	return out
}

func renderRow(row []value.Value, mIndex int, mCode string) []string {
	rendered := make([]string, len(row))
	for j, cell := range row {
		if j == mIndex {
			rendered[j] = mCode
			continue
		}
		if cell.IsNull() {
			rendered[j] = ""
			continue
		}
		rendered[j] = cell.String()
	}
	return rendered
}
