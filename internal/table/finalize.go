package table

import (
	"sort"

	"nctrace/internal/config"
	nerr "nctrace/internal/errors"
	"nctrace/internal/value"
)

// fixed columns carry a settled dtype and are never treated as axes.
var fixedColumns = map[string]Dtype{
	"N":             DtypeInt64,
	"T":             DtypeString,
	"M":             DtypeStrList,
	"function_call": DtypeString,
	"comment":       DtypeString,
}

// Finalize implements the tabular finalizer: schema union across rows,
// column classification, typing, fixed ordering, and forward-fill of
// modal state. rows is taken in block order, exactly as interp.Run
// returned it; a Row's own map type is intentionally not referenced
// here so this package stays independent of internal/interp.
func Finalize(rows []map[string]value.Value, cfg *config.Config) (*Table, error) {
	order := unionSchema(rows)
	groupKind := classifyGroups(cfg)
	sampleTag := sampleTags(rows)

	axisSet := make(map[string]bool, len(cfg.ResolvedAxes()))
	for _, axis := range cfg.ResolvedAxes() {
		axisSet[axis] = true
	}

	dtypes := make(map[string]Dtype, len(order))
	for _, name := range order {
		dt := classifyColumn(name, groupKind, sampleTag[name])
		// Strict mode only gates the axis classification ambiguity: a
		// column that classified as String either came from a modal/
		// non-modal group or from modalGroupFor's G-word fallback, neither
		// of which is a candidate axis, so strict mode leaves them alone.
		if cfg.StrictColumns && dt == DtypeFloat64 && fixedColumns[name] == "" && !axisSet[name] {
			return nil, nerr.New(nerr.UnknownColumn, "column %q is not a fixed column, modal group, or declared axis", name)
		}
		dtypes[name] = dt
	}

	t := &Table{
		ColumnOrder: orderColumns(order, cfg),
		Columns:     make(map[string]*Column, len(order)),
		NRows:       len(rows),
	}
	for _, name := range order {
		t.Columns[name] = newColumn(name, dtypes[name], len(rows))
	}

	for i, row := range rows {
		for name, v := range row {
			col := t.Columns[name]
			cast, err := castCell(v, col.Dtype)
			if err != nil {
				return nil, nerr.New(nerr.TypeMismatch, "column %q, row %d: %v", name, i, err)
			}
			col.Cells[i] = cast
		}
	}

	if !cfg.DisableForwardFill {
		forwardFill(t, cfg, groupKind)
	}

	return t, nil
}

// unionSchema collects every column name that appears in any row, in
// first-encounter order by row; names first seen in the same row are
// sorted by name, since a row's map has no order of its own.
func unionSchema(rows []map[string]value.Value) []string {
	seen := make(map[string]bool)
	var order []string
	for _, row := range rows {
		var fresh []string
		for name := range row {
			if !seen[name] {
				seen[name] = true
				fresh = append(fresh, name)
			}
		}
		sort.Strings(fresh)
		order = append(order, fresh...)
	}
	return order
}

type groupKind int

const (
	groupNone groupKind = iota
	groupModal
	groupNonModal
)

// classifyGroups inverts cfg.ModalGroups/NonModalGroups (command -> group
// name) into a group-name -> kind lookup, since row columns are keyed by
// group name (see interp/block.go's modalGroupFor).
func classifyGroups(cfg *config.Config) map[string]groupKind {
	out := make(map[string]groupKind)
	for _, group := range cfg.ModalGroups {
		out[group] = groupModal
	}
	for _, group := range cfg.NonModalGroups {
		out[group] = groupNonModal
	}
	return out
}

// classifyColumn picks a column's dtype. Fixed columns and recognized
// modal/non-modal group names are settled by name alone. Everything else
// is an axis candidate *unless* its actual cell values are strings: that
// only happens for modalGroupFor's fallback column (an ISO G-word with
// no entry in cfg.ModalGroups/NonModalGroups gets its own lowercased
// name as a column, still holding the literal command text), which must
// stay a String column rather than being cast to Float64 and rejected.
func classifyColumn(name string, groupKind map[string]groupKind, sample value.Tag) Dtype {
	if dt, ok := fixedColumns[name]; ok {
		return dt
	}
	if _, ok := groupKind[name]; ok {
		return DtypeString
	}
	if sample == value.TagStr || sample == value.TagStrList {
		return DtypeString
	}
	return DtypeFloat64
}

// sampleTags records, for every column, the Tag of the first non-null
// cell encountered across rows (TagNull if the column is all-null).
func sampleTags(rows []map[string]value.Value) map[string]value.Tag {
	out := make(map[string]value.Tag)
	for _, row := range rows {
		for name, v := range row {
			if v.IsNull() {
				continue
			}
			if _, ok := out[name]; ok {
				continue
			}
			out[name] = v.Tag()
		}
	}
	return out
}

// orderColumns applies the fixed column order: N, declared axes in
// configured order, every other non-fixed column (further axes and
// G-group columns alike) in encounter order, T, M, function_call, comment.
func orderColumns(present []string, cfg *config.Config) []string {
	inPresent := make(map[string]bool, len(present))
	for _, name := range present {
		inPresent[name] = true
	}
	placed := make(map[string]bool, len(present))

	var out []string
	place := func(name string) {
		if inPresent[name] && !placed[name] {
			out = append(out, name)
			placed[name] = true
		}
	}

	place("N")
	for _, axis := range cfg.ResolvedAxes() {
		place(axis)
	}
	for _, name := range present {
		if fixedColumns[name] != "" {
			continue
		}
		place(name)
	}
	place("T")
	place("M")
	place("function_call")
	place("comment")

	return out
}

func castCell(v value.Value, dtype Dtype) (value.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	switch dtype {
	case DtypeInt64:
		if _, ok := v.Int(); !ok {
			return value.Value{}, nerr.New(nerr.TypeMismatch, "expected int64 cell, got %v", v)
		}
	case DtypeFloat64:
		if _, ok := v.Float(); !ok {
			return value.Value{}, nerr.New(nerr.TypeMismatch, "expected float64 cell, got %v", v)
		}
	case DtypeString:
		if _, ok := v.Str(); !ok {
			return value.Value{}, nerr.New(nerr.TypeMismatch, "expected string cell, got %v", v)
		}
	case DtypeStrList:
		if _, ok := v.StrList(); !ok {
			return value.Value{}, nerr.New(nerr.TypeMismatch, "expected list<string> cell, got %v", v)
		}
	}
	return v, nil
}

// forwardFill propagates the last non-null value downward in every modal
// G-group column and every axis (Float64) column. Non-modal group
// columns, N, T, M, function_call, and comment never forward-fill: they
// describe what a single block did, not persistent machine state.
func forwardFill(t *Table, cfg *config.Config, groupKind map[string]groupKind) {
	for _, name := range t.ColumnOrder {
		col := t.Columns[name]
		if !fillable(name, col.Dtype, groupKind) {
			continue
		}
		var last value.Value
		if def, ok := cfg.ModalDefaults[name]; ok {
			last = value.Str(def)
		}
		haveLast := !last.IsNull()
		for i, cell := range col.Cells {
			if cell.IsNull() {
				if haveLast {
					col.Cells[i] = last
				}
				continue
			}
			last = cell
			haveLast = true
		}
	}
}

func fillable(name string, dtype Dtype, groupKind map[string]groupKind) bool {
	if dtype == DtypeFloat64 {
		return true
	}
	return groupKind[name] == groupModal
}
