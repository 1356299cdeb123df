package interp

import (
	"fmt"
	"log"

	nerr "nctrace/internal/errors"
	"nctrace/internal/ncstate"
	"nctrace/internal/parser"
)

// AssignResult carries enough of an assignment's outcome for the block
// projector to decide whether to publish an axis cell into the row.
type AssignResult struct {
	Name   string
	Value  float64
	IsAxis bool
}

// InterpretAssignment handles all four assignment shapes from §4.2:
// single-character shorthand, IC(..) axis increment, ordinary
// expression store, and array-cell store.
func InterpretAssignment(node *parser.Node, state *ncstate.State) (AssignResult, error) {
	if node.Rule != parser.RuleAssignment || len(node.Children) != 2 {
		return AssignResult{}, nerr.New(nerr.UnexpectedRule, "malformed assignment node")
	}
	target := node.Children[0]
	rhs := node.Children[1]

	switch target.Rule {
	case parser.RuleVarSingle:
		value, err := EvaluateValueNode(rhs, state)
		if err != nil {
			return AssignResult{}, err
		}
		return storeAssignment(target.Text, value, true, state)

	case parser.RuleIdentifier:
		name := target.Text
		if rhs.Rule == parser.RuleAxisIncr {
			value, translate, err := evaluateAxisIncrement(name, rhs, state)
			if err != nil {
				return AssignResult{}, err
			}
			return storeAssignment(name, value, translate, state)
		}
		value, err := EvaluateExpression(rhs, state)
		if err != nil {
			return AssignResult{}, err
		}
		return storeAssignment(name, value, true, state)

	case parser.RuleVarArray:
		name, err := ResolveArrayCellName(target, state)
		if err != nil {
			return AssignResult{}, err
		}
		value, err := EvaluateExpression(rhs, state)
		if err != nil {
			return AssignResult{}, err
		}
		if err := state.SetVariable(name, value); err != nil {
			return AssignResult{}, err
		}
		return AssignResult{Name: name, Value: value}, nil
	}

	return AssignResult{}, nerr.New(nerr.UnexpectedRule, "unexpected assignment target %q", target.Rule)
}

func storeAssignment(name string, value float64, translate bool, state *ncstate.State) (AssignResult, error) {
	if state.IsAxis(name) {
		effective, err := state.UpdateAxis(name, value, translate)
		if err != nil {
			return AssignResult{}, err
		}
		return AssignResult{Name: name, Value: effective, IsAxis: true}, nil
	}
	if err := state.SetVariable(name, value); err != nil {
		return AssignResult{}, err
	}
	return AssignResult{Name: name, Value: value}, nil
}

// evaluateAxisIncrement computes current_axis_value + expr. When name
// is not a declared axis, this is treated as an ordinary translating
// expression assignment and axes is never consulted — the Open
// Question resolution recorded in SPEC_FULL.md §9.
func evaluateAxisIncrement(name string, node *parser.Node, state *ncstate.State) (value float64, translate bool, err error) {
	if len(node.Children) != 1 {
		return 0, false, nerr.New(nerr.UnexpectedRule, "malformed axis_increment node")
	}
	delta, err := EvaluateExpression(node.Children[0], state)
	if err != nil {
		return 0, false, err
	}
	if !state.IsAxis(name) {
		return delta, true, nil
	}
	current, wasSet := state.AxisValue(name)
	if !wasSet {
		log.Printf("warning: IC(..) read axis %q before it was ever set; treating its prior value as 0", name)
		current = 0
	}
	return current + delta, false, nil
}

// InterpretDefinition implements DEF: introduces a variable at 0.0,
// failing AxisUsedAsVariable if it collides with a declared axis (I1).
// The optional type annotation is parsed but never consulted — all
// variables are float64.
func InterpretDefinition(node *parser.Node, state *ncstate.State) error {
	if node.Rule != parser.RuleDefinition || len(node.Children) == 0 {
		return nerr.New(nerr.UnexpectedRule, "malformed definition node")
	}
	name := node.Children[0].Text
	return state.DefineVariable(name)
}

// InterpretAssignmentMulti implements `array = (v1, v2, …)`: values pair
// to synthesized cell names in order; value_none entries (consecutive
// commas, or a trailing comma) leave that cell untouched.
func InterpretAssignmentMulti(node *parser.Node, state *ncstate.State) error {
	if node.Rule != parser.RuleAssignMulti || len(node.Children) == 0 {
		return nerr.New(nerr.UnexpectedRule, "malformed assignment_multi node")
	}
	target := node.Children[0]
	items := node.Children[1:]
	if target.Rule != parser.RuleVarArray {
		return nerr.New(nerr.UnexpectedRule, "assignment_multi target must be an array cell, got %q", target.Rule)
	}

	names, err := arrayCellNames(target, state)
	if err != nil {
		return err
	}
	if len(items) > len(names) {
		return nerr.New(nerr.InvalidElementCount, "assignment supplies %d values for %d cells", len(items), len(names))
	}

	for i, item := range items {
		if item.Rule == parser.RuleValueNone {
			continue
		}
		value, err := EvaluateValueNode(item, state)
		if err != nil {
			return err
		}
		if err := state.SetVariable(names[i], value); err != nil {
			return err
		}
	}
	return nil
}

// ResolveArrayCellName evaluates a variable_array node's indices and
// returns the last Cartesian-product cell name — the canonical
// read/write target preserved for compatibility (§4.3, §9 Design Notes).
func ResolveArrayCellName(node *parser.Node, state *ncstate.State) (string, error) {
	names, err := arrayCellNames(node, state)
	if err != nil {
		return "", err
	}
	return names[len(names)-1], nil
}

func arrayCellNames(node *parser.Node, state *ncstate.State) ([]string, error) {
	if node.Rule != parser.RuleVarArray || len(node.Children) != 2 {
		return nil, nerr.New(nerr.UnexpectedRule, "malformed variable_array node")
	}
	ident := node.Children[0].Text
	idxNode := node.Children[1]
	if idxNode.Rule != parser.RuleIndices || len(idxNode.Children) < 1 || len(idxNode.Children) > 3 {
		return nil, nerr.New(nerr.ParseError, "array indices support 1 to 3 dimensions, got %d", len(idxNode.Children))
	}

	bounds := make([]int, len(idxNode.Children))
	for i, e := range idxNode.Children {
		v, err := EvaluateExpression(e, state)
		if err != nil {
			return nil, err
		}
		bounds[i] = truncToInt(v)
		if bounds[i] < 0 {
			return nil, nerr.New(nerr.InvalidElementCount, "array index must be >= 0, got %d", bounds[i])
		}
	}
	return synthesizeCellNames(ident, bounds), nil
}

// synthesizeCellNames builds the Cartesian product of cell names
// identifier[0..bounds[0]], [0..bounds[1]], [0..bounds[2]] in
// lexicographic order with the outermost index varying slowest.
func synthesizeCellNames(ident string, bounds []int) []string {
	var names []string
	switch len(bounds) {
	case 1:
		for i := 0; i <= bounds[0]; i++ {
			names = append(names, fmt.Sprintf("%s[%d]", ident, i))
		}
	case 2:
		for i := 0; i <= bounds[0]; i++ {
			for j := 0; j <= bounds[1]; j++ {
				names = append(names, fmt.Sprintf("%s[%d,%d]", ident, i, j))
			}
		}
	case 3:
		for i := 0; i <= bounds[0]; i++ {
			for j := 0; j <= bounds[1]; j++ {
				for k := 0; k <= bounds[2]; k++ {
					names = append(names, fmt.Sprintf("%s[%d,%d,%d]", ident, i, j, k))
				}
			}
		}
	}
	return names
}
