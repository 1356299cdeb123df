// Package interp is the tree-walking evaluator: it ports
// interpret_rules.rs's functions one-for-one onto the parser.Node tree,
// dispatching on each node's Rule tag rather than through a visitor.
package interp

import (
	"math"
	"strconv"

	nerr "nctrace/internal/errors"
	"nctrace/internal/ncstate"
	"nctrace/internal/parser"
)

// EvaluateExpression walks an "expression" node: an optional leading
// unary minus, a primary, then a flat left-to-right chain of
// (operator, primary) pairs. There is deliberately no operator
// precedence here.
func EvaluateExpression(node *parser.Node, state *ncstate.State) (float64, error) {
	if node.Rule != parser.RuleExpression {
		return 0, nerr.New(nerr.UnexpectedRule, "expected expression node, got %q", node.Rule)
	}
	if len(node.Children) == 0 {
		return 0, nerr.New(nerr.UnexpectedRule, "empty expression")
	}

	result, err := evalOperand(node.Children[0], state)
	if err != nil {
		return 0, err
	}
	for i := 1; i+1 < len(node.Children); i += 2 {
		opNode := node.Children[i]
		rhs, err := evalOperand(node.Children[i+1], state)
		if err != nil {
			return 0, err
		}
		result, err = applyOperator(opNode.Rule, opNode.Text, result, rhs)
		if err != nil {
			return 0, err
		}
	}
	return result, nil
}

func applyOperator(rule parser.Rule, text string, lhs, rhs float64) (float64, error) {
	var result float64
	switch rule {
	case parser.RuleOpAdd:
		result = lhs + rhs
	case parser.RuleOpSub:
		result = lhs - rhs
	case parser.RuleOpMul:
		result = lhs * rhs
	case parser.RuleOpDiv:
		result = lhs / rhs
	case parser.RuleOpIntDiv:
		result = intDivide(lhs, rhs)
	case parser.RuleOpMod:
		result = math.Mod(lhs, rhs)
	default:
		return 0, nerr.New(nerr.UnexpectedOperator, "unexpected arithmetic operator %q", text)
	}
	if err := checkFinite(text, result); err != nil {
		return 0, err
	}
	return result, nil
}

// intDivide truncates both operands toward zero, divides as integers,
// and widens the quotient back to float64 — Go's int64 conversion
// already truncates toward zero, matching the Rust source's `as i32`
// cast. A zero divisor is handled as plain float division so it
// surfaces as Inf/NaN (and then ArithmeticError) instead of panicking.
func intDivide(lhs, rhs float64) float64 {
	tl, tr := math.Trunc(lhs), math.Trunc(rhs)
	if tr == 0 {
		return tl / tr
	}
	return float64(int64(tl) / int64(tr))
}

func truncToInt(v float64) int {
	return int(math.Trunc(v))
}

func checkFinite(op string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nerr.New(nerr.ArithmeticError, "%s produced a non-finite result (%v)", op, v)
	}
	return nil
}

func evalOperand(node *parser.Node, state *ncstate.State) (float64, error) {
	switch node.Rule {
	case parser.RulePrimary:
		if node.Text != "" {
			return parseFloatLiteral(node.Text)
		}
		if len(node.Children) == 1 {
			return EvaluateExpression(node.Children[0], state)
		}
		return 0, nerr.New(nerr.UnexpectedRule, "malformed primary node")
	case parser.RuleNeg:
		if len(node.Children) != 1 {
			return 0, nerr.New(nerr.UnexpectedRule, "malformed neg node")
		}
		v, err := evalOperand(node.Children[0], state)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case parser.RuleVariable:
		return evalVariableRead(node, state)
	case parser.RuleAxisIncr:
		return 0, nerr.New(nerr.UnexpectedRule, "IC(...) is only valid as the direct right-hand side of an assignment")
	default:
		return 0, nerr.New(nerr.UnexpectedRule, "unexpected node %q in expression position", node.Rule)
	}
}

func evalVariableRead(node *parser.Node, state *ncstate.State) (float64, error) {
	if len(node.Children) != 1 {
		return 0, nerr.New(nerr.UnexpectedRule, "malformed variable node")
	}
	inner := node.Children[0]
	switch inner.Rule {
	case parser.RuleIdentifier:
		name := inner.Text
		if state.IsAxis(name) {
			v, _ := state.AxisValue(name)
			return v, nil
		}
		return state.LookupVariable(name)
	case parser.RuleVarArray:
		name, err := ResolveArrayCellName(inner, state)
		if err != nil {
			return 0, err
		}
		return state.LookupVariable(name)
	default:
		return 0, nerr.New(nerr.UnexpectedRule, "unexpected variable node %q", inner.Rule)
	}
}

// EvaluateValueNode evaluates either a bare "expression" node or a
// "value" node (a literal's text, or a wrapped expression), the two
// shapes a literal position can take in this grammar.
func EvaluateValueNode(node *parser.Node, state *ncstate.State) (float64, error) {
	switch node.Rule {
	case parser.RuleExpression:
		return EvaluateExpression(node, state)
	case parser.RuleValue:
		if node.Text != "" {
			return parseFloatLiteral(node.Text)
		}
		if len(node.Children) == 1 {
			return EvaluateExpression(node.Children[0], state)
		}
		return 0, nerr.New(nerr.UnexpectedRule, "malformed value node")
	default:
		return 0, nerr.New(nerr.UnexpectedRule, "unexpected node %q where a value was expected", node.Rule)
	}
}

func parseFloatLiteral(text string) (float64, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, nerr.New(nerr.ParseError, "invalid numeric literal %q: %v", text, err)
	}
	return f, nil
}

// EvaluateCondition implements the two supported condition shapes:
// a bare expression (true iff not exactly 0.0) or an lhs/operator/rhs
// triple using one of the six relational operators.
func EvaluateCondition(node *parser.Node, state *ncstate.State) (bool, error) {
	if node.Rule != parser.RuleCondition {
		return false, nerr.New(nerr.UnexpectedRule, "expected condition node, got %q", node.Rule)
	}
	switch len(node.Children) {
	case 1:
		v, err := EvaluateExpression(node.Children[0], state)
		if err != nil {
			return false, err
		}
		return v != 0.0, nil
	case 2:
		lhs, err := EvaluateExpression(node.Children[0], state)
		if err != nil {
			return false, err
		}
		rhs, err := EvaluateExpression(node.Children[1], state)
		if err != nil {
			return false, err
		}
		return evaluateRelational(node.Text, lhs, rhs)
	default:
		return false, nerr.New(nerr.InvalidCondition, "condition must have 1 or 2 operand expressions, got %d", len(node.Children))
	}
}

func evaluateRelational(op string, lhs, rhs float64) (bool, error) {
	switch op {
	case "<":
		return lhs < rhs, nil
	case ">":
		return lhs > rhs, nil
	case "<=":
		return lhs <= rhs, nil
	case ">=":
		return lhs >= rhs, nil
	case "==":
		return lhs == rhs, nil
	case "<>":
		return lhs != rhs, nil
	default:
		return false, nerr.New(nerr.UnexpectedOperator, "unexpected relational operator %q", op)
	}
}
