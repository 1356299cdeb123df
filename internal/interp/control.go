package interp

import (
	"nctrace/internal/config"
	nerr "nctrace/internal/errors"
	"nctrace/internal/ncstate"
	"nctrace/internal/parser"
)

// InterpretControl dispatches an already-unwrapped control node (see
// block.go's soleControlChild) to its if/while/for evaluator.
func InterpretControl(node *parser.Node, state *ncstate.State, cfg *config.Config, rows *[]Row) error {
	switch node.Rule {
	case parser.RuleIfStatement:
		return interpretIf(node, state, cfg, rows)
	case parser.RuleWhileStmt:
		return interpretWhile(node, state, cfg, rows)
	case parser.RuleForStmt:
		return interpretFor(node, state, cfg, rows)
	default:
		return nerr.New(nerr.UnexpectedRule, "unexpected control node %q", node.Rule)
	}
}

func interpretIf(node *parser.Node, state *ncstate.State, cfg *config.Config, rows *[]Row) error {
	if len(node.Children) < 2 {
		return nerr.New(nerr.UnexpectedRule, "malformed if_statement node")
	}
	cond, err := EvaluateCondition(node.Children[0], state)
	if err != nil {
		return err
	}
	if cond {
		return InterpretBlocks(node.Children[1], state, cfg, rows)
	}
	if len(node.Children) == 3 {
		return InterpretBlocks(node.Children[2], state, cfg, rows)
	}
	return nil
}

func interpretWhile(node *parser.Node, state *ncstate.State, cfg *config.Config, rows *[]Row) error {
	if len(node.Children) != 2 {
		return nerr.New(nerr.UnexpectedRule, "malformed while_statement node")
	}
	cond, body := node.Children[0], node.Children[1]

	for iter := 0; ; iter++ {
		if iter >= state.IterationLimit {
			return nerr.New(nerr.LoopLimit, "while loop exceeded iteration limit of %d", state.IterationLimit)
		}
		ok, err := EvaluateCondition(cond, state)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := InterpretBlocks(body, state, cfg, rows); err != nil {
			return err
		}
	}
}

func interpretFor(node *parser.Node, state *ncstate.State, cfg *config.Config, rows *[]Row) error {
	if len(node.Children) != 3 {
		return nerr.New(nerr.UnexpectedRule, "malformed for_statement node")
	}
	assign, endExprNode, body := node.Children[0], node.Children[1], node.Children[2]

	if assign.Rule != parser.RuleAssignment || len(assign.Children) != 2 {
		return nerr.New(nerr.UnexpectedRule, "malformed for-loop initializer")
	}
	target := assign.Children[0]
	if target.Rule != parser.RuleIdentifier {
		return nerr.New(nerr.UnexpectedRule, "for-loop control variable must be a plain identifier")
	}
	varName := target.Text

	initValue, err := EvaluateExpression(assign.Children[1], state)
	if err != nil {
		return err
	}
	if err := state.SetVariable(varName, initValue); err != nil {
		return err
	}

	end, err := EvaluateExpression(endExprNode, state)
	if err != nil {
		return err
	}

	for iter := 0; ; iter++ {
		if iter >= state.IterationLimit {
			return nerr.New(nerr.LoopLimit, "for loop exceeded iteration limit of %d", state.IterationLimit)
		}
		current, err := state.LookupVariable(varName)
		if err != nil {
			// control variable disappeared from the symbol table.
			return nil
		}
		if current > end {
			return nil
		}
		if err := InterpretBlocks(body, state, cfg, rows); err != nil {
			return err
		}
		current, err = state.LookupVariable(varName)
		if err != nil {
			return nil
		}
		if err := state.SetVariable(varName, current+1.0); err != nil {
			return err
		}
	}
}
