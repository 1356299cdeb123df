package interp

import (
	"fmt"
	"strconv"
	"strings"

	"nctrace/internal/config"
	nerr "nctrace/internal/errors"
	"nctrace/internal/ncstate"
	"nctrace/internal/parser"
	"nctrace/internal/value"
)

// Row is one output row: column name to cell value, built up as a block
// is projected and immutable once appended.
type Row map[string]value.Value

const maxMCommands = 5

// InterpretBlocks walks a "blocks" node's children in order, appending
// one row per executed block to rows.
func InterpretBlocks(blocksNode *parser.Node, state *ncstate.State, cfg *config.Config, rows *[]Row) error {
	if blocksNode.Rule != parser.RuleBlocks {
		return nerr.New(nerr.UnexpectedRule, "expected blocks node, got %q", blocksNode.Rule)
	}
	for _, block := range blocksNode.Children {
		if err := InterpretBlock(block, state, cfg, rows); err != nil {
			return err
		}
	}
	return nil
}

// InterpretBlock projects a single block node. A block whose sole
// statement is a control construct delegates entirely to control.go and
// appends no row of its own — only the blocks it selects or repeats do
// (P1: "control-flow blocks append per child block, not per loop
// iteration of the container").
func InterpretBlock(block *parser.Node, state *ncstate.State, cfg *config.Config, rows *[]Row) error {
	if block.Rule != parser.RuleBlock {
		return nerr.New(nerr.UnexpectedRule, "expected block node, got %q", block.Rule)
	}

	if ctrl, ok := soleControlChild(block); ok {
		if err := InterpretControl(ctrl, state, cfg, rows); err != nil {
			return nerr.Annotate(err, block.Line, block.Text)
		}
		return nil
	}

	row := Row{}
	mCount := 0
	for _, child := range block.Children {
		var err error
		switch child.Rule {
		case parser.RuleBlockNumber:
			row["N"] = value.Int(parseBlockNumber(child.Text))
		case parser.RuleComment:
			row["comment"] = value.Str(child.Text)
		case parser.RuleStatement:
			if len(child.Children) != 1 {
				err = nerr.New(nerr.UnexpectedRule, "malformed statement node")
			} else {
				err = interpretStatementChild(child.Children[0], state, cfg, row, &mCount)
			}
		default:
			err = nerr.New(nerr.UnexpectedRule, "unexpected block child %q", child.Rule)
		}
		if err != nil {
			return nerr.Annotate(err, block.Line, block.Text)
		}
	}
	*rows = append(*rows, row)
	return nil
}

func soleControlChild(block *parser.Node) (*parser.Node, bool) {
	if len(block.Children) != 1 || block.Children[0].Rule != parser.RuleStatement {
		return nil, false
	}
	stmt := block.Children[0]
	if len(stmt.Children) != 1 || stmt.Children[0].Rule != parser.RuleControl {
		return nil, false
	}
	inner := stmt.Children[0]
	if len(inner.Children) != 1 {
		return nil, false
	}
	return inner.Children[0], true
}

func parseBlockNumber(text string) int64 {
	n, _ := strconv.ParseInt(text, 10, 64)
	return n
}

func interpretStatementChild(node *parser.Node, state *ncstate.State, cfg *config.Config, row Row, mCount *int) error {
	switch node.Rule {
	case parser.RuleGCommandNum:
		setGCommandColumn(row, cfg, node.Text)
		return nil
	case parser.RuleGCommand:
		if len(node.Children) != 1 {
			return nerr.New(nerr.UnexpectedRule, "malformed g_command node")
		}
		v, err := EvaluateExpression(node.Children[0], state)
		if err != nil {
			return err
		}
		setGCommandColumn(row, cfg, fmt.Sprintf("G%v", v))
		return nil
	case parser.RuleMCommand:
		return appendMCommand(row, mCount, node.Text)
	case parser.RuleToolSelect:
		row["T"] = value.Str(node.Text)
		return nil
	case parser.RuleFunctionCall:
		row["function_call"] = value.Str(node.Text)
		return nil
	case parser.RuleAssignment:
		result, err := InterpretAssignment(node, state)
		if err != nil {
			return err
		}
		if result.IsAxis {
			row[result.Name] = value.Float(result.Value)
		}
		return nil
	case parser.RuleAssignMulti:
		return InterpretAssignmentMulti(node, state)
	case parser.RuleDefinition:
		return InterpretDefinition(node, state)
	case parser.RuleFrameOp:
		return InterpretFrameOp(node, state)
	default:
		return nerr.New(nerr.UnexpectedRule, "unexpected statement node %q", node.Rule)
	}
}

func setGCommandColumn(row Row, cfg *config.Config, command string) {
	row[modalGroupFor(cfg, command)] = value.Str(command)
}

// modalGroupFor returns the configured modal/non-modal group name for a
// G-word (§9 Design Notes: the column key is the group name, not the
// literal command). An unrecognized G-word falls back to its own
// lowercased text as the group name rather than being dropped.
func modalGroupFor(cfg *config.Config, command string) string {
	if g, ok := cfg.ModalGroups[command]; ok {
		return g
	}
	if g, ok := cfg.NonModalGroups[command]; ok {
		return g
	}
	return strings.ToLower(command)
}

func appendMCommand(row Row, mCount *int, command string) error {
	*mCount++
	if *mCount > maxMCommands {
		return nerr.New(nerr.TooManyMCommands, "block has more than %d M-commands", maxMCommands)
	}
	next, ok := row["M"].AppendStrList(command)
	if !ok {
		return nerr.New(nerr.UnexpectedRule, "M column holds a non-list value")
	}
	row["M"] = next
	return nil
}
