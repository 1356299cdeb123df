package interp

import (
	nerr "nctrace/internal/errors"
	"nctrace/internal/ncstate"
	"nctrace/internal/parser"
)

// InterpretFrameOp implements TRANS(..)/ATRANS(..): every target must be
// a declared axis, or UnexpectedAxis is raised. The raw axes map is
// never touched — only translations.
func InterpretFrameOp(node *parser.Node, state *ncstate.State) error {
	if node.Rule != parser.RuleFrameOp || len(node.Children) != 1 {
		return nerr.New(nerr.UnexpectedRule, "malformed frame_op node")
	}
	inner := node.Children[0]
	switch inner.Rule {
	case parser.RuleFrameTrans:
		return applyFrameAssignments(inner.Children, state, false)
	case parser.RuleFrameAtrans:
		return applyFrameAssignments(inner.Children, state, true)
	default:
		return nerr.New(nerr.UnexpectedRule, "unexpected frame_op child %q", inner.Rule)
	}
}

func applyFrameAssignments(assigns []*parser.Node, state *ncstate.State, additive bool) error {
	for _, a := range assigns {
		if a.Rule != parser.RuleAssignment || len(a.Children) != 2 {
			return nerr.New(nerr.UnexpectedRule, "malformed frame assignment")
		}
		target := a.Children[0]
		if target.Rule != parser.RuleIdentifier {
			return nerr.New(nerr.UnexpectedAxis, "frame operation target must be a plain axis name")
		}
		name := target.Text
		if !state.IsAxis(name) {
			return nerr.New(nerr.UnexpectedAxis, "%q is not a declared axis", name)
		}
		value, err := EvaluateExpression(a.Children[1], state)
		if err != nil {
			return err
		}
		if additive {
			err = state.SetTranslation(name, state.Translation(name)+value)
		} else {
			err = state.SetTranslation(name, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
