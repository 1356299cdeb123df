// Package parser turns NC source text into a tree of rule-tagged nodes,
// the shape the interpreter core (internal/interp) consumes.
//
// Nodes are a single tagged type switched on directly by Rule: a match on
// the rule tag is the only dispatch mechanism, so there is no
// Accept/Visitor indirection here.
package parser

// Rule names the grammar production a Node was built from. Values match
// the external node-tree contract the interpreter core depends on.
type Rule string

const (
	RuleFile         Rule = "file"
	RuleBlocks       Rule = "blocks"
	RuleBlock        Rule = "block"
	RuleBlockNumber  Rule = "block_number"
	RuleStatement    Rule = "statement"
	RuleGCommand     Rule = "g_command"
	RuleGCommandNum  Rule = "g_command_numbered"
	RuleMCommand     Rule = "m_command"
	RuleFunctionCall Rule = "function_call"
	RuleToolSelect   Rule = "tool_selection"
	RuleAssignment   Rule = "assignment"
	RuleAssignMulti  Rule = "assignment_multi"
	RuleVariable     Rule = "variable"
	RuleVarArray     Rule = "variable_array"
	RuleVarSingle    Rule = "variable_single_char"
	RuleIdentifier   Rule = "identifier"
	RuleIndices      Rule = "indices"
	RuleAxisIncr     Rule = "axis_increment"
	RuleValue        Rule = "value"
	RuleValueNone    Rule = "value_none"
	RuleValueArray   Rule = "value_array"
	RuleExpression   Rule = "expression"
	RulePrimary      Rule = "primary"
	RuleNeg          Rule = "neg"
	RuleOpAdd        Rule = "op_add"
	RuleOpSub        Rule = "op_sub"
	RuleOpMul        Rule = "op_mul"
	RuleOpDiv        Rule = "op_div"
	RuleOpIntDiv     Rule = "op_int_div"
	RuleOpMod        Rule = "op_mod"
	RuleCondition    Rule = "condition"
	RuleDefinition   Rule = "definition"
	RuleDataType     Rule = "data_type"
	RuleControl      Rule = "control"
	RuleIfStatement  Rule = "if_statement"
	RuleWhileStmt    Rule = "while_statement"
	RuleForStmt      Rule = "for_statement"
	RuleFrameOp      Rule = "frame_op"
	RuleFrameTrans   Rule = "frame_trans"
	RuleFrameAtrans  Rule = "frame_atrans"
	RuleComment      Rule = "comment"
)

// Node is the single tagged-variant type every grammar production becomes.
// Text carries the node's literal source text where that is the payload
// (identifiers, numbers, operator symbols, raw command/comment text);
// Children carries sub-productions in parse order. Line is the 1-based
// source line the node started on, used for AnnotatedError previews.
type Node struct {
	Rule     Rule
	Text     string
	Children []*Node
	Line     int
}

func newNode(rule Rule, line int, text string, children ...*Node) *Node {
	return &Node{Rule: rule, Text: text, Line: line, Children: children}
}
