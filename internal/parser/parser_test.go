package parser

import (
	"testing"

	"nctrace/internal/lexer"
)

func parseSource(input string) (*Node, error) {
	tokens := lexer.NewScanner(input).ScanTokens()
	return NewParserWithSource(tokens, input).Parse()
}

func assertParseSuccess(t *testing.T, input string) *Node {
	t.Helper()
	node, err := parseSource(input)
	if err != nil {
		t.Fatalf("parse %q: unexpected error: %v", input, err)
	}
	return node
}

func assertParseError(t *testing.T, input string) {
	t.Helper()
	if _, err := parseSource(input); err == nil {
		t.Fatalf("parse %q: expected an error, got none", input)
	}
}

func TestParseOrdinaryBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"classic shorthand", "X10 Y-5.5\n"},
		{"explicit assignment", "X=10\n"},
		{"block number and g code", "N10 G1 X10\n"},
		{"m command", "M3\n"},
		{"tool select", "T1\n"},
		{"paren comment", "G1 (rapid move) X10\n"},
		{"line comment", "G1 X10 ; move to start\n"},
		{"def", "DEF R1\n"},
		{"def typed", "DEF R1:REAL\n"},
		{"trans", "TRANS(X=10,Y=5)\n"},
		{"atrans", "ATRANS(X=10)\n"},
		{"array assignment", "DATA[1,2]=5\n"},
		{"assignment multi", "DATA[1]=(1,2,3)\n"},
		{"ic increment", "X=IC(5)\n"},
		{"computed g", "G(90)\n"},
		{"function call", "myFunc(1,2)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertParseSuccess(t, tt.input)
		})
	}
}

func TestParseControlFlow(t *testing.T) {
	assertParseSuccess(t, "WHILE R1<3\nX=R1\nR1=R1+1\nENDWHILE\n")
	assertParseSuccess(t, "IF R1==1\nX=1\nELSE\nX=2\nENDIF\n")
	assertParseSuccess(t, "FOR R1=0 TO 2\nX=R1\nENDFOR\n")
}

func TestControlBlockProducesNoRowOfItsOwn(t *testing.T) {
	node := assertParseSuccess(t, "WHILE R1<3\nX=R1\nENDWHILE\n")
	blocks := node.Children[0]
	if len(blocks.Children) != 1 {
		t.Fatalf("expected exactly one top-level block (the while header), got %d", len(blocks.Children))
	}
	block := blocks.Children[0]
	if block.Children[0].Children[0].Rule != RuleControl {
		t.Fatalf("expected the sole block to wrap a control node, got %q", block.Children[0].Children[0].Rule)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty block", "\n"},
		{"unterminated paren", "G1 (oops\n"},
		{"unterminated while", "WHILE R1<3\nX=1\n"},
		{"too many array dims", "DATA[1,2,3,4]=5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertParseError(t, tt.input)
		})
	}
}

func TestClassicAxisShorthandVsAssignment(t *testing.T) {
	node := assertParseSuccess(t, "X10\n")
	stmt := node.Children[0].Children[0].Children[0].Children[0]
	if stmt.Rule != RuleAssignment || stmt.Children[0].Rule != RuleVarSingle {
		t.Fatalf("expected a var_single_char assignment, got %+v", stmt)
	}

	node = assertParseSuccess(t, "X10=5\n")
	stmt = node.Children[0].Children[0].Children[0].Children[0]
	if stmt.Rule != RuleAssignment || stmt.Children[0].Rule != RuleIdentifier {
		t.Fatalf("expected an ordinary identifier assignment for X10=5, got %+v", stmt)
	}
}

func TestConditionShapes(t *testing.T) {
	node := assertParseSuccess(t, "IF R1\nX=1\nENDIF\n")
	ifNode := unwrapControl(node)
	cond := ifNode.Children[0]
	if len(cond.Children) != 1 {
		t.Fatalf("bare condition should have exactly one child, got %d", len(cond.Children))
	}

	node = assertParseSuccess(t, "IF R1<>2\nX=1\nENDIF\n")
	ifNode = unwrapControl(node)
	cond = ifNode.Children[0]
	if len(cond.Children) != 2 || cond.Text != "<>" {
		t.Fatalf("relational condition should have 2 children and Text '<>', got %d children, Text=%q", len(cond.Children), cond.Text)
	}
}

func unwrapControl(fileNode *Node) *Node {
	block := fileNode.Children[0].Children[0]
	return block.Children[0].Children[0].Children[0]
}
