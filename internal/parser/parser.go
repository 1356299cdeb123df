// Package parser turns NC source text into a tree of Node values (see
// ast.go) for internal/interp to walk. The concrete surface syntax below
// is this project's own choice, pinning only the shape of the tree the
// interpreter core consumes, not any particular source-text grammar.
//
// Surface grammar, line-oriented (one NEWLINE-terminated line is one
// block unless it opens a control construct):
//
//	file       := block (NEWLINE+ block)* EOF
//	block      := block_number? (statement | comment)*   // at least one element
//	block_number := N<int>
//	statement  := g_command | m_command | tool_selection | frame_op
//	            | definition | assignment | assignment_multi
//	            | axis shorthand | control
//	control    := "IF" condition NEWLINE blocks ("ELSE" NEWLINE blocks)? "ENDIF"
//	            | "WHILE" condition NEWLINE blocks "ENDWHILE"
//	            | "FOR" assignment "TO" expression NEWLINE blocks "ENDFOR"
//	assignment := identifier ('[' indices ']')? '=' (axis_increment | expression)
//	            | identifier ('[' indices ']')? '=' '(' (value_item (',' value_item)*)? ')'   // assignment_multi
//
// A '(' that is not immediately consumed by IC/TRANS/ATRANS is always a
// comment running to the matching ')'; there is no other construct that
// opens a bare parenthesis at statement position, so no whitespace
// tracking is needed to resolve the ambiguity.
package parser

import (
	"strings"

	nerr "nctrace/internal/errors"
	"nctrace/internal/lexer"
)

// classicAxisLetters is the set of single-letter axis names eligible for
// the contiguous "X10" shorthand. Multi-character axis names (RA1..RA6)
// are deliberately excluded: "RA1" lexes as one identifier token and
// splitting it into "R" + "A1" would be wrong, so those axes must be
// assigned with explicit '=' syntax instead.
var classicAxisLetters = map[byte]bool{
	'X': true, 'Y': true, 'Z': true, 'A': true, 'B': true, 'C': true,
	'D': true, 'E': true, 'F': true, 'S': true, 'U': true, 'V': true,
}

// Parser is a recursive-descent reader over a token slice. It panics on
// syntax errors, caught and converted to a ParseError by Parse.
type Parser struct {
	tokens      []lexer.Token
	current     int
	sourceLines []string
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// NewParserWithSource additionally records the original source text so
// each top-level block node can carry a line preview for AnnotatedError.
func NewParserWithSource(tokens []lexer.Token, source string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(source, "\n")}
}

// Parse reads the full token stream and returns the root "file" node.
func (p *Parser) Parse() (node *Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*nerr.NCError); ok {
				err = e
				return
			}
			err = nerr.New(nerr.ParseError, "%v", r)
		}
	}()

	p.skipNewlines()
	children := []*Node{}
	for !p.isAtEnd() {
		children = append(children, p.parseBlock())
		p.skipNewlines()
	}
	if len(children) == 0 {
		p.fail("empty program: no blocks")
	}
	return &Node{Rule: RuleFile, Children: []*Node{
		{Rule: RuleBlocks, Children: children},
	}}, nil
}

// parseBlockList reads blocks until one of the given terminator keywords
// is seen at block-start position (case-insensitive), without consuming
// the terminator.
func (p *Parser) parseBlockList(terminators ...string) *Node {
	children := []*Node{}
	p.skipNewlines()
	for !p.isAtEnd() && !p.atKeyword(terminators...) {
		children = append(children, p.parseBlock())
		p.skipNewlines()
	}
	return &Node{Rule: RuleBlocks, Children: children}
}

func (p *Parser) atKeyword(keywords ...string) bool {
	if p.check(lexer.TokenIdent) {
		up := strings.ToUpper(p.peek().Lexeme)
		for _, k := range keywords {
			if up == k {
				return true
			}
		}
	}
	return false
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TokenNewline) {
		p.advance()
	}
}

// --- low-level token helpers ---

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(nerr.New(nerr.ParseError, "%s (got %q at line %d)", msg, p.peek().Lexeme, p.peek().Line))
}

func (p *Parser) fail(format string, args ...interface{}) {
	panic(nerr.New(nerr.ParseError, format, args...))
}

// --- expression grammar: strictly left-to-right, no precedence ---

var exprOperators = map[string]Rule{
	"+":   RuleOpAdd,
	"-":   RuleOpSub,
	"*":   RuleOpMul,
	"/":   RuleOpDiv,
	"DIV": RuleOpIntDiv,
	"MOD": RuleOpMod,
}

func (p *Parser) isExprOperatorToken() (string, bool) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenPlus:
		return "+", true
	case lexer.TokenMinus:
		return "-", true
	case lexer.TokenStar:
		return "*", true
	case lexer.TokenSlash:
		return "/", true
	case lexer.TokenIdent:
		up := strings.ToUpper(tok.Lexeme)
		if up == "DIV" || up == "MOD" {
			return up, true
		}
	}
	return "", false
}

// expression parses a flat left-to-right chain: neg? primary (op primary)*.
func (p *Parser) expression() *Node {
	line := p.peek().Line
	first := p.unaryPrimary()
	children := []*Node{first}
	for {
		opText, ok := p.isExprOperatorToken()
		if !ok {
			break
		}
		p.advance()
		rule, known := exprOperators[opText]
		if !known {
			p.fail("unexpected operator %q", opText)
		}
		children = append(children, &Node{Rule: rule, Text: opText, Line: line})
		children = append(children, p.unaryPrimary())
	}
	return &Node{Rule: RuleExpression, Line: line, Children: children}
}

func (p *Parser) unaryPrimary() *Node {
	line := p.peek().Line
	if p.match(lexer.TokenMinus) {
		inner := p.primary()
		return &Node{Rule: RuleNeg, Line: line, Children: []*Node{inner}}
	}
	return p.primary()
}

func (p *Parser) primary() *Node {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenNumber:
		p.advance()
		return &Node{Rule: RulePrimary, Text: tok.Lexeme, Line: tok.Line}
	case lexer.TokenLParen:
		p.advance()
		inner := p.expression()
		p.consume(lexer.TokenRParen, "expect ')' after parenthesized expression")
		return &Node{Rule: RulePrimary, Line: tok.Line, Children: []*Node{inner}}
	case lexer.TokenIdent:
		up := strings.ToUpper(tok.Lexeme)
		if up == "IC" && p.peekAt(1).Type == lexer.TokenLParen {
			return p.axisIncrement()
		}
		return p.variableRead()
	}
	p.fail("expected a value, got %q", tok.Lexeme)
	return nil
}

func (p *Parser) axisIncrement() *Node {
	line := p.peek().Line
	p.advance() // IC
	p.consume(lexer.TokenLParen, "expect '(' after IC")
	inner := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' to close IC(...)")
	return &Node{Rule: RuleAxisIncr, Line: line, Children: []*Node{inner}}
}

// variableRead reads `identifier` or `identifier[indices]` in value
// position (RuleVariable wrapping RuleIdentifier or RuleVarArray).
func (p *Parser) variableRead() *Node {
	tok := p.consume(lexer.TokenIdent, "expect identifier")
	ident := &Node{Rule: RuleIdentifier, Text: tok.Lexeme, Line: tok.Line}
	if p.check(lexer.TokenLBracket) {
		arr := p.variableArrayTail(ident)
		return &Node{Rule: RuleVariable, Line: tok.Line, Children: []*Node{arr}}
	}
	return &Node{Rule: RuleVariable, Line: tok.Line, Children: []*Node{ident}}
}

func (p *Parser) variableArrayTail(ident *Node) *Node {
	line := p.consume(lexer.TokenLBracket, "expect '['").Line
	idx := p.indices()
	p.consume(lexer.TokenRBracket, "expect ']' to close index list")
	return &Node{Rule: RuleVarArray, Line: line, Children: []*Node{ident, idx}}
}

func (p *Parser) indices() *Node {
	line := p.peek().Line
	exprs := []*Node{p.expression()}
	for p.match(lexer.TokenComma) {
		exprs = append(exprs, p.expression())
	}
	if len(exprs) > 3 {
		p.fail("array indices support at most 3 dimensions, got %d", len(exprs))
	}
	return &Node{Rule: RuleIndices, Line: line, Children: exprs}
}

// condition parses a bare expression ([expr] shape, Text empty) or a
// lhs/operator/rhs triple ([lhs, op, rhs] shape, Text = operator symbol).
func (p *Parser) condition() *Node {
	line := p.peek().Line
	lhs := p.expression()
	_, opText, ok := p.relationalOperator()
	if !ok {
		return &Node{Rule: RuleCondition, Line: line, Children: []*Node{lhs}}
	}
	p.advance()
	rhs := p.expression()
	return &Node{Rule: RuleCondition, Text: opText, Line: line, Children: []*Node{lhs, rhs}}
}

func (p *Parser) relationalOperator() (lexer.TokenType, string, bool) {
	switch p.peek().Type {
	case lexer.TokenLT:
		return lexer.TokenLT, "<", true
	case lexer.TokenGT:
		return lexer.TokenGT, ">", true
	case lexer.TokenLE:
		return lexer.TokenLE, "<=", true
	case lexer.TokenGE:
		return lexer.TokenGE, ">=", true
	case lexer.TokenEQ:
		return lexer.TokenEQ, "==", true
	case lexer.TokenNE:
		return lexer.TokenNE, "<>", true
	}
	return "", "", false
}
