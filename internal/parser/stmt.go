// internal/parser/stmt.go holds the block- and statement-level grammar:
// one function per production in the surface grammar documented atop
// parser.go.
package parser

import (
	"strings"

	"nctrace/internal/lexer"
)

func (p *Parser) parseBlock() *Node {
	var b *Node
	switch {
	case p.atKeyword("IF"):
		b = p.parseIfBlock()
	case p.atKeyword("WHILE"):
		b = p.parseWhileBlock()
	case p.atKeyword("FOR"):
		b = p.parseForBlock()
	default:
		b = p.parseOrdinaryBlock()
	}
	p.attachPreview(b)
	return b
}

// attachPreview records the raw source line on a block node's Text
// field, used by the block projector to build AnnotatedError previews.
func (p *Parser) attachPreview(b *Node) {
	if p.sourceLines == nil {
		return
	}
	idx := b.Line - 1
	if idx >= 0 && idx < len(p.sourceLines) {
		b.Text = strings.TrimSpace(p.sourceLines[idx])
	}
}

func (p *Parser) parseOrdinaryBlock() *Node {
	line := p.peek().Line
	var children []*Node

	if isBlockNumberToken(p.peek()) {
		tok := p.advance()
		children = append(children, &Node{Rule: RuleBlockNumber, Text: tok.Lexeme[1:], Line: tok.Line})
	}

	for !p.check(lexer.TokenNewline) && !p.isAtEnd() {
		switch {
		case p.check(lexer.TokenComment):
			tok := p.advance()
			children = append(children, &Node{Rule: RuleComment, Text: strings.TrimSpace(tok.Lexeme), Line: tok.Line})
		case p.check(lexer.TokenLParen):
			children = append(children, p.parseParenComment())
		default:
			stmt := p.parseStatement()
			children = append(children, &Node{Rule: RuleStatement, Line: stmt.Line, Children: []*Node{stmt}})
		}
	}

	if len(children) == 0 {
		p.fail("empty block at line %d", line)
	}
	return &Node{Rule: RuleBlock, Line: line, Children: children}
}

func (p *Parser) parseParenComment() *Node {
	line := p.peek().Line
	text := p.captureParenRaw()
	return &Node{Rule: RuleComment, Text: text, Line: line}
}

// captureParenRaw consumes a balanced '(' ... ')' run (nested parens
// allowed) and returns its raw text, spaces reinserted between tokens.
func (p *Parser) captureParenRaw() string {
	p.consume(lexer.TokenLParen, "expect '('")
	var inner []string
	depth := 1
	for {
		if p.isAtEnd() {
			p.fail("unterminated parenthesis")
		}
		tok := p.peek()
		switch tok.Type {
		case lexer.TokenLParen:
			depth++
			inner = append(inner, tok.Lexeme)
			p.advance()
		case lexer.TokenRParen:
			depth--
			p.advance()
			if depth == 0 {
				return "(" + strings.Join(inner, " ") + ")"
			}
			inner = append(inner, tok.Lexeme)
		case lexer.TokenNewline:
			p.fail("unterminated parenthesis starting before line %d", tok.Line)
		default:
			inner = append(inner, tok.Lexeme)
			p.advance()
		}
	}
}

// parseStatement dispatches on the leading identifier's shape. Order
// matters: keywords first, then fixed-letter command words, then the
// classic single-letter axis shorthand, falling through to the general
// identifier-led forms (assignment, assignment_multi, function_call).
func (p *Parser) parseStatement() *Node {
	tok := p.peek()
	if tok.Type != lexer.TokenIdent {
		p.fail("expected a statement, got %q", tok.Lexeme)
	}
	up := strings.ToUpper(tok.Lexeme)

	switch {
	case up == "DEF":
		return p.parseDefinition()
	case up == "TRANS":
		return p.parseFrameOp(RuleFrameTrans)
	case up == "ATRANS":
		return p.parseFrameOp(RuleFrameAtrans)
	case up == "G" && p.peekAt(1).Type == lexer.TokenLParen:
		return p.parseComputedGCommand()
	case isGWord(up):
		p.advance()
		return &Node{Rule: RuleGCommandNum, Text: up, Line: tok.Line}
	case isMWord(up):
		p.advance()
		return &Node{Rule: RuleMCommand, Text: up, Line: tok.Line}
	case isToolWord(up):
		p.advance()
		return &Node{Rule: RuleToolSelect, Text: up, Line: tok.Line}
	}

	if letter, numText, consumed, ok := p.classicAxisShorthand(); ok {
		line := tok.Line
		for i := 0; i < consumed; i++ {
			p.advance()
		}
		return &Node{
			Rule: RuleAssignment, Line: line,
			Children: []*Node{
				{Rule: RuleVarSingle, Text: letter, Line: line},
				{Rule: RuleValue, Text: numText, Line: line},
			},
		}
	}

	return p.parseIdentifierStatement()
}

func (p *Parser) parseComputedGCommand() *Node {
	line := p.peek().Line
	p.advance() // "G"
	p.consume(lexer.TokenLParen, "expect '(' after G")
	expr := p.expression()
	p.consume(lexer.TokenRParen, "expect ')' to close G(...)")
	return &Node{Rule: RuleGCommand, Line: line, Children: []*Node{expr}}
}

func (p *Parser) parseIdentifierStatement() *Node {
	tok := p.advance()
	line := tok.Line
	ident := &Node{Rule: RuleIdentifier, Text: tok.Lexeme, Line: line}

	target := ident
	isArray := false
	if p.check(lexer.TokenLBracket) {
		target = p.variableArrayTail(ident)
		isArray = true
	}

	if !isArray && p.check(lexer.TokenLParen) {
		args := p.captureParenRaw()
		return &Node{Rule: RuleFunctionCall, Text: tok.Lexeme + args, Line: line}
	}

	p.consume(lexer.TokenEqual, "expect '=' in assignment")

	if p.check(lexer.TokenLParen) {
		return p.parseAssignmentMulti(target)
	}
	if p.checkICStart() {
		incr := p.axisIncrement()
		return &Node{Rule: RuleAssignment, Line: line, Children: []*Node{target, incr}}
	}
	expr := p.expression()
	return &Node{Rule: RuleAssignment, Line: line, Children: []*Node{target, expr}}
}

func (p *Parser) parseAssignmentMulti(target *Node) *Node {
	line := p.consume(lexer.TokenLParen, "expect '(' to open value list").Line
	var items []*Node
	if !p.check(lexer.TokenRParen) {
		items = append(items, p.valueListItem())
		for p.match(lexer.TokenComma) {
			items = append(items, p.valueListItem())
		}
	}
	p.consume(lexer.TokenRParen, "expect ')' to close value list")
	return &Node{Rule: RuleAssignMulti, Line: line, Children: append([]*Node{target}, items...)}
}

func (p *Parser) valueListItem() *Node {
	if p.check(lexer.TokenComma) || p.check(lexer.TokenRParen) {
		return &Node{Rule: RuleValueNone, Line: p.peek().Line}
	}
	return &Node{Rule: RuleValue, Line: p.peek().Line, Children: []*Node{p.expression()}}
}

func (p *Parser) checkICStart() bool {
	return p.check(lexer.TokenIdent) &&
		strings.ToUpper(p.peek().Lexeme) == "IC" &&
		p.peekAt(1).Type == lexer.TokenLParen
}

func (p *Parser) parseDefinition() *Node {
	defTok := p.advance() // DEF
	nameTok := p.consume(lexer.TokenIdent, "expect variable name after DEF")
	children := []*Node{{Rule: RuleIdentifier, Text: nameTok.Lexeme, Line: nameTok.Line}}
	if p.match(lexer.TokenColon) {
		dtTok := p.consume(lexer.TokenIdent, "expect type name after ':'")
		children = append(children, &Node{Rule: RuleDataType, Text: dtTok.Lexeme, Line: dtTok.Line})
	}
	return &Node{Rule: RuleDefinition, Line: defTok.Line, Children: children}
}

func (p *Parser) parseFrameOp(kind Rule) *Node {
	kwTok := p.advance() // TRANS | ATRANS
	p.consume(lexer.TokenLParen, "expect '(' after "+kwTok.Lexeme)
	var assigns []*Node
	if !p.check(lexer.TokenRParen) {
		assigns = append(assigns, p.frameAssignment())
		for p.match(lexer.TokenComma) {
			assigns = append(assigns, p.frameAssignment())
		}
	}
	p.consume(lexer.TokenRParen, "expect ')' to close "+kwTok.Lexeme)
	inner := &Node{Rule: kind, Line: kwTok.Line, Children: assigns}
	return &Node{Rule: RuleFrameOp, Line: kwTok.Line, Children: []*Node{inner}}
}

func (p *Parser) frameAssignment() *Node {
	nameTok := p.consume(lexer.TokenIdent, "expect axis name")
	p.consume(lexer.TokenEqual, "expect '=' in frame assignment")
	expr := p.expression()
	return &Node{
		Rule: RuleAssignment, Line: nameTok.Line,
		Children: []*Node{
			{Rule: RuleIdentifier, Text: nameTok.Lexeme, Line: nameTok.Line},
			expr,
		},
	}
}

// --- control flow ---

func (p *Parser) consumeEndOfHeaderLine() {
	if !p.check(lexer.TokenNewline) && !p.isAtEnd() {
		p.fail("expected end of line, got %q", p.peek().Lexeme)
	}
	p.skipNewlines()
}

func (p *Parser) consumeKeyword(word string) lexer.Token {
	if !p.atKeyword(word) {
		p.fail("expected %q, got %q", word, p.peek().Lexeme)
	}
	return p.advance()
}

func wrapControlBlock(line int, inner *Node) *Node {
	control := &Node{Rule: RuleControl, Line: line, Children: []*Node{inner}}
	stmt := &Node{Rule: RuleStatement, Line: line, Children: []*Node{control}}
	return &Node{Rule: RuleBlock, Line: line, Children: []*Node{stmt}}
}

func (p *Parser) parseIfBlock() *Node {
	ifTok := p.advance() // IF
	cond := p.condition()
	p.consumeEndOfHeaderLine()
	thenBlocks := p.parseBlockList("ELSE", "ENDIF")

	children := []*Node{cond, thenBlocks}
	if p.atKeyword("ELSE") {
		p.advance()
		p.consumeEndOfHeaderLine()
		elseBlocks := p.parseBlockList("ENDIF")
		children = append(children, elseBlocks)
	}
	p.consumeKeyword("ENDIF")

	ifNode := &Node{Rule: RuleIfStatement, Line: ifTok.Line, Children: children}
	return wrapControlBlock(ifTok.Line, ifNode)
}

func (p *Parser) parseWhileBlock() *Node {
	whileTok := p.advance() // WHILE
	cond := p.condition()
	p.consumeEndOfHeaderLine()
	body := p.parseBlockList("ENDWHILE")
	p.consumeKeyword("ENDWHILE")

	whileNode := &Node{Rule: RuleWhileStmt, Line: whileTok.Line, Children: []*Node{cond, body}}
	return wrapControlBlock(whileTok.Line, whileNode)
}

func (p *Parser) parseForBlock() *Node {
	forTok := p.advance() // FOR
	nameTok := p.consume(lexer.TokenIdent, "expect loop control variable after FOR")
	p.consume(lexer.TokenEqual, "expect '=' in for-loop initializer")
	initExpr := p.expression()
	assign := &Node{
		Rule: RuleAssignment, Line: nameTok.Line,
		Children: []*Node{
			{Rule: RuleIdentifier, Text: nameTok.Lexeme, Line: nameTok.Line},
			initExpr,
		},
	}
	p.consumeKeyword("TO")
	endExpr := p.expression()
	p.consumeEndOfHeaderLine()
	body := p.parseBlockList("ENDFOR")
	p.consumeKeyword("ENDFOR")

	forNode := &Node{Rule: RuleForStmt, Line: forTok.Line, Children: []*Node{assign, endExpr, body}}
	return wrapControlBlock(forTok.Line, forNode)
}

// --- lexical classification helpers ---

func isBlockNumberToken(tok lexer.Token) bool {
	if tok.Type != lexer.TokenIdent || len(tok.Lexeme) < 2 {
		return false
	}
	if tok.Lexeme[0] != 'N' && tok.Lexeme[0] != 'n' {
		return false
	}
	return isAllDigits(tok.Lexeme[1:])
}

func isGWord(upper string) bool    { return isCommandWord(upper, 'G') }
func isMWord(upper string) bool    { return isCommandWord(upper, 'M') }
func isToolWord(upper string) bool { return isCommandWord(upper, 'T') }

func isCommandWord(upper string, letter byte) bool {
	if len(upper) < 2 || upper[0] != letter {
		return false
	}
	return isAllDigitsOrDot(upper[1:])
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAllDigitsOrDot(s string) bool {
	if s == "" {
		return false
	}
	seenDot := false
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			if seenDot {
				return false
			}
			seenDot = true
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// classicAxisShorthand recognizes the contiguous "X10" / "X-10.5" form
// for the classic single-letter axes only (see classicAxisLetters in
// parser.go). It reports how many tokens the shorthand spans so the
// caller can advance past exactly that many.
func (p *Parser) classicAxisShorthand() (letter, numText string, consumed int, ok bool) {
	tok := p.peek()
	if tok.Type != lexer.TokenIdent || len(tok.Lexeme) == 0 {
		return "", "", 0, false
	}
	first := tok.Lexeme[0]
	if first >= 'a' && first <= 'z' {
		first = first - 'a' + 'A'
	}
	if !classicAxisLetters[first] {
		return "", "", 0, false
	}

	rest := tok.Lexeme[1:]
	if rest != "" {
		if !isAllDigitsOrDot(rest) {
			return "", "", 0, false
		}
		if p.peekAt(1).Type == lexer.TokenEqual || p.peekAt(1).Type == lexer.TokenLBracket {
			return "", "", 0, false
		}
		return string(first), rest, 1, true
	}

	// Bare letter token: only a shorthand if followed directly by a
	// (possibly negative) number, and not by '=' or '[' which would mean
	// an ordinary variable named after the axis letter.
	nxt := p.peekAt(1)
	if nxt.Type == lexer.TokenEqual || nxt.Type == lexer.TokenLBracket {
		return "", "", 0, false
	}
	if nxt.Type == lexer.TokenNumber {
		return string(first), nxt.Lexeme, 2, true
	}
	if nxt.Type == lexer.TokenMinus && p.peekAt(2).Type == lexer.TokenNumber {
		return string(first), "-" + p.peekAt(2).Lexeme, 3, true
	}
	return "", "", 0, false
}
