package lexer

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestScanTokensBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"number", "10.5", []TokenType{TokenNumber, TokenEOF}},
		{"ident", "X10", []TokenType{TokenIdent, TokenEOF}},
		{"decimal shorthand", "X10.5", []TokenType{TokenIdent, TokenEOF}},
		{"g code with dot", "G90.1", []TokenType{TokenIdent, TokenEOF}},
		{"negative", "-10", []TokenType{TokenMinus, TokenNumber, TokenEOF}},
		{"relational", "<= >= == <>", []TokenType{TokenLE, TokenGE, TokenEQ, TokenNE, TokenEOF}},
		{"parens brackets", "([1,2])", []TokenType{TokenLParen, TokenLBracket, TokenNumber, TokenComma, TokenNumber, TokenRBracket, TokenRParen, TokenEOF}},
		{"newline", "X1\nY2", []TokenType{TokenIdent, TokenNewline, TokenIdent, TokenEOF}},
		{"comment", "; a trailing remark", []TokenType{TokenComment, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenTypes(NewScanner(tt.input).ScanTokens())
			if len(got) != len(tt.want) {
				t.Fatalf("%s: got %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("%s: token %d = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScanIdentifierDecimalLexeme(t *testing.T) {
	tokens := NewScanner("X10.5").ScanTokens()
	if tokens[0].Lexeme != "X10.5" {
		t.Fatalf("expected single lexeme %q, got %q", "X10.5", tokens[0].Lexeme)
	}
}

func TestScanLineComment(t *testing.T) {
	tokens := NewScanner("G0 ; move\nX1").ScanTokens()
	found := false
	for _, tok := range tokens {
		if tok.Type == TokenComment {
			found = true
			if tok.Lexeme != "; move" {
				t.Errorf("comment lexeme = %q, want %q", tok.Lexeme, "; move")
			}
		}
	}
	if !found {
		t.Fatal("expected a comment token")
	}
}
