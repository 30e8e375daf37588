package lexer

import (
	"testing"

	"github.com/nilp0inter/grace/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let xs = [1, 2] in
# a comment
\x -> if x@1 && true then "a\"b" else List/length xs ++ ./other.grace`

	expected := []struct {
		tokenType token.Type
		lexeme    string
	}{
		{token.LET, "let"},
		{token.IDENT, "xs"},
		{token.EQUALS, "="},
		{token.LBRACKET, "["},
		{token.NATURAL, "1"},
		{token.COMMA, ","},
		{token.NATURAL, "2"},
		{token.RBRACKET, "]"},
		{token.IN, "in"},
		{token.LAMBDA, "\\"},
		{token.IDENT, "x"},
		{token.ARROW, "->"},
		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.AT, "@"},
		{token.NATURAL, "1"},
		{token.AND, "&&"},
		{token.TRUE, "true"},
		{token.THEN, "then"},
		{token.TEXT, `a"b`},
		{token.ELSE, "else"},
		{token.BUILTIN, "List/length"},
		{token.IDENT, "xs"},
		{token.APPEND, "++"},
		{token.PATH, "./other.grace"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.tokenType {
			t.Fatalf("token %d: type = %q (%q), want %q", i, tok.Type, tok.Lexeme, exp.tokenType)
		}
		if tok.Lexeme != exp.lexeme {
			t.Fatalf("token %d: lexeme = %q, want %q", i, tok.Lexeme, exp.lexeme)
		}
	}
}

func TestTypeTokens(t *testing.T) {
	input := `forall (r : Fields) . { x: Natural | r } -> < Left: Bool | v >`

	expected := []token.Type{
		token.FORALL, token.LPAREN, token.IDENT, token.COLON, token.UPIDENT,
		token.RPAREN, token.DOT, token.LBRACE, token.IDENT, token.COLON,
		token.UPIDENT, token.PIPE, token.IDENT, token.RBRACE, token.ARROW,
		token.LANGLE, token.UPIDENT, token.COLON, token.UPIDENT, token.PIPE,
		token.IDENT, token.RANGLE, token.EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("token %d: type = %q (%q), want %q", i, tok.Type, tok.Lexeme, exp)
		}
	}
}

// TestPositions verifies 1-based line and column tracking across newlines.
func TestPositions(t *testing.T) {
	l := New("a\n  bb")

	first := l.NextToken()
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("first token at %d:%d, want 1:1", first.Line, first.Column)
	}
	second := l.NextToken()
	if second.Line != 2 || second.Column != 3 {
		t.Errorf("second token at %d:%d, want 2:3", second.Line, second.Column)
	}
}

// TestUnterminatedText verifies the lexer flags a missing closing quote
// instead of consuming the rest of the input.
func TestUnterminatedText(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Errorf("unterminated text lexed as %q", tok.Type)
	}
}

// TestProjectionVersusPath distinguishes `r.x` from `./r.grace`.
func TestProjectionVersusPath(t *testing.T) {
	l := New("r.x")
	if tok := l.NextToken(); tok.Type != token.IDENT {
		t.Fatalf("expected IDENT, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != token.DOT {
		t.Fatalf("expected DOT, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != token.IDENT {
		t.Fatalf("expected IDENT, got %q", tok.Type)
	}

	l = New("../lib/util.grace")
	tok := l.NextToken()
	if tok.Type != token.PATH || tok.Lexeme != "../lib/util.grace" {
		t.Fatalf("expected PATH ../lib/util.grace, got %q %q", tok.Type, tok.Lexeme)
	}
}
