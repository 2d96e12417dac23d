package lexer_test

import (
	"testing"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/lexer"
	"github.com/elgin-lang/elginc/internal/token"
)

// significant drops NEWLINE tokens (keeping the trailing EOF) so tests
// can focus on the tokens that carry meaning.
func significant(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Type != token.NEWLINE {
			out = append(out, t)
		}
	}
	return out
}

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	sink := errlog.NewSink()
	toks := lexer.New(src, sink).Tokenize()
	if sink.HasErrors() {
		t.Fatalf("unexpected lexer errors for %q: %v", src, sink.Records())
	}
	return toks
}

func TestEqualsVsEqualsEquals(t *testing.T) {
	toks := significant(scan(t, "a = b == c"))
	want := []struct {
		typ token.Type
		lit string
	}{
		{token.IDENT, "a"}, {token.EQUALS, "="}, {token.IDENT, "b"},
		{token.OP, "=="}, {token.IDENT, "c"}, {token.EOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(want))
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d = %s, want %s(%q)", i, toks[i], w.typ, w.lit)
		}
	}
}

func TestComparisonOperatorsExtendToTwoChars(t *testing.T) {
	cases := []string{"!=", "<=", ">="}
	for _, op := range cases {
		toks := significant(scan(t, "a "+op+" b"))
		if len(toks) != 4 {
			t.Fatalf("%s: got %v", op, toks)
		}
		if toks[1].Type != token.OP || toks[1].Literal != op {
			t.Errorf("%s: middle token = %s, want OP(%q)", op, toks[1], op)
		}
	}
}

// IntDivide ("//") must lex as a single operator, never as the start of
// a comment, since only "///" introduces a doc comment in this language.
func TestIntDivideIsNotAComment(t *testing.T) {
	toks := significant(scan(t, "a // b"))
	want := []struct {
		typ token.Type
		lit string
	}{
		{token.IDENT, "a"}, {token.OP, "//"}, {token.IDENT, "b"}, {token.EOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(want))
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Literal != w.lit {
			t.Errorf("token %d = %s, want %s(%q)", i, toks[i], w.typ, w.lit)
		}
	}
}

func TestDocCommentReachesTheTokenStream(t *testing.T) {
	toks := scan(t, "/// returns one\nproc f(): i32 { return 1 }")
	if len(toks) == 0 || toks[0].Type != token.DOC_COMMENT {
		t.Fatalf("expected first token to be a DOC_COMMENT, got %v", toks)
	}
	if toks[0].Literal != "returns one" {
		t.Errorf("doc comment literal = %q, want %q", toks[0].Literal, "returns one")
	}
}

func TestWrapSuffixedOperators(t *testing.T) {
	toks := significant(scan(t, "a +~ b -~ c *~ d"))
	var ops []string
	for _, tok := range toks {
		if tok.Type == token.OP {
			ops = append(ops, tok.Literal)
		}
	}
	want := []string{"+~", "-~", "*~"}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d = %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestKeywordsAndLiterals(t *testing.T) {
	toks := significant(scan(t, `proc f(): bool { return 1.5 }`))
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	want := []token.Type{
		token.PROC, token.IDENT, token.LPAREN, token.RPAREN, token.COLON,
		token.IDENT, token.LBRACE, token.RETURN, token.FLOAT_LITERAL,
		token.RBRACE, token.EOF,
	}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d type = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestUnterminatedStringLogsSyntaxError(t *testing.T) {
	sink := errlog.NewSink()
	lexer.New(`"abc`, sink).Tokenize()
	if !sink.HasKind(errlog.SyntaxError, "unterminated") {
		t.Fatalf("expected an unterminated-string SyntaxError, got %v", sink.Records())
	}
}

func TestIdentifierNormalisedToNFC(t *testing.T) {
	// "é" as e + combining acute accent (NFD) must lex identically to the
	// single precomposed rune (NFC), per the lexer's Unicode normalisation.
	decomposed := "é"
	toks := significant(scan(t, decomposed+" = 1"))
	if toks[0].Literal != "é" {
		t.Errorf("identifier = %q (%d runes), want NFC-normalised %q", toks[0].Literal, len([]rune(toks[0].Literal)), "é")
	}
}
