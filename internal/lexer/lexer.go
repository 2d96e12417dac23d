// Package lexer scans Chi source text into the position-tagged token
// stream the parser consumes. THE CORE itself treats lexical scanning as
// an external concern (spec.md §1); this package is the ambient supplement
// that makes the repository runnable end to end from a source file,
// grounded on original_source/src/lexer.rs's scanning algorithm and
// structured the way the teacher's internal/lexer package is (a
// position-tracking struct built by New(input, sink), scanning one token
// at a time in next() and collected by Tokenize()), with
// identifiers normalised to Unicode NFC the way internal/interp/encoding.go
// normalises runtime strings via golang.org/x/text.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/token"
)

// Lexer scans one source string. Column positions are rune counts, not
// byte offsets, matching the teacher's convention for Unicode source.
type Lexer struct {
	input  []rune
	sink   *errlog.Sink
	pos    int
	line   int
	column int
	offset int // byte offset of pos, tracked alongside the rune position

	nesting int        // depth of open ( / [, suppresses Newline emission
	prev    token.Type // type of the last emitted token, for newline suppression
	havePrev bool
}

// New creates a Lexer for input, logging to sink (or the package default
// sink if nil).
func New(input string, sink *errlog.Sink) *Lexer {
	return &Lexer{
		input:  []rune(input),
		sink:   errlog.Resolve(sink),
		line:   1,
		column: 1,
	}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.input) {
		return 0
	}
	return l.input[l.pos+off]
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	l.offset += utf8.RuneLen(ch)
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) here() token.Position {
	return token.Position{Offset: l.offset, Line: l.line, Column: l.column}
}

// Tokenize scans the full input and returns the token stream, always
// terminated by a single EOF token.
func (l *Lexer) Tokenize() []token.Token {
	var out []token.Token
	for {
		tok := l.next()
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func (l *Lexer) emit(t token.Token) token.Token {
	l.prev = t.Type
	l.havePrev = true
	return t
}

// next scans and returns the next token, mirroring original_source's
// lexer.rs `go()` loop one token at a time instead of building the whole
// Vec<Span> up front.
func (l *Lexer) next() token.Token {
	for {
		ch := l.peek()
		switch {
		case ch == 0:
			return l.emit(token.Token{Type: token.EOF, Pos: l.here()})

		case ch == '\n':
			pos := l.here()
			l.advance()
			if l.suppressNewline() {
				continue
			}
			return l.emit(token.Token{Type: token.NEWLINE, Literal: "\n", Pos: pos})

		case isSpace(ch):
			l.advance()
			continue

		// ';' terminates a statement exactly like a newline, so one-line
		// sources such as `var x = 1; return x` split into two statements.
		case ch == ';':
			pos := l.here()
			l.advance()
			return l.emit(token.Token{Type: token.NEWLINE, Literal: ";", Pos: pos})

		// Only "///" starts a doc comment; a bare "//" is the integer-
		// divide operator (scanned below as an Op), not a comment — this
		// language has no plain line-comment syntax.
		case ch == '/' && l.peekAt(1) == '/' && l.peekAt(2) == '/':
			return l.scanLineComment()

		case isIdentStart(ch):
			return l.emit(l.scanIdent())

		case isDigit(ch):
			return l.emit(l.scanNumber())

		case ch == '"':
			return l.emit(l.scanString())

		case ch == '=':
			pos := l.here()
			l.advance()
			if l.peek() == '=' {
				l.advance()
				return l.emit(token.Token{Type: token.OP, Literal: "==", Pos: pos})
			}
			return l.emit(token.Token{Type: token.EQUALS, Literal: "=", Pos: pos})

		case isSpecial(ch):
			return l.emit(l.scanSpecial())

		case isOpRune(ch):
			return l.emit(l.scanOperator())

		default:
			pos := l.here()
			l.advance()
			l.sink.Syntax("unexpected character '"+string(ch)+"'", pos, 1)
			continue
		}
	}
}

// suppressNewline implements the exact rule from original_source's
// lexer.rs: swallow the newline when inside an open paren/bracket, or
// when the previous token was an operator or comma.
func (l *Lexer) suppressNewline() bool {
	if l.nesting != 0 {
		return true
	}
	if !l.havePrev {
		return false
	}
	return l.prev == token.OP || l.prev == token.COMMA
}

func (l *Lexer) scanLineComment() token.Token {
	start := l.here()
	l.advance() // '/'
	l.advance() // '/'
	l.advance() // '/'
	var b strings.Builder
	for l.peek() != 0 && l.peek() != '\n' {
		b.WriteRune(l.advance())
	}
	return l.emit(token.Token{Type: token.DOC_COMMENT, Literal: strings.TrimSpace(b.String()), Pos: start})
}

func (l *Lexer) scanIdent() token.Token {
	pos := l.here()
	var b strings.Builder
	for isIdentCont(l.peek()) {
		b.WriteRune(l.advance())
	}
	text := norm.NFC.String(b.String())
	if kw, ok := token.Keywords[text]; ok {
		return token.Token{Type: kw, Literal: text, Pos: pos}
	}
	return token.Token{Type: token.IDENT, Literal: text, Pos: pos}
}

func (l *Lexer) scanNumber() token.Token {
	pos := l.here()
	var b strings.Builder
	sawDot := false
	for isDigit(l.peek()) || (l.peek() == '.' && !sawDot && isDigit(l.peekAt(1))) {
		if l.peek() == '.' {
			sawDot = true
		}
		b.WriteRune(l.advance())
	}
	if sawDot {
		return token.Token{Type: token.FLOAT_LITERAL, Literal: b.String(), Pos: pos}
	}
	return token.Token{Type: token.INT_LITERAL, Literal: b.String(), Pos: pos}
}

func (l *Lexer) scanString() token.Token {
	pos := l.here()
	l.advance() // opening quote
	var b strings.Builder
	for l.peek() != '"' {
		if l.peek() == 0 {
			l.sink.Syntax("unterminated string literal", pos, b.Len())
			return token.Token{Type: token.STR_LITERAL, Literal: b.String(), Pos: pos}
		}
		b.WriteRune(l.advance())
	}
	l.advance() // closing quote
	return token.Token{Type: token.STR_LITERAL, Literal: b.String(), Pos: pos}
}

var specials = map[rune]token.Type{
	'(': token.LPAREN, ')': token.RPAREN,
	'[': token.LBRACKET, ']': token.RBRACKET,
	'{': token.LBRACE, '}': token.RBRACE,
	',': token.COMMA, ':': token.COLON,
}

func (l *Lexer) scanSpecial() token.Token {
	pos := l.here()
	ch := l.advance()
	switch ch {
	case '(', '[':
		l.nesting++
	case ')', ']':
		if l.nesting > 0 {
			l.nesting--
		}
	}
	return token.Token{Type: specials[ch], Literal: string(ch), Pos: pos}
}

// scanOperator consumes a maximal run of operator runes. '=' is itself an
// operator rune (not a special), so this naturally extends "!"/"<"/">"
// into "!="/"<="/">=" and "+"/"-"/"*" into their "~"-suffixed wrapping
// forms; a bare "=" is instead recognised by the explicit '=' dispatch in
// next(), which runs before this function is ever reached.
func (l *Lexer) scanOperator() token.Token {
	pos := l.here()
	var b strings.Builder
	for isOpRune(l.peek()) {
		b.WriteRune(l.advance())
	}
	return token.Token{Type: token.OP, Literal: b.String(), Pos: pos}
}

func isSpace(ch rune) bool      { return ch == ' ' || ch == '\t' || ch == '\r' }
func isDigit(ch rune) bool      { return ch >= '0' && ch <= '9' }
func isIdentStart(ch rune) bool { return unicode.IsLetter(ch) || ch == '_' }
func isIdentCont(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsMark(ch) || unicode.IsDigit(ch) || ch == '_'
}
func isSpecial(ch rune) bool {
	_, ok := specials[ch]
	return ok
}

// isOpRune mirrors original_source's is_op: any Unicode punctuation or
// symbol rune, except the string-quote delimiter, '_', and the special
// characters, which are all handled separately.
func isOpRune(ch rune) bool {
	if ch == '"' || ch == '_' || isSpecial(ch) {
		return false
	}
	return unicode.IsPunct(ch) || unicode.IsSymbol(ch)
}
