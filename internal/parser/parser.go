// Package parser implements the Chi AST builder using Pratt parsing.
//
// Key patterns, grounded on internal/parser in the teacher repository:
//   - A precedence table (here: three small binding-power functions,
//     since the grammar's operator set is tiny) drives parseExpression's
//     main precedence-climbing loop.
//   - The parser never panics on malformed input: on a mismatched token it
//     logs a SyntaxError to the error sink and substitutes a best-effort
//     placeholder node so that siblings can still be parsed, per
//     spec.md §7's "sibling declarations may still be processed" policy.
package parser

import (
	"strconv"
	"strings"

	"github.com/elgin-lang/elginc/internal/ast"
	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/token"
)

// Parser consumes a token stream and produces a Program.
type Parser struct {
	toks []token.Token
	pos  int
	sink *errlog.Sink
}

// New constructs a Parser over toks, logging to sink (or the package
// default sink if nil). toks should be terminated by an EOF token; New
// appends one if it is missing.
func New(toks []token.Token, sink *errlog.Sink) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Type != token.EOF {
		toks = append(append([]token.Token{}, toks...), token.Token{Type: token.EOF})
	}
	return &Parser{toks: toks, sink: errlog.Resolve(sink)}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekType(offset int) token.Type {
	i := p.pos + offset
	if i >= len(p.toks) {
		return token.EOF
	}
	return p.toks[i].Type
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt token.Type, what string) (token.Token, bool) {
	if p.cur().Type == tt {
		return p.advance(), true
	}
	tok := p.cur()
	p.sink.Syntax("expected "+what+", found "+tok.Type.String(), tok.Pos, len(tok.Literal))
	return tok, false
}

func (p *Parser) skipNewlines() {
	for p.cur().Type == token.NEWLINE || p.cur().Type == token.DOC_COMMENT {
		p.advance()
	}
}

// lookPastNewlines returns the type of the first token that is not a
// Newline or DocComment, without consuming anything. Used to find a
// trailing `elif`/`else` across a blank line after a block's closing `}`.
func (p *Parser) lookPastNewlines() token.Type {
	i := p.pos
	for i < len(p.toks) && (p.toks[i].Type == token.NEWLINE || p.toks[i].Type == token.DOC_COMMENT) {
		i++
	}
	if i >= len(p.toks) {
		return token.EOF
	}
	return p.toks[i].Type
}

// Parse builds the top-level Program. Only Proc, Const, and Use
// declarations are legal at the top level; anything else logs a
// SyntaxError and is skipped so remaining declarations can still be
// parsed. The returned bool is false if any error was logged.
func Parse(toks []token.Token, sink *errlog.Sink) (*ast.Program, bool) {
	p := New(toks, sink)
	prog := &ast.Program{}
	ok := true
	p.skipNewlines()
	for p.cur().Type != token.EOF {
		var decl ast.Statement
		switch p.cur().Type {
		case token.PROC:
			decl = p.parseProc()
		case token.CONST:
			decl = p.parseConst()
		case token.USE:
			decl = p.parseUse()
		default:
			tok := p.cur()
			p.sink.Syntax("invalid at top level: "+tok.Type.String(), tok.Pos, len(tok.Literal))
			ok = false
			p.advance()
			p.skipNewlines()
			continue
		}
		if decl != nil {
			prog.Declarations = append(prog.Declarations, decl)
		} else {
			ok = false
		}
		p.skipNewlines()
	}
	if p.sink.HasErrors() {
		ok = false
	}
	return prog, ok
}

// --- binding powers -------------------------------------------------

func stripWrap(op string) string { return strings.TrimSuffix(op, "~") }

func prefixBindingPower(op string) (rbp int, ok bool) {
	switch op {
	case "!":
		return 8, true
	case "+", "-":
		return 9, true
	}
	return 0, false
}

func infixBindingPower(op string) (lbp, rbp int, ok bool) {
	switch op {
	case "+", "-":
		return 5, 6, true
	case "*", "/", "//":
		return 7, 8, true
	case "==", "!=", "<", ">", "<=", ">=":
		return 3, 4, true
	}
	return 0, 0, false
}

func indexBindingPower(tt token.Type) (lbp int, ok bool) {
	if tt == token.LBRACKET {
		return 11, true
	}
	return 0, false
}

// --- expressions ------------------------------------------------------

func (p *Parser) parseExpression(minBP int) ast.Expression {
	left := p.parsePrimary()
	for {
		if lbp, ok := indexBindingPower(p.cur().Type); ok {
			if lbp < minBP {
				break
			}
			pos := p.cur().Pos
			p.advance() // '['
			index := p.parseExpression(0)
			p.expect(token.RBRACKET, "']'")
			left = &ast.IndexOp{Position: pos, Target: left, Index: index}
			continue
		}
		if p.cur().Type != token.OP {
			break
		}
		opText := p.cur().Literal
		lbp, rbp, ok := infixBindingPower(stripWrap(opText))
		if !ok || lbp < minBP {
			break
		}
		pos := p.cur().Pos
		p.advance()
		right := p.parseExpression(rbp)
		left = &ast.InfixOp{Position: pos, Op: opText, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT_LITERAL:
		p.advance()
		return &ast.Literal{Position: tok.Pos, Kind: "int", Value: tok.Literal}
	case token.FLOAT_LITERAL:
		p.advance()
		return &ast.Literal{Position: tok.Pos, Kind: "float", Value: tok.Literal}
	case token.STR_LITERAL:
		p.advance()
		return &ast.Literal{Position: tok.Pos, Kind: "string", Value: tok.Literal}
	case token.IDENT:
		if tok.Literal == "true" || tok.Literal == "false" {
			p.advance()
			return &ast.Literal{Position: tok.Pos, Kind: "bool", Value: tok.Literal}
		}
		p.advance()
		if p.cur().Type == token.LPAREN {
			return p.parseCall(tok)
		}
		return &ast.VariableRef{Position: tok.Pos, Name: tok.Literal}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression(0)
		p.expect(token.RPAREN, "')'")
		return inner
	case token.OP:
		return p.parsePrefix()
	default:
		p.sink.Syntax("expected expression, found "+tok.Type.String(), tok.Pos, len(tok.Literal))
		p.advance()
		return undefinedLiteral(tok.Pos)
	}
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur()
	rbp, ok := prefixBindingPower(stripWrap(tok.Literal))
	if !ok {
		p.sink.Syntax("unexpected operator '"+tok.Literal+"'", tok.Pos, len(tok.Literal))
		p.advance()
		return undefinedLiteral(tok.Pos)
	}
	p.advance()
	operand := p.parseExpression(rbp)
	return &ast.PrefixOp{Position: tok.Pos, Op: tok.Literal, Operand: operand}
}

func (p *Parser) parseCall(name token.Token) ast.Expression {
	p.advance() // '('
	var args []ast.Expression
	for p.cur().Type != token.RPAREN && p.cur().Type != token.EOF {
		args = append(args, p.parseExpression(0))
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "')'")
	return &ast.Call{Position: name.Pos, Name: name.Literal, Args: args}
}

func undefinedLiteral(pos token.Position) *ast.Literal {
	return &ast.Literal{Position: pos, Kind: "undefined", Value: "undefined"}
}

func undefinedStatement(pos token.Position) ast.Statement {
	return &ast.ExprStatement{Position: pos, Expr: undefinedLiteral(pos)}
}

// --- types --------------------------------------------------------------

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	tok := p.cur()
	switch {
	case tok.Type == token.OP && tok.Literal == "*":
		p.advance()
		inner := p.parseTypeExpr()
		return &ast.TypeExpr{Position: tok.Pos, Ptr: inner}
	case tok.Type == token.LBRACKET:
		p.advance()
		sizeTok, _ := p.expect(token.INT_LITERAL, "array size")
		p.expect(token.RBRACKET, "']'")
		inner := p.parseTypeExpr()
		n, _ := strconv.ParseInt(sizeTok.Literal, 10, 64)
		return &ast.TypeExpr{Position: tok.Pos, ArrayLen: n, Array: inner}
	case tok.Type == token.IDENT:
		p.advance()
		return &ast.TypeExpr{Position: tok.Pos, Name: tok.Literal}
	default:
		p.sink.Syntax("expected type, found "+tok.Type.String(), tok.Pos, len(tok.Literal))
		return &ast.TypeExpr{Position: tok.Pos, Name: "i64"}
	}
}

// --- statements -----------------------------------------------------------

func (p *Parser) parseBraceBlock() *ast.Block {
	start, _ := p.expect(token.LBRACE, "'{'")
	block := &ast.Block{Position: start.Pos}
	p.skipNewlines()
	for p.cur().Type != token.RBRACE && p.cur().Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipNewlines()
	}
	p.expect(token.RBRACE, "'}'")
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	p.skipNewlines()
	switch p.cur().Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.LOOP:
		return p.parseLoop()
	case token.VAR:
		return p.parseVar()
	case token.CONST:
		tok := p.cur()
		p.sink.Syntax("const declaration is only allowed at module top level", tok.Pos, len(tok.Literal))
		p.parseConst() // consume it so parsing can continue
		return undefinedStatement(tok.Pos)
	case token.RETURN:
		return p.parseReturn()
	case token.USE:
		return p.parseUse()
	case token.IDENT:
		return p.parseIdentStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseExprStatement() ast.Statement {
	pos := p.cur().Pos
	expr := p.parseExpression(0)
	return &ast.ExprStatement{Position: pos, Expr: expr}
}

// parseIdentStatement dispatches an identifier-led statement: `name =
// value` is an assignment, `name[index] = value` is an indexed
// assignment, otherwise it is an expression statement.
func (p *Parser) parseIdentStatement() ast.Statement {
	tok := p.cur()

	if p.peekType(1) == token.EQUALS {
		p.advance() // ident
		p.advance() // '='
		value := p.parseExpression(0)
		return &ast.Assign{Position: tok.Pos, Name: tok.Literal, Value: value}
	}

	if p.peekType(1) == token.LBRACKET {
		mark := p.pos
		p.advance() // ident
		p.advance() // '['
		index := p.parseExpression(0)
		p.expect(token.RBRACKET, "']'")
		if p.cur().Type == token.EQUALS {
			p.advance()
			value := p.parseExpression(0)
			return &ast.IndexedAssign{Position: tok.Pos, Name: tok.Literal, Index: index, Value: value}
		}
		p.pos = mark
	}

	return p.parseExprStatement()
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.advance() // 'if' or 'elif'
	cond := p.parseExpression(0)
	body := p.parseBraceBlock()

	switch p.lookPastNewlines() {
	case token.ELIF:
		p.skipNewlines()
		elseIf := p.parseIf()
		return &ast.If{Position: tok.Pos, Condition: cond, Body: body, ElseBody: elseIf}
	case token.ELSE:
		p.skipNewlines()
		p.advance() // 'else'
		elseBlock := p.parseBraceBlock()
		return &ast.If{Position: tok.Pos, Condition: cond, Body: body, ElseBody: elseBlock}
	default:
		return &ast.If{Position: tok.Pos, Condition: cond, Body: body, ElseBody: syntheticElse(tok.Pos)}
	}
}

func syntheticElse(pos token.Position) *ast.Block {
	return &ast.Block{Position: pos, Statements: []ast.Statement{undefinedStatement(pos)}}
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.advance() // 'while'
	cond := p.parseExpression(0)
	body := p.parseBraceBlock()
	return &ast.While{Position: tok.Pos, Condition: cond, Body: body}
}

// parseLoop desugars `loop { B }` to While(true, B) at the AST layer, per
// spec.md §3: "Loop lowers to While(true, body)".
func (p *Parser) parseLoop() ast.Statement {
	tok := p.advance() // 'loop'
	body := p.parseBraceBlock()
	cond := &ast.Literal{Position: tok.Pos, Kind: "bool", Value: "true"}
	return &ast.While{Position: tok.Pos, Condition: cond, Body: body}
}

func (p *Parser) parseVar() ast.Statement {
	tok := p.advance() // 'var'
	nameTok, _ := p.expect(token.IDENT, "identifier")
	var typ *ast.TypeExpr
	if p.cur().Type == token.COLON {
		p.advance()
		typ = p.parseTypeExpr()
	}
	var value ast.Expression
	if p.cur().Type == token.EQUALS {
		p.advance()
		value = p.parseExpression(0)
	} else {
		value = undefinedLiteral(tok.Pos)
	}
	return &ast.Var{Position: tok.Pos, Name: nameTok.Literal, Type: typ, Value: value}
}

func (p *Parser) parseConst() ast.Statement {
	tok := p.advance() // 'const'
	nameTok, _ := p.expect(token.IDENT, "identifier")
	var typ *ast.TypeExpr
	if p.cur().Type == token.COLON {
		p.advance()
		typ = p.parseTypeExpr()
	}
	p.expect(token.EQUALS, "'='")
	value := p.parseExpression(0)
	return &ast.Const{Position: tok.Pos, Name: nameTok.Literal, Type: typ, Value: value}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.advance() // 'return'
	value := p.parseExpression(0)
	return &ast.Return{Position: tok.Pos, Value: value}
}

func (p *Parser) parseUse() ast.Statement {
	tok := p.advance() // 'use'
	nameTok, _ := p.expect(token.IDENT, "identifier")
	path := []string{nameTok.Literal}
	for p.cur().Type == token.OP && p.cur().Literal == "." {
		p.advance()
		part, _ := p.expect(token.IDENT, "identifier")
		path = append(path, part.Literal)
	}
	return &ast.Use{Position: tok.Pos, Path: path}
}

func (p *Parser) parseProc() ast.Statement {
	tok := p.advance() // 'proc'
	nameTok, _ := p.expect(token.IDENT, "identifier")
	p.expect(token.LPAREN, "'('")

	var argNames []string
	var argTypes []*ast.TypeExpr
	for p.cur().Type != token.RPAREN && p.cur().Type != token.EOF {
		argTok, _ := p.expect(token.IDENT, "parameter name")
		p.expect(token.COLON, "':'")
		argType := p.parseTypeExpr()
		argNames = append(argNames, argTok.Literal)
		argTypes = append(argTypes, argType)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN, "')'")

	var retType *ast.TypeExpr
	if p.cur().Type == token.COLON {
		p.advance()
		retType = p.parseTypeExpr()
	}

	var body *ast.Block
	if p.cur().Type == token.LBRACE {
		body = p.parseBraceBlock()
	} else {
		body = &ast.Block{Position: nameTok.Pos}
	}

	return &ast.Proc{
		Position: tok.Pos,
		Name:     nameTok.Literal,
		ArgNames: argNames,
		ArgTypes: argTypes,
		RetType:  retType,
		Body:     body,
	}
}
