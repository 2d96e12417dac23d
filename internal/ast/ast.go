// Package ast defines the Abstract Syntax Tree node types produced by the
// parser: a tagged variant with exhaustive case analysis via Go type
// switches, rather than a polymorphic class hierarchy. A missing case in
// a switch over Node is a programmer error, not something recovered at
// runtime.
package ast

import (
	"fmt"
	"strings"

	"github.com/elgin-lang/elginc/internal/token"
)

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
	String() string
}

// Expression marks a Node usable as a value-producing expression.
type Expression interface {
	Node
	expressionNode()
}

// Statement marks a Node usable as a top-level or block statement.
type Statement interface {
	Node
	statementNode()
}

// TypeExpr is the parsed representation of the source's type syntax
// (identifier -> primitive, *T -> Ptr, [N]T -> Array). It is resolved to
// a types.Type by the IR builder, not by the parser.
type TypeExpr struct {
	Position token.Position
	Name     string    // primitive identifier; empty for Ptr/Array
	Ptr      *TypeExpr // non-nil for *T
	ArrayLen int64     // valid when Array is non-nil
	Array    *TypeExpr // non-nil for [N]T
}

func (t *TypeExpr) String() string {
	if t == nil {
		return "<elided>"
	}
	switch {
	case t.Ptr != nil:
		return "*" + t.Ptr.String()
	case t.Array != nil:
		return fmt.Sprintf("[%d]%s", t.ArrayLen, t.Array.String())
	default:
		return t.Name
	}
}

// Literal is an untyped token-text literal (int, float, string, bool, or
// the synthesised "undefined" literal).
type Literal struct {
	Position token.Position
	Kind     string // "int", "float", "string", "bool", "undefined"
	Value    string
}

func (n *Literal) Pos() token.Position { return n.Position }
func (n *Literal) String() string      { return n.Value }
func (*Literal) expressionNode()       {}

// Call is a procedure call expression, recognised when an identifier is
// immediately followed by '('.
type Call struct {
	Position token.Position
	Name     string
	Args     []Expression
}

func (n *Call) Pos() token.Position { return n.Position }
func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(parts, ", "))
}
func (*Call) expressionNode() {}

// InfixOp is a binary operator expression.
type InfixOp struct {
	Position token.Position
	Op       string
	Left     Expression
	Right    Expression
}

func (n *InfixOp) Pos() token.Position { return n.Position }
func (n *InfixOp) String() string      { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }
func (*InfixOp) expressionNode()       {}

// PrefixOp is a unary prefix operator expression (!, +, -).
type PrefixOp struct {
	Position token.Position
	Op       string
	Operand  Expression
}

func (n *PrefixOp) Pos() token.Position { return n.Position }
func (n *PrefixOp) String() string      { return fmt.Sprintf("(%s%s)", n.Op, n.Operand) }
func (*PrefixOp) expressionNode()       {}

// PostfixOp is a generic unary postfix operator expression. The only
// postfix operator the current grammar registers a binding power for is
// '[', which parses as IndexOp instead; PostfixOp exists so the variant
// set matches the data model and future postfix operators have a home.
type PostfixOp struct {
	Position token.Position
	Op       string
	Operand  Expression
}

func (n *PostfixOp) Pos() token.Position { return n.Position }
func (n *PostfixOp) String() string      { return fmt.Sprintf("(%s%s)", n.Operand, n.Op) }
func (*PostfixOp) expressionNode()       {}

// IndexOp is the indexing expression a[i].
type IndexOp struct {
	Position token.Position
	Target   Expression
	Index    Expression
}

func (n *IndexOp) Pos() token.Position { return n.Position }
func (n *IndexOp) String() string      { return fmt.Sprintf("%s[%s]", n.Target, n.Index) }
func (*IndexOp) expressionNode()       {}

// VariableRef is a bare identifier used as a value.
type VariableRef struct {
	Position token.Position
	Name     string
}

func (n *VariableRef) Pos() token.Position { return n.Position }
func (n *VariableRef) String() string      { return n.Name }
func (*VariableRef) expressionNode()       {}

// If is an if/elif/else chain. ElseBody is never nil: a missing else
// clause is synthesised by the parser as a Block wrapping a single
// undefined Literal.
type If struct {
	Position  token.Position
	Condition Expression
	Body      *Block
	ElseBody  Statement // *Block, or a nested *If for an elif chain
}

func (n *If) Pos() token.Position { return n.Position }
func (n *If) String() string {
	return fmt.Sprintf("if %s %s else %s", n.Condition, n.Body, n.ElseBody)
}
func (*If) statementNode() {}

// While is a while loop. The parser also produces this node for
// `loop { B }`, desugared to While{Condition: Literal{bool,"true"}, Body: B}.
type While struct {
	Position  token.Position
	Condition Expression
	Body      *Block
}

func (n *While) Pos() token.Position { return n.Position }
func (n *While) String() string      { return fmt.Sprintf("while %s %s", n.Condition, n.Body) }
func (*While) statementNode()        {}

// Block is an ordered sequence of statements.
type Block struct {
	Position   token.Position
	Statements []Statement
}

func (n *Block) Pos() token.Position { return n.Position }
func (n *Block) String() string {
	parts := make([]string, len(n.Statements))
	for i, s := range n.Statements {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (*Block) statementNode() {}

// Var is a local variable declaration. Type is nil when elided; the IR
// builder substitutes a fresh type variable per spec.md §4.2.
type Var struct {
	Position token.Position
	Name     string
	Type     *TypeExpr
	Value    Expression // never nil; elided initialisers synthesise undefined
}

func (n *Var) Pos() token.Position { return n.Position }
func (n *Var) String() string      { return fmt.Sprintf("var %s: %s = %s", n.Name, n.Type, n.Value) }
func (*Var) statementNode()        {}

// Const is a module-top-level constant declaration.
type Const struct {
	Position token.Position
	Name     string
	Type     *TypeExpr
	Value    Expression
}

func (n *Const) Pos() token.Position { return n.Position }
func (n *Const) String() string {
	return fmt.Sprintf("const %s: %s = %s", n.Name, n.Type, n.Value)
}
func (*Const) statementNode() {}

// Assign is a plain `name = value` assignment.
type Assign struct {
	Position token.Position
	Name     string
	Value    Expression
}

func (n *Assign) Pos() token.Position { return n.Position }
func (n *Assign) String() string      { return fmt.Sprintf("%s = %s", n.Name, n.Value) }
func (*Assign) statementNode()        {}

// IndexedAssign is a `name[index] = value` assignment.
type IndexedAssign struct {
	Position token.Position
	Name     string
	Index    Expression
	Value    Expression
}

func (n *IndexedAssign) Pos() token.Position { return n.Position }
func (n *IndexedAssign) String() string {
	return fmt.Sprintf("%s[%s] = %s", n.Name, n.Index, n.Value)
}
func (*IndexedAssign) statementNode() {}

// Proc is a top-level procedure declaration.
type Proc struct {
	Position token.Position
	Name     string
	ArgNames []string
	ArgTypes []*TypeExpr
	RetType  *TypeExpr // nil when elided; the IR builder resolves it to Undefined
	Body     *Block
}

func (n *Proc) Pos() token.Position { return n.Position }
func (n *Proc) String() string {
	return fmt.Sprintf("proc %s(...): %s %s", n.Name, n.RetType, n.Body)
}
func (*Proc) statementNode() {}

// Return is a `return value` statement.
type Return struct {
	Position token.Position
	Value    Expression
}

func (n *Return) Pos() token.Position { return n.Position }
func (n *Return) String() string      { return fmt.Sprintf("return %s", n.Value) }
func (*Return) statementNode()        {}

// ExprStatement wraps a bare expression used as a statement.
type ExprStatement struct {
	Position token.Position
	Expr     Expression
}

func (n *ExprStatement) Pos() token.Position { return n.Position }
func (n *ExprStatement) String() string      { return n.Expr.String() }
func (*ExprStatement) statementNode()        {}

// Use is a `use a.b.c` declaration. Module/package resolution is an
// explicit Non-goal of the core; Use is parsed and retained for tooling
// but performs no resolution (see SPEC_FULL.md §4).
type Use struct {
	Position token.Position
	Path     []string
}

func (n *Use) Pos() token.Position { return n.Position }
func (n *Use) String() string      { return "use " + strings.Join(n.Path, ".") }
func (*Use) statementNode()        {}

// Program is the full sequence of top-level declarations produced by the
// parser. Only Proc, Const, and Use are legal members.
type Program struct {
	Declarations []Statement
}
