// This file implements the two-pass AST-to-stack-IR lowerer (spec.md
// §4.2), grounded on original_source/src/astgen.rs's IRBuilder: pass one
// declares every top-level procedure/constant by signature, pass two
// walks each procedure body and emits the flat, labelled instruction
// sequence. original_source/src/ir.rs's postfix_op/index_op are
// unimplemented todo!() stubs; the IndexLoad/IndexStore lowering below
// completes what that source left unfinished (SPEC_FULL.md §4).
package ir

import (
	"fmt"

	"github.com/elgin-lang/elginc/internal/ast"
	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/types"
)

// Builder lowers a Program into a CompilationUnit.
type Builder struct {
	unit *CompilationUnit
	sink *errlog.Sink
}

// NewBuilder constructs a Builder writing into a fresh CompilationUnit.
func NewBuilder(sink *errlog.Sink) *Builder {
	return &Builder{unit: NewUnit(), sink: errlog.Resolve(sink)}
}

// Build runs both lowering passes over prog and returns the populated
// CompilationUnit. The unit is always returned (never nil); the bool is
// false if pass 1 rejected an illegal top-level node or the sink holds
// any error. Per spec.md §7, a per-procedure failure in pass 2 does not
// abort the whole pass; sibling procedures still lower.
func (b *Builder) Build(prog *ast.Program) (*CompilationUnit, bool) {
	ok := b.pass1(prog)
	b.pass2(prog)
	if b.sink.HasErrors() {
		ok = false
	}
	return b.unit, ok
}

// Unit exposes the CompilationUnit under construction, mirroring
// spec.md §6's `build_ir(ast) -> Option<&[IRProc]>` view.
func (b *Builder) Unit() *CompilationUnit { return b.unit }

// --- pass 1: declarations --------------------------------------------------

func (b *Builder) pass1(prog *ast.Program) bool {
	ok := true
	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.Proc:
			b.unit.Procs = append(b.unit.Procs, &IRProc{
				Name:     d.Name,
				ArgNames: append([]string{}, d.ArgNames...),
				ArgTypes: b.resolveTypeExprs(d.ArgTypes),
				RetType:  b.resolveRetType(d.RetType),
			})
		case *ast.Const:
			b.unit.Consts[d.Name] = d.Value
		case *ast.Use:
			b.unit.Uses = append(b.unit.Uses, joinPath(d.Path))
		default:
			b.sink.Syntax(fmt.Sprintf("invalid at top level: %T", d), decl.Pos(), 0)
			ok = false
		}
	}
	return ok
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}

func (b *Builder) resolveTypeExprs(exprs []*ast.TypeExpr) []types.Type {
	out := make([]types.Type, len(exprs))
	for i, e := range exprs {
		out[i] = b.resolveTypeExpr(e)
	}
	return out
}

// resolveRetType synthesises Undefined for an elided return type
// annotation (spec.md §4.1: "Missing return type synthesises Undefined").
func (b *Builder) resolveRetType(e *ast.TypeExpr) types.Type {
	if e == nil {
		return types.UndefinedType
	}
	return b.resolveTypeExpr(e)
}

// resolveTypeExpr turns parsed type syntax into a concrete types.Type.
// An unresolvable primitive name is a name error and resolves to a fresh
// Variable so lowering can continue.
func (b *Builder) resolveTypeExpr(e *ast.TypeExpr) types.Type {
	if e == nil {
		return types.UnknownType
	}
	switch {
	case e.Ptr != nil:
		return types.NewPtr(b.resolveTypeExpr(e.Ptr))
	case e.Array != nil:
		return types.NewArray(uint64(e.ArrayLen), b.resolveTypeExpr(e.Array))
	default:
		if t, ok := types.PrimByName(e.Name); ok {
			return t
		}
		b.sink.Name("unknown type '"+e.Name+"'", e.Position, len(e.Name))
		return b.unit.freshTypeVar()
	}
}

// --- pass 2: lowering -------------------------------------------------------

func (b *Builder) pass2(prog *ast.Program) {
	for _, decl := range prog.Declarations {
		proc, ok := decl.(*ast.Proc)
		if !ok {
			continue
		}
		b.lowerProc(proc)
	}
}

func (b *Builder) lowerProc(decl *ast.Proc) {
	irProc, _ := b.unit.FindProc(decl.Name)
	if irProc == nil {
		return // pass 1 rejected this declaration; nothing to lower into
	}

	scope := Scope{}
	for i, name := range irProc.ArgNames {
		scope[name] = irProc.ArgTypes[i]
	}
	b.unit.pushScope(scope)
	defer b.unit.popScope()

	if len(decl.Body.Statements) == 0 {
		// Declaration-only stub: signature recorded, nothing to lower.
		return
	}

	irProc.Body = b.lowerBlock(decl.Body)

	if irProc.RetType.Kind == types.Undefined && !EndsInReturn(irProc.Body) {
		pos := decl.Body.Pos()
		irProc.Body = append(irProc.Body,
			Instruction{Kind: Push, Type: types.UndefinedType, Pos: pos, Text: "undefined"},
			Instruction{Kind: Return, Type: types.UndefinedType, Pos: pos},
		)
	}
}

func (b *Builder) lowerBlock(blk *ast.Block) []Instruction {
	var out []Instruction
	for _, stmt := range blk.Statements {
		out = append(out, b.lowerStatement(stmt)...)
	}
	return out
}

func (b *Builder) lowerStatement(stmt ast.Statement) []Instruction {
	switch s := stmt.(type) {
	case *ast.ExprStatement:
		return b.lowerExpr(s.Expr)
	case *ast.Var:
		return b.lowerVar(s)
	case *ast.Assign:
		return b.lowerAssign(s)
	case *ast.IndexedAssign:
		return b.lowerIndexedAssign(s)
	case *ast.Return:
		return b.lowerReturn(s)
	case *ast.If:
		return b.lowerIf(s)
	case *ast.While:
		return b.lowerWhile(s)
	case *ast.Block:
		return b.lowerBlock(s)
	case *ast.Use:
		return nil // inert metadata only, recorded in pass 1
	case *ast.Const:
		b.sink.Syntax("const declaration is only allowed at module top level", s.Pos(), 0)
		return nil
	default:
		b.sink.Syntax(fmt.Sprintf("cannot lower statement %T", s), stmt.Pos(), 0)
		return nil
	}
}

func (b *Builder) lowerVar(s *ast.Var) []Instruction {
	out := b.lowerExpr(s.Value)
	typ := b.resolveVarType(s.Type)
	out = append(out, Instruction{Kind: Allocate, Type: typ, Pos: s.Position, Name: s.Name})
	b.unit.declareVar(s.Name, typ)
	return out
}

// resolveVarType mirrors spec.md §4.2's rule for Var: "If typ is
// Unknown, replace with a fresh Variable first." A fully elided
// annotation parses to a nil *TypeExpr, which resolveTypeExpr already
// treats as Unknown, so both paths converge here.
func (b *Builder) resolveVarType(e *ast.TypeExpr) types.Type {
	t := b.resolveTypeExpr(e)
	if t.Kind == types.Unknown {
		return b.unit.freshTypeVar()
	}
	return t
}

func (b *Builder) lowerAssign(s *ast.Assign) []Instruction {
	out := b.lowerExpr(s.Value)
	typ, ok := b.unit.lookupVar(s.Name)
	if !ok {
		b.sink.Name("variable '"+s.Name+"' not in scope", s.Position, len(s.Name))
		typ = b.unit.freshTypeVar()
	}
	return append(out, Instruction{Kind: Store, Type: typ, Pos: s.Position, Name: s.Name})
}

func (b *Builder) lowerIndexedAssign(s *ast.IndexedAssign) []Instruction {
	typ, ok := b.unit.lookupVar(s.Name)
	if !ok {
		b.sink.Name("variable '"+s.Name+"' not in scope", s.Position, len(s.Name))
		typ = b.unit.freshTypeVar()
	}
	var out []Instruction
	out = append(out, Instruction{Kind: Load, Type: typ, Pos: s.Position, Name: s.Name})
	out = append(out, b.lowerExpr(s.Index)...)
	out = append(out, b.lowerExpr(s.Value)...)
	out = append(out, Instruction{Kind: IndexStore, Type: b.unit.freshTypeVar(), Pos: s.Position})
	return out
}

func (b *Builder) lowerReturn(s *ast.Return) []Instruction {
	out := b.lowerExpr(s.Value)
	typ := types.UndefinedType
	if len(out) > 0 {
		typ = out[len(out)-1].Type
	}
	return append(out, Instruction{Kind: Return, Type: typ, Pos: s.Position})
}

// lowerIf implements spec.md §4.2's If lowering rule exactly, including
// the "omit Label(end) only when both branches end in Return" refinement
// (invariant 6, S2): allocate three label ids, lower the condition and
// emit Branch, lower each arm appending a Jump(end) unless that arm
// itself ends in Return, and only emit Label(end) if at least one arm
// did not end in Return.
func (b *Builder) lowerIf(s *ast.If) []Instruction {
	bodyID := b.unit.freshLabel()
	elseID := b.unit.freshLabel()
	endID := b.unit.freshLabel()
	pos := s.Position

	var out []Instruction
	out = append(out, b.lowerExpr(s.Condition)...)
	out = append(out, Instruction{Kind: Branch, Type: types.NoReturnType, Pos: pos, Then: bodyID, Else: elseID})

	out = append(out, Instruction{Kind: Label, Type: types.NoReturnType, Pos: pos, Label: bodyID})
	bodyIns := b.lowerBlock(s.Body)
	out = append(out, bodyIns...)
	bodyReturns := EndsInReturn(bodyIns)
	if !bodyReturns {
		out = append(out, Instruction{Kind: Jump, Type: types.NoReturnType, Pos: pos, Label: endID})
	}

	out = append(out, Instruction{Kind: Label, Type: types.NoReturnType, Pos: pos, Label: elseID})
	elseIns := b.lowerStatement(s.ElseBody)
	out = append(out, elseIns...)
	elseReturns := EndsInReturn(elseIns)
	if !elseReturns {
		out = append(out, Instruction{Kind: Jump, Type: types.NoReturnType, Pos: pos, Label: endID})
	}

	if !bodyReturns || !elseReturns {
		out = append(out, Instruction{Kind: Label, Type: types.NoReturnType, Pos: pos, Label: endID})
	}
	return out
}

// lowerWhile implements spec.md §4.2's While lowering rule, and also
// handles the `loop { B }` desugaring performed by the parser (invariant
// 7: identical IR modulo label numbering, since loop's condition is
// always the literal `true`).
func (b *Builder) lowerWhile(s *ast.While) []Instruction {
	condID := b.unit.freshLabel()
	bodyID := b.unit.freshLabel()
	endID := b.unit.freshLabel()
	pos := s.Position

	var out []Instruction
	out = append(out, Instruction{Kind: Jump, Type: types.NoReturnType, Pos: pos, Label: condID})
	out = append(out, Instruction{Kind: Label, Type: types.NoReturnType, Pos: pos, Label: condID})
	out = append(out, b.lowerExpr(s.Condition)...)
	out = append(out, Instruction{Kind: Branch, Type: types.NoReturnType, Pos: pos, Then: bodyID, Else: endID})
	out = append(out, Instruction{Kind: Label, Type: types.NoReturnType, Pos: pos, Label: bodyID})
	bodyIns := b.lowerBlock(s.Body)
	out = append(out, bodyIns...)
	if !EndsInReturn(bodyIns) {
		out = append(out, Instruction{Kind: Jump, Type: types.NoReturnType, Pos: pos, Label: condID})
	}
	out = append(out, Instruction{Kind: Label, Type: types.NoReturnType, Pos: pos, Label: endID})
	return out
}

// --- expressions -------------------------------------------------------------

func (b *Builder) lowerExpr(e ast.Expression) []Instruction {
	switch n := e.(type) {
	case *ast.Literal:
		return []Instruction{{Kind: Push, Type: literalType(n), Pos: n.Position, Text: n.Value}}
	case *ast.VariableRef:
		return b.lowerVariableRef(n)
	case *ast.InfixOp:
		return b.lowerInfixOp(n)
	case *ast.PrefixOp:
		return b.lowerPrefixOp(n)
	case *ast.IndexOp:
		return b.lowerIndexOp(n)
	case *ast.Call:
		return b.lowerCall(n)
	default:
		b.sink.Syntax(fmt.Sprintf("cannot lower expression %T", e), e.Pos(), 0)
		return nil
	}
}

// literalType assigns the literal-tag/concrete type of a raw Literal node
// per spec.md §3: untyped numeric/string literals get the deferred
// literal-tag types; bool and the synthesised undefined literal get
// their concrete sentinel directly.
func literalType(lit *ast.Literal) types.Type {
	switch lit.Kind {
	case "int":
		return types.IntLiteralT
	case "float":
		return types.FloatLiteralT
	case "string":
		return types.StrLiteralT
	case "bool":
		return types.BoolT
	default: // "undefined"
		return types.UndefinedType
	}
}

// lowerVariableRef implements spec.md §4.2's rule: a constant name
// splices (inlines) the constant's initialising AST in place; otherwise
// resolve in scope and emit Load.
func (b *Builder) lowerVariableRef(n *ast.VariableRef) []Instruction {
	if constExpr, ok := b.unit.Consts[n.Name]; ok {
		return b.lowerExpr(constExpr)
	}
	typ, ok := b.unit.lookupVar(n.Name)
	if !ok {
		b.sink.Name("variable '"+n.Name+"' not in scope", n.Position, len(n.Name))
		typ = b.unit.freshTypeVar()
	}
	return []Instruction{{Kind: Load, Type: typ, Pos: n.Position, Name: n.Name}}
}

func (b *Builder) lowerInfixOp(n *ast.InfixOp) []Instruction {
	out := b.lowerExpr(n.Left)
	out = append(out, b.lowerExpr(n.Right)...)
	wrap := hasWrapSuffix(n.Op)
	base := trimWrapSuffix(n.Op)
	pos := n.Position
	switch base {
	case "+":
		return append(out, Instruction{Kind: Add, Type: b.unit.freshTypeVar(), Pos: pos, Wrap: wrap})
	case "-":
		return append(out, Instruction{Kind: Subtract, Type: b.unit.freshTypeVar(), Pos: pos, Wrap: wrap})
	case "*":
		return append(out, Instruction{Kind: Multiply, Type: b.unit.freshTypeVar(), Pos: pos, Wrap: wrap})
	case "//":
		return append(out, Instruction{Kind: IntDivide, Type: b.unit.freshTypeVar(), Pos: pos})
	case "/":
		return append(out, Instruction{Kind: Divide, Type: b.unit.freshTypeVar(), Pos: pos})
	case "==":
		return append(out, Instruction{Kind: Compare, Type: b.unit.freshTypeVar(), Pos: pos, Cmp: EQ})
	case "!=":
		return append(out, Instruction{Kind: Compare, Type: b.unit.freshTypeVar(), Pos: pos, Cmp: NE})
	case "<":
		return append(out, Instruction{Kind: Compare, Type: b.unit.freshTypeVar(), Pos: pos, Cmp: LT})
	case ">":
		return append(out, Instruction{Kind: Compare, Type: b.unit.freshTypeVar(), Pos: pos, Cmp: GT})
	case "<=":
		return append(out, Instruction{Kind: Compare, Type: b.unit.freshTypeVar(), Pos: pos, Cmp: LE})
	case ">=":
		return append(out, Instruction{Kind: Compare, Type: b.unit.freshTypeVar(), Pos: pos, Cmp: GE})
	default:
		b.sink.Syntax("unknown infix operator '"+n.Op+"'", pos, len(n.Op))
		return out
	}
}

func (b *Builder) lowerPrefixOp(n *ast.PrefixOp) []Instruction {
	out := b.lowerExpr(n.Operand)
	wrap := hasWrapSuffix(n.Op)
	base := trimWrapSuffix(n.Op)
	switch base {
	case "-", "+", "!":
		return append(out, Instruction{Kind: Negate, Type: b.unit.freshTypeVar(), Pos: n.Position, Wrap: wrap})
	default:
		b.sink.Syntax("unknown prefix operator '"+n.Op+"'", n.Position, len(n.Op))
		return out
	}
}

func (b *Builder) lowerIndexOp(n *ast.IndexOp) []Instruction {
	out := b.lowerExpr(n.Target)
	out = append(out, b.lowerExpr(n.Index)...)
	return append(out, Instruction{Kind: IndexLoad, Type: b.unit.freshTypeVar(), Pos: n.Position})
}

func (b *Builder) lowerCall(n *ast.Call) []Instruction {
	proc, ok := b.unit.FindProc(n.Name)
	if !ok {
		b.sink.Name("procedure '"+n.Name+"' not found", n.Position, len(n.Name))
	}
	var out []Instruction
	for _, arg := range n.Args {
		out = append(out, b.lowerExpr(arg)...)
	}
	retType := b.unit.freshTypeVar()
	if proc != nil {
		retType = proc.RetType
	}
	return append(out, Instruction{Kind: Call, Type: retType, Pos: n.Position, Name: n.Name})
}

func hasWrapSuffix(op string) bool {
	return len(op) > 0 && op[len(op)-1] == '~'
}

func trimWrapSuffix(op string) string {
	if hasWrapSuffix(op) {
		return op[:len(op)-1]
	}
	return op
}
