package parser_test

import (
	"testing"

	"github.com/elgin-lang/elginc/internal/ast"
	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/lexer"
	"github.com/elgin-lang/elginc/internal/parser"
)

func parse(t *testing.T, src string) (*ast.Program, *errlog.Sink, bool) {
	t.Helper()
	sink := errlog.NewSink()
	toks := lexer.New(src, sink).Tokenize()
	prog, ok := parser.Parse(toks, sink)
	return prog, sink, ok
}

func TestParsePrecedenceMultiplyBindsTighterThanAdd(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(): i32 { return 1 + 2 * 3 }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	ret := proc.Body.Statements[0].(*ast.Return)
	add, ok := ret.Value.(*ast.InfixOp)
	if !ok || add.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", ret.Value)
	}
	mul, ok := add.Right.(*ast.InfixOp)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected '*' nested under '+', got %#v", add.Right)
	}
}

func TestParsePrefixBindsTighterThanInfix(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(): i32 { return -a + b }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	ret := proc.Body.Statements[0].(*ast.Return)
	add, ok := ret.Value.(*ast.InfixOp)
	if !ok || add.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", ret.Value)
	}
	if _, ok := add.Left.(*ast.PrefixOp); !ok {
		t.Fatalf("expected '-a' to parse as a PrefixOp, got %#v", add.Left)
	}
}

func TestParseIndexBindsTighterThanInfix(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(): i32 { return a[0] + 1 }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	ret := proc.Body.Statements[0].(*ast.Return)
	add := ret.Value.(*ast.InfixOp)
	if _, ok := add.Left.(*ast.IndexOp); !ok {
		t.Fatalf("expected 'a[0]' to parse as IndexOp, got %#v", add.Left)
	}
}

func TestParseIfElifElseChain(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(a: i32): i32 {
		if a == 0 { return 0 } elif a == 1 { return 1 } else { return 2 }
	}`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	top := proc.Body.Statements[0].(*ast.If)
	elif, ok := top.ElseBody.(*ast.If)
	if !ok {
		t.Fatalf("expected elif to parse as a nested If, got %#v", top.ElseBody)
	}
	if _, ok := elif.ElseBody.(*ast.Block); !ok {
		t.Fatalf("expected final else to parse as a Block, got %#v", elif.ElseBody)
	}
}

func TestParseLoopDesugarsToWhileTrue(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(): i32 { loop { return 1 } }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	w, ok := proc.Body.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("expected loop to desugar to a While, got %#v", proc.Body.Statements[0])
	}
	lit, ok := w.Condition.(*ast.Literal)
	if !ok || lit.Kind != "bool" || lit.Value != "true" {
		t.Fatalf("expected loop's condition to be the literal true, got %#v", w.Condition)
	}
}

func TestParseVarWithElidedTypeAndAssign(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(): i32 { var x = 1
	x = x + 1
	return x }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	v := proc.Body.Statements[0].(*ast.Var)
	if v.Type != nil {
		t.Errorf("expected elided type to parse as nil, got %v", v.Type)
	}
	if _, ok := proc.Body.Statements[1].(*ast.Assign); !ok {
		t.Fatalf("expected second statement to be an Assign, got %#v", proc.Body.Statements[1])
	}
}

func TestParseIndexedAssign(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(a: [4]i32): i32 { a[0] = 1
	return a[0] }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	stmt, ok := proc.Body.Statements[0].(*ast.IndexedAssign)
	if !ok || stmt.Name != "a" {
		t.Fatalf("expected an IndexedAssign on 'a', got %#v", proc.Body.Statements[0])
	}
}

func TestParsePointerAndArrayTypeSyntax(t *testing.T) {
	prog, sink, ok := parse(t, `proc f(p: *i8, a: [4]i32): i32 { return 0 }`)
	if !ok {
		t.Fatalf("parse failed: %v", sink.Records())
	}
	proc := prog.Declarations[0].(*ast.Proc)
	if proc.ArgTypes[0].Ptr == nil || proc.ArgTypes[0].Ptr.Name != "i8" {
		t.Fatalf("expected first param type '*i8', got %v", proc.ArgTypes[0])
	}
	if proc.ArgTypes[1].Array == nil || proc.ArgTypes[1].ArrayLen != 4 || proc.ArgTypes[1].Array.Name != "i32" {
		t.Fatalf("expected second param type '[4]i32', got %v", proc.ArgTypes[1])
	}
}

func TestParseInvalidTopLevelLogsSyntaxErrorButContinues(t *testing.T) {
	prog, sink, ok := parse(t, "return 1\nconst K: i32 = 1")
	if ok {
		t.Fatalf("expected parse to report failure for invalid-at-top-level input")
	}
	if !sink.HasKind(errlog.SyntaxError, "invalid at top level") {
		t.Fatalf("expected a SyntaxError, got %v", sink.Records())
	}
	if len(prog.Declarations) != 1 {
		t.Fatalf("expected the sibling Const declaration to still parse, got %d declarations", len(prog.Declarations))
	}
	if _, ok := prog.Declarations[0].(*ast.Const); !ok {
		t.Fatalf("expected the surviving declaration to be a Const, got %#v", prog.Declarations[0])
	}
}

// Invariant 5: parsing is idempotent across structurally equivalent surface
// syntax, such as `x + y` vs `(x) + (y)`.
func TestParseParenthesesDoNotAffectStructure(t *testing.T) {
	a, sinkA, okA := parse(t, `proc f(): i32 { return x + y }`)
	b, sinkB, okB := parse(t, `proc f(): i32 { return (x) + (y) }`)
	if !okA || !okB {
		t.Fatalf("parse failed: %v / %v", sinkA.Records(), sinkB.Records())
	}
	protoA := a.Declarations[0].(*ast.Proc).Body.Statements[0].(*ast.Return).Value.(*ast.InfixOp)
	protoB := b.Declarations[0].(*ast.Proc).Body.Statements[0].(*ast.Return).Value.(*ast.InfixOp)
	if protoA.String() != protoB.String() {
		t.Errorf("structurally equivalent sources produced different ASTs: %q vs %q", protoA, protoB)
	}
}
