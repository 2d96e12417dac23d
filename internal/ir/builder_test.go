package ir_test

import (
	"testing"

	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/ir"
	"github.com/elgin-lang/elginc/internal/lexer"
	"github.com/elgin-lang/elginc/internal/parser"
)

func build(t *testing.T, src string) (*ir.CompilationUnit, *errlog.Sink, bool) {
	t.Helper()
	sink := errlog.NewSink()
	toks := lexer.New(src, sink).Tokenize()
	prog, ok := parser.Parse(toks, sink)
	if !ok {
		return nil, sink, false
	}
	unit, ok := ir.NewBuilder(sink).Build(prog)
	return unit, sink, ok
}

func TestNewUnitPrePopulatesBuiltinPuts(t *testing.T) {
	unit := ir.NewUnit()
	proc, ok := unit.FindProc("puts")
	if !ok {
		t.Fatal("expected puts to be pre-declared")
	}
	if len(proc.ArgTypes) != 1 {
		t.Fatalf("expected puts to take exactly one argument, got %d", len(proc.ArgTypes))
	}
	if len(proc.Body) != 0 {
		t.Errorf("builtin puts should have no body, got %d instructions", len(proc.Body))
	}
}

func TestBuildLowersEveryTopLevelProc(t *testing.T) {
	unit, sink, ok := build(t, `
proc add(a: i32, b: i32): i32 { return a + b }
proc main(): i32 { return add(1, 2) }
`)
	if !ok {
		t.Fatalf("build failed: %v", sink.Records())
	}
	if _, ok := unit.FindProc("add"); !ok {
		t.Error("expected proc 'add' to be declared")
	}
	if _, ok := unit.FindProc("main"); !ok {
		t.Error("expected proc 'main' to be declared")
	}
}

// Invariant 3: every Call(name) either resolves to an emitted procedure or
// the sink carries a NameError referencing that name.
func TestCallToUndeclaredProcedureLogsNameError(t *testing.T) {
	_, sink, ok := build(t, `proc f(): i32 { return missing(1) }`)
	if ok {
		t.Fatal("expected build to report failure for a call to an undeclared procedure")
	}
	if !sink.HasKind(errlog.NameError, "missing") {
		t.Fatalf("expected a NameError referencing 'missing', got %v", sink.Records())
	}
}

func TestReferenceToUndeclaredVariableLogsNameError(t *testing.T) {
	_, sink, ok := build(t, `proc f(): i32 { return x }`)
	if ok {
		t.Fatal("expected build to report failure for an undeclared variable reference")
	}
	if !sink.HasKind(errlog.NameError, "x") {
		t.Fatalf("expected a NameError referencing 'x', got %v", sink.Records())
	}
}

func TestAllocateLoadStoreShareOneLocal(t *testing.T) {
	unit, sink, ok := build(t, `proc f(): i32 { var x = 1
	x = x + 1
	return x }`)
	if !ok {
		t.Fatalf("build failed: %v", sink.Records())
	}
	proc, _ := unit.FindProc("f")

	var sawAllocate, sawLoad, sawStore bool
	for _, ins := range proc.Body {
		switch ins.Kind {
		case ir.Allocate:
			if ins.Name == "x" {
				sawAllocate = true
			}
		case ir.Load:
			if ins.Name == "x" {
				sawLoad = true
			}
		case ir.Store:
			if ins.Name == "x" {
				sawStore = true
			}
		}
	}
	if !sawAllocate || !sawLoad || !sawStore {
		t.Fatalf("expected Allocate(x), Load(x), and Store(x) all present, body: %v", proc.Body)
	}
}

func TestIndexOpLowersToIndexLoad(t *testing.T) {
	unit, sink, ok := build(t, `proc f(a: [4]i32): i32 { return a[0] }`)
	if !ok {
		t.Fatalf("build failed: %v", sink.Records())
	}
	proc, _ := unit.FindProc("f")
	var sawIndexLoad bool
	for _, ins := range proc.Body {
		if ins.Kind == ir.IndexLoad {
			sawIndexLoad = true
		}
	}
	if !sawIndexLoad {
		t.Fatalf("expected an IndexLoad instruction, body: %v", proc.Body)
	}
}

func TestIndexedAssignLowersToIndexStore(t *testing.T) {
	unit, sink, ok := build(t, `proc f(a: [4]i32): i32 { a[0] = 1
	return a[0] }`)
	if !ok {
		t.Fatalf("build failed: %v", sink.Records())
	}
	proc, _ := unit.FindProc("f")
	var sawIndexStore bool
	for _, ins := range proc.Body {
		if ins.Kind == ir.IndexStore {
			sawIndexStore = true
		}
	}
	if !sawIndexStore {
		t.Fatalf("expected an IndexStore instruction, body: %v", proc.Body)
	}
}

func TestUseDeclarationIsInertInIR(t *testing.T) {
	unit, sink, ok := build(t, "use std.io\nproc f(): i32 { return 1 }")
	if !ok {
		t.Fatalf("build failed: %v", sink.Records())
	}
	if len(unit.Uses) != 1 || unit.Uses[0] != "std.io" {
		t.Fatalf("expected Uses = [\"std.io\"], got %v", unit.Uses)
	}
	proc, _ := unit.FindProc("f")
	for _, ins := range proc.Body {
		if ins.Kind == ir.Call && ins.Name == "std.io" {
			t.Fatal("use declaration should never lower to an instruction")
		}
	}
}

func TestWrapSuffixedOperatorSetsWrapFlag(t *testing.T) {
	unit, sink, ok := build(t, `proc f(a: i32, b: i32): i32 { return a +~ b }`)
	if !ok {
		t.Fatalf("build failed: %v", sink.Records())
	}
	proc, _ := unit.FindProc("f")
	var found bool
	for _, ins := range proc.Body {
		if ins.Kind == ir.Add {
			found = true
			if !ins.Wrap {
				t.Errorf("expected Add instruction from '+~' to carry Wrap=true")
			}
		}
	}
	if !found {
		t.Fatal("expected an Add instruction")
	}
}
