package ast_test

import (
	"testing"

	"github.com/elgin-lang/elginc/internal/ast"
)

func TestTypeExprStringRendersPointerAndArray(t *testing.T) {
	ptr := &ast.TypeExpr{Ptr: &ast.TypeExpr{Name: "i8"}}
	if got, want := ptr.String(), "*i8"; got != want {
		t.Errorf("ptr.String() = %q, want %q", got, want)
	}

	arr := &ast.TypeExpr{ArrayLen: 4, Array: &ast.TypeExpr{Name: "i32"}}
	if got, want := arr.String(), "[4]i32"; got != want {
		t.Errorf("arr.String() = %q, want %q", got, want)
	}
}

func TestTypeExprStringOnNilIsElided(t *testing.T) {
	var e *ast.TypeExpr
	if got, want := e.String(), "<elided>"; got != want {
		t.Errorf("nil TypeExpr.String() = %q, want %q", got, want)
	}
}

func TestInfixOpString(t *testing.T) {
	n := &ast.InfixOp{
		Op:   "+",
		Left: &ast.VariableRef{Name: "a"},
		Right: &ast.VariableRef{
			Name: "b",
		},
	}
	if got, want := n.String(), "(a + b)"; got != want {
		t.Errorf("InfixOp.String() = %q, want %q", got, want)
	}
}

func TestCallStringJoinsArgs(t *testing.T) {
	n := &ast.Call{
		Name: "f",
		Args: []ast.Expression{
			&ast.Literal{Kind: "int", Value: "1"},
			&ast.Literal{Kind: "int", Value: "2"},
		},
	}
	if got, want := n.String(), "f(1, 2)"; got != want {
		t.Errorf("Call.String() = %q, want %q", got, want)
	}
}

func TestIndexedAssignString(t *testing.T) {
	n := &ast.IndexedAssign{
		Name:  "a",
		Index: &ast.Literal{Kind: "int", Value: "0"},
		Value: &ast.Literal{Kind: "int", Value: "1"},
	}
	if got, want := n.String(), "a[0] = 1"; got != want {
		t.Errorf("IndexedAssign.String() = %q, want %q", got, want)
	}
}

func TestUseStringJoinsDottedPath(t *testing.T) {
	n := &ast.Use{Path: []string{"std", "io"}}
	if got, want := n.String(), "use std.io"; got != want {
		t.Errorf("Use.String() = %q, want %q", got, want)
	}
}
