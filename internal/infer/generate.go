package infer

import (
	"github.com/elgin-lang/elginc/internal/ir"
	"github.com/elgin-lang/elginc/internal/types"
)

// generator simulates one procedure's stack effects, per spec.md §4.3's
// table, to produce a constraint list. It does not model control flow:
// Label/Jump/Branch targets are not followed, and the walk proceeds in
// plain program order exactly as the instruction slice is laid out —
// this is a deliberately unsound approximation, consistent with the
// spec's framing of the solver as heuristic rather than a proper
// fixed-point type checker (spec.md §9).
type generator struct {
	unit  *ir.CompilationUnit
	proc  *ir.IRProc
	stack []types.Type
	scope map[string]types.Type
	cs    []Constraint
}

func newGenerator(unit *ir.CompilationUnit, proc *ir.IRProc) *generator {
	scope := make(map[string]types.Type, len(proc.ArgNames))
	for i, name := range proc.ArgNames {
		scope[name] = proc.ArgTypes[i]
	}
	return &generator{unit: unit, proc: proc, scope: scope}
}

func (g *generator) push(t types.Type) { g.stack = append(g.stack, t) }

func (g *generator) pop() types.Type {
	if len(g.stack) == 0 {
		// A malformed or partially-lowered program can under-supply the
		// stack (e.g. a procedure body the builder could not fully
		// lower after a prior error); treat the missing operand as an
		// unconstrained fresh variable rather than panicking.
		return g.unit.FreshTypeVar()
	}
	t := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return t
}

func (g *generator) add(t1, t2 types.Type) {
	addConstraint(&g.cs, t1, t2, g.unit.FreshTypeVar)
}

// generate walks proc.Body and returns the emitted constraint list.
func generate(unit *ir.CompilationUnit, proc *ir.IRProc) []Constraint {
	g := newGenerator(unit, proc)
	for i := range proc.Body {
		g.step(&proc.Body[i])
	}
	return g.cs
}

func (g *generator) step(ins *ir.Instruction) {
	switch ins.Kind {
	case ir.Push:
		g.push(ins.Type)

	case ir.Load:
		g.push(g.scopeType(ins.Name))

	case ir.Store:
		t := g.pop()
		g.add(t, ins.Type)
		g.add(ins.Type, g.scopeType(ins.Name))

	case ir.Allocate:
		t := g.pop()
		g.scope[ins.Name] = ins.Type
		g.add(ins.Type, t)

	case ir.IndexLoad:
		_ = g.pop() // index
		target := g.pop()
		if target.Kind == types.Ptr || target.Kind == types.Array {
			g.add(ins.Type, *target.Elem)
		}
		g.push(ins.Type)

	case ir.IndexStore:
		value := g.pop()
		_ = g.pop() // index
		target := g.pop()
		if target.Kind == types.Ptr || target.Kind == types.Array {
			g.add(value, *target.Elem)
		}

	case ir.Label, ir.Jump:
		// no stack effect

	case ir.Branch:
		t := g.pop()
		g.add(t, types.BoolT)

	case ir.Call:
		proc, ok := g.unit.FindProc(ins.Name)
		var argc int
		if ok {
			argc = len(proc.ArgTypes)
		}
		args := make([]types.Type, argc)
		for i := argc - 1; i >= 0; i-- {
			args[i] = g.pop()
		}
		if ok {
			for i, a := range args {
				g.add(a, proc.ArgTypes[i])
			}
		}
		g.push(ins.Type)

	case ir.Return:
		t := g.pop()
		g.add(t, g.proc.RetType)

	case ir.Negate:
		t := g.pop()
		g.add(t, ins.Type)
		g.push(ins.Type)

	case ir.Add, ir.Subtract, ir.Multiply, ir.IntDivide, ir.Divide:
		b := g.pop()
		a := g.pop()
		g.add(a, b)
		g.add(a, ins.Type)
		g.add(b, ins.Type)
		g.push(ins.Type)

	case ir.Compare:
		b := g.pop()
		a := g.pop()
		g.add(a, b)
		g.add(ins.Type, types.BoolT)
		g.push(types.BoolT)
	}
}

func (g *generator) scopeType(name string) types.Type {
	if t, ok := g.scope[name]; ok {
		return t
	}
	return g.unit.FreshTypeVar()
}
