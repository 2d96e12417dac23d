package ir

import (
	"github.com/elgin-lang/elginc/internal/ast"
	"github.com/elgin-lang/elginc/internal/types"
)

// IRProc is a lowered procedure: a flat, ordered instruction sequence
// with no embedded control-flow graph.
type IRProc struct {
	Name     string
	ArgNames []string
	ArgTypes []types.Type
	RetType  types.Type
	Body     []Instruction
}

// Scope is a name -> type map active within one lexical region. Per
// spec.md §3/§4.4, this language only ever pushes a single scope per
// procedure (holding its parameters and every local declared anywhere in
// its body) — if/while bodies do not introduce their own nested scope,
// matching original_source/src/ir.rs's single-scope-per-proc behaviour.
type Scope map[string]types.Type

// CompilationUnit owns every structure produced by the pipeline for one
// invocation: the builder, AND (after Analyze) the inferencer, mutate it
// in place. It is pre-populated with the built-in `puts(s: *i8): i32`.
type CompilationUnit struct {
	Procs  []*IRProc
	Consts map[string]ast.Expression
	// Uses records the dotted paths named by top-level `use` declarations.
	// Module/package resolution is a Non-goal, so this is inert metadata
	// kept for tooling rather than acted on by the builder.
	Uses []string

	scopes      []Scope
	nextTypeVar uint64
	nextLabel   uint64
}

// NewUnit constructs an empty CompilationUnit pre-populated with the
// built-in puts procedure, per spec.md §3.
func NewUnit() *CompilationUnit {
	u := &CompilationUnit{Consts: map[string]ast.Expression{}}
	u.Procs = append(u.Procs, &IRProc{
		Name:     "puts",
		ArgNames: []string{"s"},
		ArgTypes: []types.Type{types.NewPtr(types.Prim(types.I8))},
		RetType:  types.Prim(types.I32),
	})
	return u
}

func (u *CompilationUnit) freshTypeVar() types.Type {
	v := types.NewVariable(u.nextTypeVar)
	u.nextTypeVar++
	return v
}

// FreshTypeVar draws a new, globally-unique type variable from the
// compilation unit's counter. Exported so internal/infer can mint
// Variables when substituting for an Unknown inside add_constraint's
// normalisation (spec.md §4.3), without its own counter drifting out of
// sync with the builder's.
func (u *CompilationUnit) FreshTypeVar() types.Type { return u.freshTypeVar() }

func (u *CompilationUnit) freshLabel() uint64 {
	id := u.nextLabel
	u.nextLabel++
	return id
}

// FindProc looks up a procedure by name across the whole unit. Procedure
// lookup is flat and global, never scoped (spec.md §4.4).
func (u *CompilationUnit) FindProc(name string) (*IRProc, bool) {
	for _, p := range u.Procs {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

func (u *CompilationUnit) pushScope(s Scope) { u.scopes = append(u.scopes, s) }
func (u *CompilationUnit) popScope()         { u.scopes = u.scopes[:len(u.scopes)-1] }

// lookupVar walks the scope stack innermost-outward; first hit wins.
func (u *CompilationUnit) lookupVar(name string) (types.Type, bool) {
	for i := len(u.scopes) - 1; i >= 0; i-- {
		if t, ok := u.scopes[i][name]; ok {
			return t, true
		}
	}
	return types.Type{}, false
}

// declareVar inserts (name, t) into the innermost scope.
func (u *CompilationUnit) declareVar(name string, t types.Type) {
	u.scopes[len(u.scopes)-1][name] = t
}
