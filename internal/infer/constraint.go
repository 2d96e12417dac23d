// Package infer implements the Hindley-Milner-flavoured constraint
// generator and iterated-substitution solver (spec.md §4.3), grounded on
// original_source/src/ir.rs's per-procedure type-checking pass: a linear
// symbolic walk of each procedure's flat instruction list against an
// explicit type stack, emitting equality constraints, followed by a
// fixed number of rewrite sweeps over both the instruction list and the
// constraint list itself.
package infer

import "github.com/elgin-lang/elginc/internal/types"

// Constraint is one asserted-equal type pair, a rewrite rule "replace
// From with To everywhere" once the left-hand-first discipline below has
// been applied.
type Constraint struct {
	From types.Type
	To   types.Type
}

// addConstraint implements spec.md §4.3's add_constraint normalisation
// exactly:
//
//   - discard if t1 == t2;
//   - discard if either side is StrLiteral or Undefined (both act as
//     universal, per spec.md's closing Open Question on StrLiteral/*i8);
//   - substitute a fresh Variable for any Unknown operand (Unknown must
//     never escape the IR builder, so this is a defensive no-op in
//     practice, kept because the main text specifies it);
//   - if t2 is a Variable, swap so the Variable sits on the left;
//   - else if t2 is a literal-tag type, swap so the literal-tag sits on
//     the left.
func addConstraint(list *[]Constraint, t1, t2 types.Type, fresh func() types.Type) {
	if types.Equal(t1, t2) {
		return
	}
	if t1.Kind == types.StrLiteral || t2.Kind == types.StrLiteral {
		return
	}
	if t1.Kind == types.Undefined || t2.Kind == types.Undefined {
		return
	}
	if t1.Kind == types.Unknown {
		t1 = fresh()
	}
	if t2.Kind == types.Unknown {
		t2 = fresh()
	}
	switch {
	case t2.Kind == types.Variable:
		t1, t2 = t2, t1
	case t2.IsLiteralTag():
		t1, t2 = t2, t1
	}
	*list = append(*list, Constraint{From: t1, To: t2})
}
