package infer

import (
	"github.com/elgin-lang/elginc/internal/ir"
	"github.com/elgin-lang/elginc/internal/types"
)

// sweepCount is the fixed number of solving passes spec.md §4.3 mandates
// ("three sweeps suffice for the language's absence of recursive type
// structure"). spec.md §9 notes a proper fixed point (iterate until a
// sweep makes no change) would be preferable, but the main text is
// normative on three sweeps, so that is what is implemented; see
// DESIGN.md for this Open Question's resolution.
const sweepCount = 3

// solve rewrites every instruction's Type in body, and the constraint
// list itself, by repeated left-to-right substitution: each constraint
// (t1, t2) is a rule "replace t1 with t2 everywhere", applied to the
// instruction list and to every constraint after it in the list, for
// sweepCount full passes over the whole list.
func solve(cs []Constraint, body []ir.Instruction) {
	for sweep := 0; sweep < sweepCount; sweep++ {
		for i := range cs {
			from, to := cs[i].From, cs[i].To
			rewriteBody(body, from, to)
			for j := i + 1; j < len(cs); j++ {
				if types.Equal(cs[j].From, from) {
					cs[j].From = to
				}
				if types.Equal(cs[j].To, from) {
					cs[j].To = to
				}
			}
		}
	}
}

func rewriteBody(body []ir.Instruction, from, to types.Type) {
	for i := range body {
		if types.Equal(body[i].Type, from) {
			body[i].Type = to
		}
	}
}

// concretize is the final pass described in spec.md §4.3: any
// IntLiteral/FloatLiteral type that survived solving collapses to the
// language's default concrete width.
func concretize(body []ir.Instruction) {
	for i := range body {
		switch body[i].Type.Kind {
		case types.IntLiteral:
			body[i].Type = types.Prim(types.I64)
		case types.FloatLiteral:
			body[i].Type = types.Prim(types.F64)
		}
	}
}
