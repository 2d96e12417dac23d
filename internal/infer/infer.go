package infer

import (
	"github.com/elgin-lang/elginc/internal/errlog"
	"github.com/elgin-lang/elginc/internal/ir"
)

// Analyze runs constraint generation and solving across every procedure
// in unit, mutating each IRProc's instruction types in place, per
// spec.md §6's `analyze() -> Option<()>`.
//
// SPEC_FULL.md §5 resolves an ambiguity in S3 (a NameError logged during
// build_ir should still make analyze() report absent, even though the
// error was detected before analysis itself ran): Analyze reports false
// if sink already holds any record logged before inference begins. This
// does not change what analysis does to the IR — procedures
// are still inferred so a caller that ignores the bool (e.g. to inspect
// partial results) sees a fully rewritten unit — it only changes the
// reported success/absence, mirroring the spec's own observation that
// the core never aborts a phase outright, only propagates absence.
func Analyze(unit *ir.CompilationUnit, sink *errlog.Sink) bool {
	s := errlog.Resolve(sink)
	hadPriorErrors := s.HasErrors()

	for _, proc := range unit.Procs {
		if len(proc.Body) == 0 {
			continue // builtin or declaration-only stub: nothing to infer
		}
		cs := generate(unit, proc)
		solve(cs, proc.Body)
		concretize(proc.Body)
	}

	return !hadPriorErrors
}
