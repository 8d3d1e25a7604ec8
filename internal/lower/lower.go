package lower

import "github.com/plutolang/pluto/internal/infer"

// Result is P7's output over the already-inferred program: every
// diagnostic from exhaustiveness and return-path analysis.
//
// Break/continue validity (spec §4.7's third bullet) is not re-checked
// here: it needs no information beyond ordinary lexical scoping, which
// P4 already has in hand while it walks each body once
// (TypeEnv.loopBoundary / closureBoundary, spec §4.4.2), so it is
// enforced there as BreakOutsideLoop rather than re-walked a second
// time in this phase.
type Result struct {
	Errors []error
}

// Run performs the post-inference half of P7: match exhaustiveness and
// return-path/unreachable-code analysis over every checked function.
// Closure-capture computation is the pre-inference half and runs
// separately, via PrecomputeCaptures, before P4 ever starts (spec §9).
func Run(ctx *infer.Context) *Result {
	var errs []error
	errs = append(errs, CheckExhaustiveness(ctx)...)
	errs = append(errs, CheckControlFlow(ctx)...)
	return &Result{Errors: errs}
}
