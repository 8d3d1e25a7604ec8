package lower

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/infer"
)

// CheckControlFlow implements spec §4.7's return-path analysis: every
// non-void function must have a definite return on every path
// (`return`, `raise`, an infinite loop, or an exhaustive match whose
// arms all return); falling off the end is MissingReturn. Code after
// an unconditional terminator is UnreachableCode.
func CheckControlFlow(ctx *infer.Context) []error {
	var errs []error
	for _, f := range ctx.OrderedFuncs() {
		if f.Body == nil {
			continue // trait method with no default body
		}
		terminates, blockErrs := analyzeBlock(f.Body)
		errs = append(errs, blockErrs...)
		if f.Return.Kind != infer.KVoid && !terminates {
			errs = append(errs, diag.Wrap(diag.New(diag.MissingReturn, "lower",
				fmt.Sprintf("%s falls off the end without returning a value", f.Name)).
				WithSpan(spanOf(f.Body.Position()))))
		}
	}
	return errs
}

func spanOf(p ast.Pos) ast.Span { return ast.Span{Start: p, End: p} }

// analyzeBlock reports whether every path through b ends in a
// terminator, and the UnreachableCode diagnostics for any statement
// following one.
func analyzeBlock(b *ast.BlockExpr) (bool, []error) {
	for i, stmt := range b.Stmts {
		if !stmtTerminates(stmt) {
			continue
		}
		if i != len(b.Stmts)-1 {
			next := b.Stmts[i+1]
			return true, []error{diag.Wrap(diag.New(diag.UnreachableCode, "lower",
				"unreachable code after an unconditional terminator").
				WithSpan(spanOf(next.Position())))}
		}
		return true, nil
	}
	return false, nil
}

// stmtTerminates reports whether stmt unconditionally ends control
// flow (a path that never falls through to whatever follows it).
func stmtTerminates(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true

	case *ast.RaiseStmt:
		return true

	case *ast.IfStmt:
		if s.Else == nil {
			return false
		}
		thenTerm, _ := analyzeBlock(s.Then)
		if !thenTerm {
			return false
		}
		switch e := s.Else.(type) {
		case *ast.IfStmt:
			return stmtTerminates(e)
		case *ast.ExprStmt:
			if blk, ok := e.X.(*ast.BlockExpr); ok {
				elseTerm, _ := analyzeBlock(blk)
				return elseTerm
			}
			return false
		default:
			return false
		}

	case *ast.WhileStmt:
		if !isLiteralTrue(s.Cond) {
			return false
		}
		return !containsOwnBreak(s.Body)

	case *ast.MatchStmt:
		if len(s.Arms) == 0 {
			return false
		}
		for _, arm := range s.Arms {
			blk, ok := arm.Body.(*ast.BlockExpr)
			if !ok {
				return false
			}
			t, _ := analyzeBlock(blk)
			if !t {
				return false
			}
		}
		return true

	default:
		return false
	}
}

func isLiteralTrue(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.BoolLit {
		return false
	}
	b, ok := lit.Value.(bool)
	return ok && b
}

// containsOwnBreak looks for a break belonging to this loop: it
// descends into if/match bodies (still the same loop iteration) but
// not into a nested while/for (a break there belongs to that inner
// loop instead).
func containsOwnBreak(b *ast.BlockExpr) bool {
	for _, stmt := range b.Stmts {
		if stmtHasOwnBreak(stmt) {
			return true
		}
	}
	return false
}

func stmtHasOwnBreak(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.BreakStmt:
		return true
	case *ast.IfStmt:
		if containsOwnBreak(s.Then) {
			return true
		}
		if s.Else != nil {
			return stmtHasOwnBreak(s.Else)
		}
		return false
	case *ast.ExprStmt:
		if blk, ok := s.X.(*ast.BlockExpr); ok {
			return containsOwnBreak(blk)
		}
		return false
	case *ast.MatchStmt:
		for _, arm := range s.Arms {
			if blk, ok := arm.Body.(*ast.BlockExpr); ok && containsOwnBreak(blk) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
