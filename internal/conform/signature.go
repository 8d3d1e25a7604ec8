package conform

import "github.com/plutolang/pluto/internal/ast"

// typeExprEqual compares two source-level type expressions nominally
// (spec §4.3: "must match exactly — no covariance or contravariance").
// P3 runs before P4 resolves names to declarations, so this compares
// the written form; since TypeExpr.String() is already a position-free
// structural rendering, string equality is exact nominal equality.
func typeExprEqual(a, b ast.TypeExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// exprEqual compares two contract expressions structurally via their
// position-free String() rendering. This is a coarse proxy — it
// cannot distinguish two calls with different arguments, since
// MethodCall/FreeCall render their argument list as "..." — but
// contracts are short boolean expressions over self/result/old(e),
// and any difference it does miss only makes the narrowing check more
// permissive, never less safe in the other direction (a real
// narrowing that happens to render identically would need identical
// structure down to call arguments, which is not the common case).
func exprEqual(a, b ast.Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// paramsEqual compares two parameter lists positionally by type only
// (spec §4.3: names need not match, just types and count).
func paramsEqual(a, b []*ast.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !typeExprEqual(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

// SignatureMismatch describes one way a candidate method fails to
// match a trait method's required signature.
type SignatureMismatch string

const (
	MismatchParamCount SignatureMismatch = "parameter count differs"
	MismatchParamType  SignatureMismatch = "a parameter type differs"
	MismatchReturn     SignatureMismatch = "return type differs"
	MismatchSelfMut    SignatureMismatch = "mut self / self differs"
)

// CheckSignature compares an impl method against the trait method it
// must satisfy, per every exact-match rule in spec §4.3 except the
// error-set subset check (deferred to CheckErrorSets, since error
// sets are not known until P4).
func CheckSignature(traitMethod, implMethod *ast.MethodDecl) []SignatureMismatch {
	var problems []SignatureMismatch

	if traitMethod.SelfMut != implMethod.SelfMut {
		problems = append(problems, MismatchSelfMut)
	}
	if !paramsEqual(traitMethod.Params, implMethod.Params) {
		if len(traitMethod.Params) != len(implMethod.Params) {
			problems = append(problems, MismatchParamCount)
		} else {
			problems = append(problems, MismatchParamType)
		}
	}
	if !typeExprEqual(traitMethod.Return, implMethod.Return) {
		problems = append(problems, MismatchReturn)
	}

	return problems
}
