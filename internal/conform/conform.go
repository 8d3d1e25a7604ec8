// Package conform implements P3 (spec §4.3): for each class declared
// `impl T1, T2, ...`, verify every required trait method is present
// with a matching signature, and record the resulting implementation.
package conform

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

// Impl records that a class implements a trait: which concrete method
// body satisfies each trait method (the class's own, or the trait's
// default).
type Impl struct {
	Class   *ast.ClassDecl
	Trait   *ast.TraitDecl
	Methods map[string]*ast.MethodDecl // trait method name -> bound implementation
}

// Table is P3's output: every verified impl, plus a lookup from class
// name to the traits it implements (used by P4 for trait-typed
// assignment and by P6 for dispatch lowering).
type Table struct {
	Impls   []*Impl
	ByClass map[string][]*Impl
}

func newTable() *Table {
	return &Table{ByClass: make(map[string][]*Impl)}
}

func (t *Table) add(impl *Impl) {
	t.Impls = append(t.Impls, impl)
	t.ByClass[impl.Class.Name] = append(t.ByClass[impl.Class.Name], impl)
}

// Check runs P3 over every class registered by P2, resolving each
// `impl` name against the declaring module's own symbols first, then
// the program's public global table (spec §4.1 rule 5: only `pub`
// names cross module boundaries).
func Check(reg *register.Table) (*Table, []error) {
	out := newTable()
	var errs []error

	for _, mt := range reg.Modules {
		for _, sym := range mt.Ordered() {
			if sym.Kind != register.KindClass {
				continue
			}
			class, ok := sym.Decl.(*ast.ClassDecl)
			if !ok {
				continue
			}

			seen := make(map[string]bool, len(class.Implements))
			for _, traitName := range class.Implements {
				if seen[traitName] {
					errs = append(errs, diag.Wrap(diag.New(diag.DuplicateImpl, "conform",
						fmt.Sprintf("class %q implements %q more than once", class.Name, traitName)).
						WithSpan(ast.Span{Start: class.Pos, End: class.Pos}).
						WithData("class", class.Name).WithData("trait", traitName)))
					continue
				}
				seen[traitName] = true

				traitSym, ok := resolveName(mt, reg.Global, traitName)
				if !ok || traitSym.Kind != register.KindTrait {
					errs = append(errs, diag.Wrap(diag.New(diag.Undefined, "conform",
						fmt.Sprintf("class %q declares impl %q, which is not a known trait", class.Name, traitName)).
						WithSpan(ast.Span{Start: class.Pos, End: class.Pos})))
					continue
				}
				trait := traitSym.Decl.(*ast.TraitDecl)

				impl, implErrs := checkImpl(class, trait)
				errs = append(errs, implErrs...)
				if impl != nil {
					out.add(impl)
				}
			}
		}
	}

	return out, errs
}

// resolveName looks up a name declared in source (an `impl` target, a
// field type, etc.) first within the declaring module, then in the
// program's public global table — the same two-tier visibility spec
// §4.1 rule 5 establishes for declarations generally.
func resolveName(mt *register.ModuleTable, global map[string]*register.Symbol, name string) (*register.Symbol, bool) {
	if sym, ok := mt.Lookup(name); ok {
		return sym, true
	}
	if sym, ok := global[name]; ok {
		return sym, true
	}
	return nil, false
}

// checkImpl verifies one class/trait pair against every rule in spec
// §4.3 except the error-set subset check (see CheckErrorSets).
func checkImpl(class *ast.ClassDecl, trait *ast.TraitDecl) (*Impl, []error) {
	impl := &Impl{Class: class, Trait: trait, Methods: make(map[string]*ast.MethodDecl)}
	var errs []error

	for _, traitMethod := range trait.Methods {
		implMethod := findMethod(class.Methods, traitMethod.Name)

		if implMethod == nil {
			if traitMethod.Body != nil {
				// Trait supplies a default body; the impl may omit it.
				impl.Methods[traitMethod.Name] = traitMethod
				continue
			}
			errs = append(errs, diag.Wrap(diag.New(diag.MissingMethod, "conform",
				fmt.Sprintf("class %q does not implement %q.%s and trait %q has no default",
					class.Name, trait.Name, traitMethod.Name, trait.Name)).
				WithSpan(ast.Span{Start: class.Pos, End: class.Pos}).
				WithSecondarySpan(ast.Span{Start: traitMethod.Pos, End: traitMethod.Pos})))
			continue
		}

		if mismatches := CheckSignature(traitMethod, implMethod); len(mismatches) > 0 {
			for _, m := range mismatches {
				errs = append(errs, diag.Wrap(diag.New(diag.MissingMethod, "conform",
					fmt.Sprintf("class %q method %q does not satisfy trait %q: %s",
						class.Name, traitMethod.Name, trait.Name, m)).
					WithSpan(ast.Span{Start: implMethod.Pos, End: implMethod.Pos}).
					WithSecondarySpan(ast.Span{Start: traitMethod.Pos, End: traitMethod.Pos})))
			}
			continue
		}

		if narrows := contractNarrows(traitMethod.Contract, implMethod.Contract); narrows {
			errs = append(errs, diag.Wrap(diag.New(diag.ContractNarrowing, "conform",
				fmt.Sprintf("class %q method %q weakens the `requires` clause of trait %q",
					class.Name, traitMethod.Name, trait.Name)).
				WithSpan(ast.Span{Start: implMethod.Pos, End: implMethod.Pos}).
				WithSecondarySpan(ast.Span{Start: traitMethod.Pos, End: traitMethod.Pos})))
			continue
		}

		impl.Methods[traitMethod.Name] = implMethod
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return impl, nil
}

func findMethod(methods []*ast.MethodDecl, name string) *ast.MethodDecl {
	for _, m := range methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// contractNarrows reports whether implContract weakens traitContract's
// `requires` clause (spec §4.3, the Liskov substitution rule). Only
// the requires side is structurally decidable without a contract
// solver: a trait method with no requires grants callers an
// unconditional guarantee, so an impl may not add one; a trait method
// with a requires may be widened (impl requires nil) but, if present,
// must render identically — any other change cannot be proven a
// widening, so it is conservatively flagged.
func contractNarrows(traitContract, implContract *ast.Contract) bool {
	var traitRequires, implRequires ast.Expr
	if traitContract != nil {
		traitRequires = traitContract.Requires
	}
	if implContract != nil {
		implRequires = implContract.Requires
	}

	if traitRequires == nil {
		return implRequires != nil
	}
	if implRequires == nil {
		return false
	}
	return !exprEqual(traitRequires, implRequires)
}

// SatisfiesStructurally reports whether a class satisfies a trait by
// shape alone, without any `impl` declaration (spec §4.3 "Structural
// typing fallback"). Used by P4 for assignment compatibility; unlike
// Check, it does not report diagnostics — it is a yes/no predicate.
func SatisfiesStructurally(class *ast.ClassDecl, trait *ast.TraitDecl) bool {
	for _, traitMethod := range trait.Methods {
		implMethod := findMethod(class.Methods, traitMethod.Name)
		if implMethod == nil {
			if traitMethod.Body != nil {
				continue
			}
			return false
		}
		if len(CheckSignature(traitMethod, implMethod)) > 0 {
			return false
		}
	}
	return true
}

// ErrorSetProvider returns the inferred error set (by error-kind name)
// for the given method declaration, as P4 computes it. CheckErrorSets is invoked by the pipeline after P4's fixed point
// converges, since error sets do not exist before then.
type ErrorSetProvider func(method *ast.MethodDecl) []string

// CheckErrorSets verifies spec §4.3's remaining rule — "error set of
// the impl must be a subset of the trait method's declared error
// set" — over a conformance table already built by Check. It must run
// after P4, not during P3, because impl method error sets are
// inferred, not declared (spec §4.4.3).
func CheckErrorSets(table *Table, errorsOf ErrorSetProvider) []error {
	var errs []error
	for _, impl := range table.Impls {
		for _, traitMethod := range impl.Trait.Methods {
			implMethod, ok := impl.Methods[traitMethod.Name]
			if !ok || implMethod == traitMethod {
				continue // default body inherited verbatim; trivially a subset
			}
			declared := errorsOf(traitMethod)
			actual := errorsOf(implMethod)
			if !isSubset(actual, declared) {
				errs = append(errs, diag.Wrap(diag.New(diag.ContractNarrowing, "conform",
					fmt.Sprintf("class %q method %q raises errors outside trait %q's declared set",
						impl.Class.Name, traitMethod.Name, impl.Trait.Name)).
					WithSpan(ast.Span{Start: implMethod.Pos, End: implMethod.Pos}).
					WithData("declared", declared).WithData("actual", actual)))
			}
		}
	}
	return errs
}

func isSubset(sub, super []string) bool {
	allowed := make(map[string]bool, len(super))
	for _, e := range super {
		allowed[e] = true
	}
	for _, e := range sub {
		if !allowed[e] {
			return false
		}
	}
	return true
}
