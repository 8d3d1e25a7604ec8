package infer

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

// checkContract type-checks a function or method's requires/ensures
// clauses (spec §4.4.5): requires is evaluated in the parameter/self
// environment; ensures additionally binds `result` to the return
// type. `old(e)` is not a distinct syntax form — the parser hands it
// down as an ordinary call to the free function named "old", handled
// like any other builtin in inferFreeCall, so no special walking is
// needed here to support it.
func (c *Context) checkContract(fn *FuncSig, env *TypeEnv) error {
	if fn.Contract == nil {
		return nil
	}
	if fn.Contract.Requires != nil {
		t, err := c.Infer(fn, env, fn.Contract.Requires)
		if err != nil {
			return err
		}
		if !t.Equals(Bool) {
			return typeMismatch(fn.Contract.Requires.Position(), "requires clause must be bool, got %s", t)
		}
	}
	if fn.Contract.Ensures != nil {
		ensuresEnv := env.Child()
		if fn.Return.Kind != KVoid {
			ensuresEnv.DefineLocal("result", fn.Return)
		}
		t, err := c.Infer(fn, ensuresEnv, fn.Contract.Ensures)
		if err != nil {
			return err
		}
		if !t.Equals(Bool) {
			return typeMismatch(fn.Contract.Ensures.Position(), "ensures clause must be bool, got %s", t)
		}
	}
	return nil
}

// checkClassInvariants type-checks a class's `invariant` expressions
// in an environment with only `self` bound (spec §4.4.5: "class
// invariant checked after every mut self method"). Run once per class
// declaration rather than once per method call site, since the
// invariant's shape does not depend on which method produced it; the
// "after every mut self method" timing is an enforcement concern for
// the emitted program, not something the type checker schedules.
func (c *Context) checkClassInvariants(mt *register.ModuleTable, decl *ast.ClassDecl, qualifiedName string) []error {
	if len(decl.Invariants) == 0 {
		return nil
	}
	selfType := ClassRef(qualifiedName)
	pseudo := &FuncSig{
		SID:      sid.New(decl.Pos.File, decl.Pos.Offset, decl.Pos.Offset, "invariant", qualifiedName),
		Name:     decl.Name + ".invariant",
		MT:       mt,
		Generics: genericScopeOf(decl.Generics),
		Return:   Void,
		Decl:     decl,
	}
	env := NewTypeEnv()
	env.defineSelf(selfType, true)

	var errs []error
	for _, inv := range decl.Invariants {
		t, err := c.Infer(pseudo, env, inv)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !t.Equals(Bool) {
			errs = append(errs, typeMismatch(inv.Position(), "class %s invariant must be bool, got %s", decl.Name, t))
		}
	}
	return errs
}
