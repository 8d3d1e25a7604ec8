package infer

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/register"
)

// Result is P4's output over an entire program: every function
// signature with its body type-checked and its final error set, the
// generic-instantiation worklist P6 drains, and every diagnostic
// produced along the way.
type Result struct {
	Ctx      *Context
	Funcs    []*FuncSig
	Generics []Instantiation
	Errors   []error
}

// Run executes P4 in full (spec §4.4): collect every signature (§4.4
// "Shape"), type-check every body (§4.4.1 expressions, §4.4.2
// statements) and every requires/ensures clause and class invariant
// (§4.4.5), then close the error-set fixed point (§4.4.3) and surface
// its post-conditions together with P3's deferred error-set subset
// rule. The body walk populates both the generic-instantiation
// worklist (§4.4.4) and the raw raise/! call sites the error-set fixed
// point needs, so it runs before that fixed point closes — the two
// auxiliary fixpoints this phase describes share the one pass over
// the program spec §9 calls for.
func Run(reg *register.Table, conformTable *conform.Table) *Result {
	ctx := NewContext(reg, conformTable)
	var errs []error
	errs = append(errs, ctx.CollectSignatures()...)

	for _, f := range ctx.OrderedFuncs() {
		errs = append(errs, ctx.CheckFunc(f)...)
	}

	for _, mt := range reg.Modules {
		for _, sym := range mt.Ordered() {
			if sym.Kind != register.KindClass {
				continue
			}
			decl, ok := sym.Decl.(*ast.ClassDecl)
			if !ok {
				continue
			}
			errs = append(errs, ctx.checkClassInvariants(mt, decl, sym.QualifiedName)...)
		}
	}

	errs = append(errs, ctx.RunErrorSetFixedPoint()...)

	return &Result{
		Ctx:      ctx,
		Funcs:    ctx.OrderedFuncs(),
		Generics: ctx.Generics.Entries(),
		Errors:   errs,
	}
}

// CheckFunc type-checks one signature's requires/ensures clauses and
// body in a freshly built parameter/self environment. Exported so P6
// can re-run the same pass over a monomorphized FuncSig (spec §4.6
// step 3: "Re-run P4's expression typing on the body with the
// substitutions in place").
func (c *Context) CheckFunc(f *FuncSig) []error {
	var errs []error
	env := NewTypeEnv()
	for i, name := range f.ParamNames {
		env.DefineLocal(name, f.Params[i])
	}
	if f.IsMethod {
		env.defineSelf(f.Receiver, f.SelfMut)
	}
	if err := c.checkContract(f, env); err != nil {
		errs = append(errs, err)
	}
	if f.Body != nil {
		if _, err := c.inferBlockIn(f, env, f.Body); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// FuncSigByQualified looks up an already-collected signature (free
// function or method) by its fully-qualified name, the same key
// GenericWorklist entries carry, so P6 can find the generic
// declaration behind each instantiation request.
func (c *Context) FuncSigByQualified(name string) (*FuncSig, bool) {
	f, ok := c.byQualName[name]
	return f, ok
}
