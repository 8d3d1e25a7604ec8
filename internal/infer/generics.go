package infer

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/diag"
)

// Instantiation is one entry in the generic-instantiation worklist
// spec §4.4.4 describes: a generic declaration's qualified name paired
// with the concrete type arguments it was called with. P6 drains this
// worklist to clone, substitute, and re-infer each specialization.
type Instantiation struct {
	Qualified string
	Args      []*Type
}

// GenericWorklist accumulates instantiation requests discovered during
// P4's single pass, deduplicated by (qualified name, argument shape)
// so P6 monomorphizes each concrete shape exactly once.
type GenericWorklist struct {
	seen    map[string]bool
	entries []Instantiation
}

func newGenericWorklist() *GenericWorklist {
	return &GenericWorklist{seen: make(map[string]bool)}
}

func instantiationKey(qualified string, args []*Type) string {
	key := qualified
	for _, a := range args {
		key += "|" + a.String()
	}
	return key
}

func (w *GenericWorklist) add(qualified string, args []*Type) {
	key := instantiationKey(qualified, args)
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	w.entries = append(w.entries, Instantiation{Qualified: qualified, Args: args})
}

// Entries returns every distinct instantiation requested, in discovery
// order, for P6 to drain.
func (w *GenericWorklist) Entries() []Instantiation {
	return append([]Instantiation(nil), w.entries...)
}

// checkGenericCall implements spec §4.4.4 for a call to a generic
// function or method: resolve concrete type arguments (explicit, or
// inferred by unifying argument types against the declaration's
// generic parameter positions), verify every generic satisfies its
// declared bounds, substitute the resolved types into the signature,
// check the call's arguments against the substitution, and schedule
// the instantiation for P6.
func (c *Context) checkGenericCall(fn *FuncSig, env *TypeEnv, at ast.Pos, name string, sig *FuncSig, typeArgs []ast.TypeExpr, args []ast.Expr, mode propMode) (*Type, error) {
	subst := make(map[string]*Type, len(sig.GenericOrder))

	if len(typeArgs) > 0 {
		if len(typeArgs) != len(sig.GenericOrder) {
			return nil, cannotInferTypeArgs(at, "%s expects %d type argument(s), got %d", name, len(sig.GenericOrder), len(typeArgs))
		}
		for i, te := range typeArgs {
			t, err := c.resolveTypeExpr(fn.MT, fn.Generics, te)
			if err != nil {
				return nil, err
			}
			subst[sig.GenericOrder[i]] = t
		}
	} else {
		if len(args) != len(sig.Params) {
			return nil, typeMismatch(at, "%s expects %d arguments, got %d", name, len(sig.Params), len(args))
		}
		for i, a := range args {
			argType, err := c.Infer(fn, env, a)
			if err != nil {
				return nil, err
			}
			unify(sig.Params[i], argType, subst)
		}
		for _, g := range sig.GenericOrder {
			if _, ok := subst[g]; !ok {
				return nil, cannotInferTypeArgs(at, "cannot infer type argument %q for call to %s", g, name)
			}
		}
	}

	for _, g := range sig.GenericOrder {
		concrete := subst[g]
		for _, boundName := range sig.Bounds[g] {
			if !c.satisfiesBound(fn, concrete, boundName) {
				return nil, diag.Wrap(diag.New(diag.BoundNotSatisfied, "infer",
					fmt.Sprintf("type argument %s for %q does not satisfy bound %q in call to %s", concrete, g, boundName, name)).
					WithSpan(spanAt(at)))
			}
		}
	}

	params := make([]*Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.Substitute(subst)
	}
	ret := sig.Return.Substitute(subst)

	for i, a := range args {
		if err := c.checkArg(fn, env, a, params[i]); err != nil {
			return nil, err
		}
	}

	concreteArgs := make([]*Type, len(sig.GenericOrder))
	for i, g := range sig.GenericOrder {
		concreteArgs[i] = subst[g]
	}
	c.Generics.add(sig.Qualified, concreteArgs)
	c.recordCallSite(fn.SID, sig.SID, at, mode)
	return ret, nil
}

// unify walks param (possibly containing generic leaves) alongside the
// argument's actual type, binding each generic name it encounters. A
// generic name bound more than once to different concrete types is
// simply left at its first binding; the resulting mismatch surfaces
// naturally as a TypeMismatch once substitution runs the real argument
// check below, so unify does not need its own consistency diagnostic.
func unify(param, arg *Type, subst map[string]*Type) {
	if param == nil || arg == nil {
		return
	}
	switch param.Kind {
	case KGeneric:
		if _, ok := subst[param.Name]; !ok {
			subst[param.Name] = arg
		}
	case KNullable:
		inner := arg
		if arg.Kind == KNullable {
			inner = arg.Elem
		}
		unify(param.Elem, inner, subst)
	case KArray, KSet, KStream:
		if arg.Elem != nil {
			unify(param.Elem, arg.Elem, subst)
		}
	case KMap:
		if arg.Key != nil && arg.Val != nil {
			unify(param.Key, arg.Key, subst)
			unify(param.Val, arg.Val, subst)
		}
	case KFunc:
		if len(arg.Params) == len(param.Params) {
			for i := range param.Params {
				unify(param.Params[i], arg.Params[i], subst)
			}
			unify(param.Return, arg.Return, subst)
		}
	case KClass, KTrait, KEnum, KError:
		for i := range param.Args {
			if i < len(arg.Args) {
				unify(param.Args[i], arg.Args[i], subst)
			}
		}
	}
}

// satisfiesBound reports whether concrete may stand in for a generic
// parameter bounded by boundName: a class satisfies a bound by
// declared `impl` or by structural conformance (spec §4.3's structural
// fallback, reused here since a bound is just a trait requirement).
func (c *Context) satisfiesBound(fn *FuncSig, concrete *Type, boundName string) bool {
	traitSym, ok := resolveName(fn.MT, c.Reg.Global, boundName)
	if !ok {
		return false
	}
	traitDecl, ok := traitSym.Decl.(*ast.TraitDecl)
	if !ok {
		return false
	}
	switch concrete.Kind {
	case KClass:
		classDecl, ok := c.classDecl(concrete.Name)
		if !ok {
			return false
		}
		for _, impl := range c.Conform.ByClass[classDecl.Name] {
			if c.qualifiedOf[impl.Trait] == traitSym.QualifiedName {
				return true
			}
		}
		return conform.SatisfiesStructurally(classDecl, traitDecl)
	case KTrait:
		return concrete.Name == traitSym.QualifiedName
	default:
		return false
	}
}

func cannotInferTypeArgs(at ast.Pos, format string, args ...interface{}) error {
	return diag.Wrap(diag.New(diag.CannotInferTypeArguments, "infer", fmt.Sprintf(format, args...)).
		WithSpan(spanAt(at)))
}
