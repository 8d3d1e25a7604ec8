package infer

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

// GenericScope is the set of generic parameter names visible while
// resolving a declaration's own signature and body (spec §4.2:
// "Generic parameters shadow outer names only within the
// declaration's body").
type GenericScope map[string]bool

// resolveTypeExpr turns a parsed ast.TypeExpr into a resolved Type,
// looking up class/trait/enum/error names against the module's own
// table first, then the program's public global table — the same
// two-tier visibility conform.resolveName uses for impl targets.
func (c *Context) resolveTypeExpr(mt *register.ModuleTable, generics GenericScope, te ast.TypeExpr) (*Type, error) {
	switch n := te.(type) {
	case *ast.NamedType:
		if generics[n.Name] {
			return GenericParam(n.Name), nil
		}
		if prim := primitiveByName(n.Name); prim != nil {
			return prim, nil
		}
		sym, ok := resolveName(mt, c.Reg.Global, n.Name)
		if !ok {
			return nil, diag.Wrap(diag.New(diag.Undefined, "infer",
				fmt.Sprintf("%q does not name a type", n.Name)).
				WithSpan(ast.Span{Start: n.Pos, End: n.Pos}))
		}
		args := make([]*Type, len(n.Args))
		for i, a := range n.Args {
			rt, err := c.resolveTypeExpr(mt, generics, a)
			if err != nil {
				return nil, err
			}
			args[i] = rt
		}
		switch sym.Kind {
		case register.KindClass:
			return ClassRef(sym.QualifiedName, args...), nil
		case register.KindTrait:
			return TraitRef(sym.QualifiedName, args...), nil
		case register.KindEnum:
			return EnumRef(sym.QualifiedName, args...), nil
		case register.KindError:
			return ErrorRef(sym.QualifiedName), nil
		default:
			return nil, diag.Wrap(diag.New(diag.Undefined, "infer",
				fmt.Sprintf("%q does not name a type", n.Name)).
				WithSpan(ast.Span{Start: n.Pos, End: n.Pos}))
		}

	case *ast.NullableType:
		inner, err := c.resolveTypeExpr(mt, generics, n.Inner)
		if err != nil {
			return nil, err
		}
		if inner.Kind == KNullable || inner.Kind == KVoid {
			return nil, diag.Wrap(diag.New(diag.TypeMismatch, "infer",
				fmt.Sprintf("%s? is not a valid type", inner.String())).
				WithSpan(ast.Span{Start: n.Pos, End: n.Pos}))
		}
		return Nullable(inner), nil

	case *ast.ArrayType:
		elem, err := c.resolveTypeExpr(mt, generics, n.Elem)
		if err != nil {
			return nil, err
		}
		return Array(elem), nil

	case *ast.MapType:
		key, err := c.resolveTypeExpr(mt, generics, n.Key)
		if err != nil {
			return nil, err
		}
		val, err := c.resolveTypeExpr(mt, generics, n.Value)
		if err != nil {
			return nil, err
		}
		return MapOf(key, val), nil

	case *ast.SetType:
		elem, err := c.resolveTypeExpr(mt, generics, n.Elem)
		if err != nil {
			return nil, err
		}
		return SetOf(elem), nil

	case *ast.StreamType:
		elem, err := c.resolveTypeExpr(mt, generics, n.Elem)
		if err != nil {
			return nil, err
		}
		return Stream(elem), nil

	case *ast.FuncType:
		params := make([]*Type, len(n.Params))
		for i, p := range n.Params {
			rt, err := c.resolveTypeExpr(mt, generics, p)
			if err != nil {
				return nil, err
			}
			params[i] = rt
		}
		var ret *Type
		if n.Return != nil {
			rt, err := c.resolveTypeExpr(mt, generics, n.Return)
			if err != nil {
				return nil, err
			}
			ret = rt
		}
		return Func(params, ret), nil

	default:
		return nil, diag.Wrap(diag.New(diag.Undefined, "infer", fmt.Sprintf("unresolvable type expression %T", te)))
	}
}

// resolveName looks up a name first within the declaring module, then
// the program's public global table (spec §4.1 rule 5), mirroring
// conform.resolveName exactly since P3 and P4 share this visibility
// rule.
func resolveName(mt *register.ModuleTable, global map[string]*register.Symbol, name string) (*register.Symbol, bool) {
	if sym, ok := mt.Lookup(name); ok {
		return sym, true
	}
	if sym, ok := global[name]; ok {
		return sym, true
	}
	return nil, false
}

// genericScopeOf builds the GenericScope visible to a declaration's
// own signature and body from its generic parameter list.
func genericScopeOf(params []*ast.GenericParam) GenericScope {
	scope := make(GenericScope, len(params))
	for _, p := range params {
		scope[p.Name] = true
	}
	return scope
}
