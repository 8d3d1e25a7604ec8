package infer

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

// CollectSignatures walks every declaration P2 recorded and builds a
// FuncSig for every function, method, app entry, and stage method —
// every unit P4 type-checks a body for. Trait default bodies are
// collected once per trait, typed with `self` bound to the trait's
// own reference (method calls on self only need to resolve against
// other trait methods to type-check generically).
func (c *Context) CollectSignatures() []error {
	var errs []error
	for _, mt := range c.Reg.Modules {
		for _, sym := range mt.Ordered() {
			switch sym.Kind {
			case register.KindFunction:
				decl := sym.Decl.(*ast.FuncDecl)
				f, err := c.buildFreeFunc(mt, sym, decl)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				c.addFunc(f)

			case register.KindClass:
				decl := sym.Decl.(*ast.ClassDecl)
				recv := ClassRef(sym.QualifiedName, genericArgs(decl.Generics)...)
				for _, m := range decl.Methods {
					f, err := c.buildMethod(mt, sym, decl.Generics, recv, decl, m)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					c.addFunc(f)
				}

			case register.KindTrait:
				decl := sym.Decl.(*ast.TraitDecl)
				recv := TraitRef(sym.QualifiedName, genericArgs(decl.Generics)...)
				for _, m := range decl.Methods {
					if m.Body == nil {
						continue // no default body to type-check
					}
					f, err := c.buildMethod(mt, sym, decl.Generics, recv, nil, m)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					c.addFunc(f)
				}

			case register.KindApp:
				decl := sym.Decl.(*ast.AppDecl)
				recv := ClassRef(sym.QualifiedName)
				for _, m := range decl.Methods {
					f, err := c.buildMethod(mt, sym, nil, recv, nil, m)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					c.addFunc(f)
				}

			case register.KindStage:
				decl := sym.Decl.(*ast.StageDecl)
				recv := ClassRef(sym.QualifiedName)
				for _, m := range decl.Methods {
					f, err := c.buildMethod(mt, sym, nil, recv, nil, m)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					c.addFunc(f)
				}
			}
		}
	}
	return errs
}

func genericArgs(params []*ast.GenericParam) []*Type {
	args := make([]*Type, len(params))
	for i, p := range params {
		args[i] = GenericParam(p.Name)
	}
	return args
}

func boundsOf(paramSets ...[]*ast.GenericParam) map[string][]string {
	bounds := make(map[string][]string)
	for _, params := range paramSets {
		for _, p := range params {
			if len(p.Bounds) > 0 {
				bounds[p.Name] = p.Bounds
			}
		}
	}
	return bounds
}

func (c *Context) buildFreeFunc(mt *register.ModuleTable, sym *register.Symbol, decl *ast.FuncDecl) (*FuncSig, error) {
	generics := genericScopeOf(decl.Generics)
	params, names, err := c.resolveParams(mt, generics, decl.Params)
	if err != nil {
		return nil, err
	}
	ret, err := c.resolveReturn(mt, generics, decl.Return)
	if err != nil {
		return nil, err
	}
	return &FuncSig{
		SID:          sym.SID,
		Name:         sym.Name,
		Qualified:    sym.QualifiedName,
		ModulePath:   sym.ModulePath,
		MT:           mt,
		Generics:     generics,
		GenericOrder: genericNames(decl.Generics),
		Bounds:       boundsOf(decl.Generics),
		ParamNames:   names,
		Params:       params,
		Return:       ret,
		Contract:     decl.Contract,
		Body:         decl.Body,
		Decl:         decl,
	}, nil
}

func (c *Context) buildMethod(mt *register.ModuleTable, owner *register.Symbol, ownerGenerics []*ast.GenericParam, recv *Type, ownerClass *ast.ClassDecl, m *ast.MethodDecl) (*FuncSig, error) {
	generics := genericScopeOf(ownerGenerics)
	for k := range genericScopeOf(m.Generics) {
		generics[k] = true
	}
	params, names, err := c.resolveParams(mt, generics, m.Params)
	if err != nil {
		return nil, err
	}
	ret, err := c.resolveReturn(mt, generics, m.Return)
	if err != nil {
		return nil, err
	}

	qualified := owner.QualifiedName + "." + m.Name
	id := sid.New(m.Pos.File, m.Pos.Offset, m.Pos.Offset, "method", qualified)

	return &FuncSig{
		SID:          id,
		Name:         m.Name,
		Qualified:    qualified,
		ModulePath:   owner.ModulePath,
		MT:           mt,
		Generics:     generics,
		GenericOrder: append(genericNames(ownerGenerics), genericNames(m.Generics)...),
		Bounds:       boundsOf(ownerGenerics, m.Generics),
		ParamNames:   names,
		Params:       params,
		Return:       ret,
		IsMethod:     true,
		SelfMut:      m.SelfMut,
		Receiver:     recv,
		OwnerDecl:    ownerClass,
		Contract:     m.Contract,
		Body:         m.Body,
		Decl:         m,
	}, nil
}

func (c *Context) resolveParams(mt *register.ModuleTable, generics GenericScope, params []*ast.Param) ([]*Type, []string, error) {
	types := make([]*Type, len(params))
	names := make([]string, len(params))
	for i, p := range params {
		t, err := c.resolveTypeExpr(mt, generics, p.Type)
		if err != nil {
			return nil, nil, err
		}
		types[i] = t
		names[i] = p.Name
	}
	return types, names, nil
}

func (c *Context) resolveReturn(mt *register.ModuleTable, generics GenericScope, ret ast.TypeExpr) (*Type, error) {
	if ret == nil {
		return Void, nil
	}
	return c.resolveTypeExpr(mt, generics, ret)
}

func genericNames(params []*ast.GenericParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
