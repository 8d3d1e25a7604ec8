package digraph

import (
	"fmt"
	"strings"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

// Build runs spec §4.5's algorithm for one DI root: start from the
// app's bracket list, recursively expand every class's bracket deps
// and `uses` list (satisfied flatly by the app's own `ambient` list),
// dedup each concrete class into a single singleton node, then detect
// cycles and compute a topological order.
func Build(reg *register.Table, mt *register.ModuleTable, app *ast.AppDecl) (*Graph, []error) {
	g := &Graph{
		RootName:    app.Name,
		RootApp:     app,
		RootDeps:    make(map[string]string),
		RootAmbient: make(map[string]string),
		Nodes:       make(map[string]*Node),
	}

	ambient := make(map[string]bool, len(app.Ambient))
	for _, a := range app.Ambient {
		ambient[a] = true
		g.RootAmbient[a] = "ambient:" + a
	}

	var errs []error
	var discover []string // node keys in first-seen order, for deterministic traversal

	var expand func(dep *ast.BracketDep, mt *register.ModuleTable) (string, bool)
	expand = func(dep *ast.BracketDep, owningMT *register.ModuleTable) (string, bool) {
		classDecl, classMT, typeArgs, err := resolveClassType(reg, owningMT, dep.Type)
		if err != nil {
			errs = append(errs, err)
			return "", false
		}

		qualified := classDecl.Name
		if classMT.Path != "" {
			qualified = classMT.Path + "." + classDecl.Name
		}
		key := keyFor(qualified, typeArgs)
		if _, ok := g.Nodes[key]; ok {
			return key, true // already expanded (dedup, spec §4.5 step 4)
		}

		node := &Node{
			Key:       key,
			Qualified: qualified,
			TypeArgs:  typeArgs,
			Class:     classDecl,
			Module:    classMT,
			Deps:      make(map[string]string),
			Ambient:   make(map[string]string),
		}
		g.Nodes[key] = node
		discover = append(discover, key)

		for _, inner := range classDecl.BracketDeps {
			if innerKey, ok := expand(inner, classMT); ok {
				node.Deps[inner.Name] = innerKey
			}
		}
		for _, use := range classDecl.Uses {
			if !ambient[use] {
				errs = append(errs, diag.Wrap(diag.New(diag.AmbientNotSatisfied, "digraph",
					fmt.Sprintf("class %s uses %q, which is not in app %s's ambient list", classDecl.Name, use, app.Name)).
					WithSpan(ast.Span{Start: classDecl.Pos, End: classDecl.Pos})))
				continue
			}
			node.Ambient[use] = g.RootAmbient[use]
		}
		return key, true
	}

	for _, dep := range app.BracketDeps {
		if key, ok := expand(dep, mt); ok {
			g.RootDeps[dep.Name] = key
		}
	}

	if len(errs) > 0 {
		return g, errs
	}

	order, cycleErr := topoSort(g, discover)
	if cycleErr != nil {
		return g, []error{cycleErr}
	}
	g.Order = order
	return g, nil
}

// resolveClassType resolves a bracket-dep's declared type to a concrete
// class declaration. Bracket deps must name a class directly (spec
// §4.5 step 1: "Type is a concrete class"): a type that is not a plain
// named type, or a name that resolves to something other than a class,
// is returned as a TypeMismatch diagnostic, and a name that does not
// resolve at all as Undefined; no node is produced for it.
func resolveClassType(reg *register.Table, mt *register.ModuleTable, te ast.TypeExpr) (*ast.ClassDecl, *register.ModuleTable, []string, error) {
	named, ok := te.(*ast.NamedType)
	if !ok {
		return nil, nil, nil, diag.Wrap(diag.New(diag.TypeMismatch, "digraph",
			fmt.Sprintf("bracket dependency type %s is not a class reference", te.String())).
			WithSpan(ast.Span{Start: te.Position(), End: te.Position()}))
	}

	sym, symMT, ok := resolveName(reg, mt, named.Name)
	if !ok {
		return nil, nil, nil, diag.Wrap(diag.New(diag.Undefined, "digraph",
			fmt.Sprintf("%q does not name a class", named.Name)).
			WithSpan(ast.Span{Start: named.Pos, End: named.Pos}))
	}
	classDecl, ok := sym.Decl.(*ast.ClassDecl)
	if !ok || sym.Kind != register.KindClass {
		return nil, nil, nil, diag.Wrap(diag.New(diag.TypeMismatch, "digraph",
			fmt.Sprintf("%q is not a class", named.Name)).
			WithSpan(ast.Span{Start: named.Pos, End: named.Pos}))
	}
	return classDecl, symMT, renderArgs(named.Args), nil
}

// resolveName looks up a name first within the declaring module, then
// the program's public global table (spec §4.1 rule 5), the same
// two-tier visibility P3/P4 use, returning the module table the symbol
// actually belongs to so the recursive expansion can resolve that
// class's own bracket deps against its own module.
func resolveName(reg *register.Table, mt *register.ModuleTable, name string) (*register.Symbol, *register.ModuleTable, bool) {
	if sym, ok := mt.Lookup(name); ok {
		return sym, mt, true
	}
	if sym, ok := reg.Global[name]; ok {
		return sym, reg.Modules[sym.ModulePath], true
	}
	return nil, nil, false
}

func describeCycle(path []string) string {
	return strings.Join(path, " -> ")
}
