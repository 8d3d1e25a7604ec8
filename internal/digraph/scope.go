package digraph

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

// BuildScope builds the secondary DI graph spec §4.5's "Scoped
// services" section describes for one `scope(seed_value) { ... }`
// block: a graph rooted at a synthetic seed binding instead of an app,
// expanded with the same bracket/uses walk Build uses. Any class
// already present in mainGraph is shared (the scope reuses the
// program singleton rather than allocating a second instance); every
// other class reachable from the seed is scope-local and gets a fresh
// instance every time the scope block runs.
func BuildScope(reg *register.Table, mt *register.ModuleTable, mainGraph *Graph, seedField string, seedType ast.TypeExpr) (*Graph, []error) {
	syntheticApp := &ast.AppDecl{
		Name:        "scope",
		BracketDeps: []*ast.BracketDep{{Name: seedField, Type: seedType}},
	}
	g, errs := Build(reg, mt, syntheticApp)
	if len(errs) > 0 {
		return g, errs
	}
	return g, nil
}

// Shared reports whether a scope-graph node is backed by an existing
// program singleton rather than a fresh per-scope instance.
func (g *Graph) Shared(mainGraph *Graph, key string) bool {
	_, ok := mainGraph.Nodes[key]
	return ok
}

// CheckEscape implements spec §4.5's "Scoped instances escape analysis
// (simple reachability) rejects references from singletons to scoped
// objects": for every singleton's ordinary (non-bracket) field, if its
// declared type names a class that is reachable from some scope graph
// but never shares a key with the singleton graph, the singleton would
// be holding a reference that outlives the scope it came from. This is
// a declaration-level approximation of reachability (it checks field
// *types*, not runtime assignment flow, which would need full
// dataflow analysis this phase does not have); it still catches the
// straightforward case spec §4.5 names.
func CheckEscape(mainGraph *Graph, scopeGraphs []*Graph) []error {
	scopeOnly := make(map[string]*Node)
	for _, sg := range scopeGraphs {
		for key, node := range sg.Nodes {
			if _, shared := mainGraph.Nodes[key]; !shared {
				scopeOnly[key] = node
			}
		}
	}
	if len(scopeOnly) == 0 {
		return nil
	}

	var errs []error
	for _, node := range mainGraph.Nodes {
		for _, field := range node.Class.Fields {
			named := unwrapNullable(field.Type)
			nt, ok := named.(*ast.NamedType)
			if !ok {
				continue
			}
			for _, target := range scopeOnly {
				if target.Class.Name == nt.Name {
					errs = append(errs, diag.Wrap(diag.New(diag.ScopeEscape, "digraph",
						fmt.Sprintf("singleton %s field %q references %s, which is scope-lifetime only",
							node.Qualified, field.Name, target.Qualified)).
						WithSpan(ast.Span{Start: field.Pos, End: field.Pos})))
				}
			}
		}
	}
	return errs
}

func unwrapNullable(te ast.TypeExpr) ast.TypeExpr {
	if n, ok := te.(*ast.NullableType); ok {
		return n.Inner
	}
	return te
}
