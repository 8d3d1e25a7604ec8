// Package digraph implements P5 (spec §4.5): build and validate the
// singleton dependency graph rooted at a program's app (or each
// system member's app), then hand back a topological order a
// synthetic program entry can allocate in.
package digraph

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

// Node is one singleton in the DI graph: a concrete class together
// with the concrete type arguments it was reached with (spec §4.5:
// "DI graph node. (class id, concrete type args, dependency edges to
// other DI nodes)").
type Node struct {
	Key       string // qualifiedName + rendered type args, unique per singleton
	Qualified string
	TypeArgs  []string
	SID       sid.SID
	Class     *ast.ClassDecl
	Module    *register.ModuleTable

	// Deps maps each bracket-dep field name to the key of the node
	// satisfying it (either another class singleton or, for an
	// ambient-satisfied `uses`, the ambient binding's key).
	Deps map[string]string
	// Ambient lists bracket-order-independent `uses` names this node
	// consumes, each resolved to an ambient binding key.
	Ambient map[string]string
}

// Graph is P5's output for one DI root (an app, or one system member).
type Graph struct {
	RootName string
	RootApp  *ast.AppDecl
	// RootDeps maps the app's own bracket-dep field names to node keys.
	RootDeps map[string]string
	// RootAmbient maps each ambient name declared by the app to a
	// synthetic binding key standing for "the ambient value itself",
	// since an ambient binding has no DI node of its own — it is
	// supplied to the program entry from outside the graph.
	RootAmbient map[string]string

	Nodes map[string]*Node
	// Order is the topological order (dependencies before dependents)
	// computed by Build; nil until Build succeeds.
	Order []string
}

func keyFor(qualified string, args []string) string {
	key := qualified
	for _, a := range args {
		key += "|" + a
	}
	return key
}

func renderArgs(args []ast.TypeExpr) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}

// String renders a node for debug output: its qualified name, followed
// by its type arguments when it has any.
func (n *Node) String() string {
	if len(n.TypeArgs) == 0 {
		return n.Qualified
	}
	return fmt.Sprintf("%s<%v>", n.Qualified, n.TypeArgs)
}
