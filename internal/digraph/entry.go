package digraph

import "github.com/plutolang/pluto/internal/ast"

// FieldSourceKind distinguishes a bracket field filled from a
// previously-allocated singleton versus one filled from an ambient
// binding supplied to the program entry from outside the graph.
type FieldSourceKind int

const (
	FromNode FieldSourceKind = iota
	FromAmbient
)

// FieldSource is what a bracket-dep field is wired to.
type FieldSource struct {
	Kind FieldSourceKind
	Ref  string // node key, or ambient name
}

// Allocation is one step of the synthetic entry: allocate a zero
// singleton, then wire its bracket fields.
type Allocation struct {
	NodeKey    string
	Qualified  string
	Class      *ast.ClassDecl
	Brackets   map[string]FieldSource // bracket field name -> source
	Ordinary   []string               // ordinary field names, zero/default initialized
}

// EntryPlan is spec §4.5 step 7's synthetic program-entry routine,
// expressed as data: a code generator (external collaborator per spec
// §1) walks Allocations in order, emits one allocation + field-wiring
// statement per entry, wires RootAssignments into the app instance,
// then calls app.main(self).
type EntryPlan struct {
	AppName         string
	AmbientParams   []string // ambient names the entry function must accept
	Allocations     []Allocation
	RootAssignments map[string]FieldSource // the app's own bracket fields, by field name
}

// GenerateEntry builds the synthetic entry plan from a graph whose
// topological Order has already been computed by Build.
func GenerateEntry(g *Graph) *EntryPlan {
	plan := &EntryPlan{
		AppName:         g.RootName,
		AmbientParams:   ambientNames(g.RootApp.Ambient),
		RootAssignments: make(map[string]FieldSource, len(g.RootDeps)),
	}

	for _, key := range g.Order {
		node := g.Nodes[key]
		alloc := Allocation{
			NodeKey:   key,
			Qualified: node.Qualified,
			Class:     node.Class,
			Brackets:  make(map[string]FieldSource, len(node.Deps)+len(node.Ambient)),
			Ordinary:  fieldNames(node.Class.Fields),
		}
		for field, targetKey := range node.Deps {
			alloc.Brackets[field] = FieldSource{Kind: FromNode, Ref: targetKey}
		}
		for use, ambientKey := range node.Ambient {
			alloc.Brackets[use] = FieldSource{Kind: FromAmbient, Ref: ambientKey}
		}
		plan.Allocations = append(plan.Allocations, alloc)
	}

	for field, targetKey := range g.RootDeps {
		plan.RootAssignments[field] = FieldSource{Kind: FromNode, Ref: targetKey}
	}

	return plan
}

func fieldNames(fields []*ast.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func ambientNames(names []string) []string {
	return append([]string(nil), names...)
}
