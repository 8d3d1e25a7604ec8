package infer

import "github.com/plutolang/pluto/internal/sid"

// callGraph tracks which functions call which, so the error-set fixed
// point (spec §4.4.3) can schedule callees before callers instead of
// iterating the whole program to a fixed point on every pass. Adapted
// from the call-graph/Tarjan-SCC shape used for mutual-recursion
// scheduling elsewhere in this compiler's ancestry, generalized from
// "desugaring order" to "error-set propagation order".
type callGraph struct {
	nodes   []sid.SID
	nodeSet map[sid.SID]bool
	edges   map[sid.SID][]sid.SID
}

func newCallGraph() *callGraph {
	return &callGraph{nodeSet: make(map[sid.SID]bool), edges: make(map[sid.SID][]sid.SID)}
}

func (g *callGraph) addNode(id sid.SID) {
	if !g.nodeSet[id] {
		g.nodes = append(g.nodes, id)
		g.nodeSet[id] = true
		g.edges[id] = nil
	}
}

func (g *callGraph) addEdge(caller, callee sid.SID) {
	g.addNode(caller)
	g.addNode(callee)
	g.edges[caller] = append(g.edges[caller], callee)
}

// sccs computes strongly connected components via Tarjan's algorithm,
// returned in reverse topological order (a component's callees appear
// before it) so propagating error sets forward through the list needs
// only one pass per fixed-point iteration for acyclic call chains.
func (g *callGraph) sccs() [][]sid.SID {
	index := 0
	var stack []sid.SID
	indices := make(map[sid.SID]int)
	lowlink := make(map[sid.SID]int)
	onStack := make(map[sid.SID]bool)
	var out [][]sid.SID

	var strongconnect func(sid.SID)
	strongconnect = func(v sid.SID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, ok := indices[w]; !ok {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []sid.SID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			out = append(out, comp)
		}
	}

	for _, n := range g.nodes {
		if _, ok := indices[n]; !ok {
			strongconnect(n)
		}
	}

	// Tarjan yields components in reverse topological order relative
	// to edge direction already (a root is closed only after its
	// successors), which is exactly callees-before-callers here.
	return out
}
