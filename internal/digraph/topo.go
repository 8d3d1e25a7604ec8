package digraph

import (
	"fmt"

	"github.com/plutolang/pluto/internal/diag"
)

// topoSort walks the graph via DFS coloring (white/gray/black) in the
// order nodes were first discovered, so output is deterministic
// regardless of Go's unordered maps. A gray node reached again is a
// cycle (spec §4.5 step 5); a node closes (turns black) only after all
// its dependencies have, giving "dependencies before dependents"
// ordering for free (spec §4.5 step 6), the same DFS-post-order shape
// the teacher's module topo-sort uses.
func topoSort(g *Graph, discoverOrder []string) ([]string, error) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.Nodes))
	var order []string
	var path []string

	var visit func(key string) error
	visit = func(key string) error {
		switch color[key] {
		case black:
			return nil
		case gray:
			cyclePath := append(append([]string(nil), path...), key)
			return diag.Wrap(diag.New(diag.CyclicDependency, "digraph",
				fmt.Sprintf("dependency cycle: %s", describeCycle(cyclePath))))
		}

		color[key] = gray
		path = append(path, key)

		node := g.Nodes[key]
		for _, dep := range node.Class.BracketDeps {
			target, ok := node.Deps[dep.Name]
			if !ok {
				continue
			}
			if err := visit(target); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		color[key] = black
		order = append(order, key)
		return nil
	}

	for _, key := range discoverOrder {
		if err := visit(key); err != nil {
			return nil, err
		}
	}
	return order, nil
}
