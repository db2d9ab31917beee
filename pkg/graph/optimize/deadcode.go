package optimize

import "github.com/numflow/numflow/pkg/graph"

// EliminateDead removes every node that cannot reach a sink and returns the
// number of nodes removed.
//
// The sink set is the nodes with zero outgoing edges; they are the graph's
// outputs and are always retained, as is everything backward-reachable from
// them. A node outside that set cannot influence any reported output, so it is
// dropped from evaluation and from the result mapping. A graph with no sinks
// keeps all its nodes.
func EliminateDead(g *graph.Graph) int {
	sinks := g.Sinks()
	if len(sinks) == 0 {
		return 0
	}

	live := make(map[graph.NodeID]bool, g.NodeCount())
	var mark func(id graph.NodeID)
	mark = func(id graph.NodeID) {
		if live[id] {
			return
		}
		live[id] = true
		for _, pred := range g.Parents(id) {
			mark(pred)
		}
	}
	for _, sink := range sinks {
		mark(sink.ID)
	}

	removed := 0
	for _, n := range g.Nodes() {
		if !live[n.ID] {
			g.RemoveNode(n.ID)
			removed++
		}
	}
	return removed
}
