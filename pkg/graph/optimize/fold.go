package optimize

import (
	"math"
	"slices"

	"github.com/numflow/numflow/pkg/engine"
	"github.com/numflow/numflow/pkg/graph"
)

// FoldConstants replaces nodes whose inputs are all constant with
// pre-computed constants and returns the number of nodes folded.
//
// Sources are constant by definition. Walking in topological order, a node
// whose incoming edges all originate from constants is folded: its stored
// value becomes the precision-rounded sum of its own value and its
// predecessors' final values, and its incoming edges are dropped, turning it
// into a source. The node keeps its identifier, so its outgoing edges already
// point at the folded constant and reported results are unchanged.
//
// A node whose folded value would be non-finite is left alone so that the
// engine still observes and reports the failure at the right node.
func FoldConstants(g *graph.Graph) int {
	final := make(map[graph.NodeID]float64, g.NodeCount())
	folded := 0

	for _, id := range engine.TopoOrder(g) {
		n, _ := g.Node(id)

		preds := g.Parents(id)
		if len(preds) == 0 {
			if v := engine.RoundTo(n.Value, n.Precision); isFinite(v) {
				final[id] = v
			}
			continue
		}

		sum := n.Value
		constant := true
		for _, pred := range preds {
			v, ok := final[pred]
			if !ok {
				constant = false
				break
			}
			sum += v
		}
		if !constant {
			continue
		}

		v := engine.RoundTo(sum, n.Precision)
		if !isFinite(v) {
			continue
		}

		g.SetValue(id, v)
		for _, pred := range slices.Clone(preds) {
			g.RemoveEdge(pred, id)
		}
		final[id] = v
		folded++
	}
	return folded
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
