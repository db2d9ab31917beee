package engine

import (
	"container/heap"
	"encoding/json"
	"fmt"
	"math"

	"github.com/numflow/numflow/pkg/graph"
)

// NodeError describes why a node failed to produce a numeric value. Source
// identifies the originating failed node: for a propagated failure it names
// the upstream node where the failure began, not the node carrying the error.
type NodeError struct {
	Source graph.NodeID `json:"source" msgpack:"source"`
	Msg    string       `json:"error" msgpack:"error"`
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d: %s", e.Source, e.Msg)
}

// Outcome is the tagged per-node result of an execution: either a final
// numeric value or a failure. Exactly one of the two is meaningful; use
// [Outcome.Failed] to discriminate.
type Outcome struct {
	Value float64    `msgpack:"value"`
	Err   *NodeError `msgpack:"err,omitempty"`
}

// Failed reports whether the node failed to produce a value.
func (o Outcome) Failed() bool { return o.Err != nil }

// MarshalJSON encodes a success as a bare number and a failure as an object
// with "error" and "source" fields, matching the engine's wire contract.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(o.Err)
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		o.Value = 0
		o.Err = new(NodeError)
		return json.Unmarshal(data, o.Err)
	}
	o.Err = nil
	return json.Unmarshal(data, &o.Value)
}

// Result maps every evaluated node to its outcome. The key set equals exactly
// the node set of the executed graph: all caller-created nodes when
// optimization is disabled, the retained set otherwise.
type Result map[graph.NodeID]Outcome

// Run evaluates every node of g in dependency order and returns the per-node
// outcomes. Run never mutates g and never fails as a whole: errors are
// recorded per node and propagated forward through the graph only.
func Run(g *graph.Graph) Result {
	res := make(Result, g.NodeCount())
	for _, id := range TopoOrder(g) {
		n, _ := g.Node(id)
		res[id] = evaluate(g, n, res)
	}
	return res
}

// evaluate computes a single node's outcome from its already-evaluated
// predecessors.
func evaluate(g *graph.Graph, n *graph.Node, res Result) Outcome {
	raw := n.Value
	for _, pred := range g.Parents(n.ID) {
		prev := res[pred]
		if prev.Failed() {
			// First failing predecessor in adjacency order wins; the
			// originating source travels with the error.
			return Outcome{Err: &NodeError{Source: prev.Err.Source, Msg: prev.Err.Msg}}
		}
		raw += prev.Value
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Outcome{Err: &NodeError{Source: n.ID, Msg: "computation produced a non-finite value"}}
	}
	return Outcome{Value: RoundTo(raw, n.Precision)}
}

// TopoOrder returns a topological order over g computed with Kahn's algorithm.
// In-degree ties are broken by ascending node identifier, making the order (and
// therefore evaluation) fully deterministic. The graph is acyclic by
// construction, so the order always covers every node.
func TopoOrder(g *graph.Graph) []graph.NodeID {
	nodes := g.Nodes()
	indegree := make(map[graph.NodeID]int, len(nodes))

	ready := &idHeap{}
	for _, n := range nodes {
		d := g.InDegree(n.ID)
		indegree[n.ID] = d
		if d == 0 {
			heap.Push(ready, n.ID)
		}
	}

	order := make([]graph.NodeID, 0, len(nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(graph.NodeID)
		order = append(order, id)
		for _, child := range g.Children(id) {
			indegree[child]--
			if indegree[child] == 0 {
				heap.Push(ready, child)
			}
		}
	}
	return order
}

// idHeap is a min-heap of node identifiers used as the ready set in Kahn's
// algorithm.
type idHeap []graph.NodeID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(graph.NodeID)) }

func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	id := old[n-1]
	*h = old[:n-1]
	return id
}
