package graphio

import (
	"slices"

	"github.com/numflow/numflow/pkg/errors"
	"github.com/numflow/numflow/pkg/graph"
)

// =============================================================================
// Doc - Graph Wire Format
// =============================================================================

// Doc is the canonical serialization format for dataflow graphs.
// Used for API responses, storage, caching, and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// import, transform, export, re-import produces a structurally identical
// graph.
type Doc struct {
	Nodes []Node `json:"nodes" msgpack:"nodes"`
	Edges []Edge `json:"edges" msgpack:"edges"`
}

// Node is the wire representation of a graph node.
type Node struct {
	ID        int     `json:"id" msgpack:"id"`
	Name      string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Value     float64 `json:"value" msgpack:"value"`
	Precision int     `json:"precision,omitempty" msgpack:"precision,omitempty"`
}

// Edge is the wire representation of a directed edge.
type Edge struct {
	From int `json:"from" msgpack:"from"`
	To   int `json:"to" msgpack:"to"`
}

// =============================================================================
// Graph ↔ Doc Conversion
// =============================================================================

// FromGraph converts a graph to its serialization format.
// Nodes and edges are sorted for deterministic output.
func FromGraph(g *graph.Graph) Doc {
	nodes := g.Nodes()

	out := Doc{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}

	for i, n := range nodes {
		out.Nodes[i] = Node{
			ID:        int(n.ID),
			Name:      n.Name,
			Value:     n.Value,
			Precision: n.Precision,
		}
	}

	// Nodes() is ID-sorted, so emitting each node's children in order
	// yields a deterministic edge list.
	for _, n := range nodes {
		for _, child := range g.Children(n.ID) {
			out.Edges = append(out.Edges, Edge{From: int(n.ID), To: int(child)})
		}
	}
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		if a.From != b.From {
			return a.From - b.From
		}
		return a.To - b.To
	})

	return out
}

// ToGraph converts a Doc to a graph.
// Wire IDs must be unique; they are remapped to fresh IDs in ascending wire
// order. Returns an error if an edge references an unknown node or would
// create a cycle.
func ToGraph(doc Doc) (*graph.Graph, error) {
	nodes := slices.Clone(doc.Nodes)
	slices.SortFunc(nodes, func(a, b Node) int { return a.ID - b.ID })

	g := graph.New()
	remap := make(map[int]graph.NodeID, len(nodes))

	for _, n := range nodes {
		if _, ok := remap[n.ID]; ok {
			return nil, errors.New(errors.ErrCodeInvalidDefinition, "duplicate node id: %d", n.ID)
		}
		id := g.CreateNode(n.Name, n.Value)
		if n.Precision > 0 {
			if err := g.SetPrecision(id, n.Precision); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "set precision for node %d", n.ID)
			}
		}
		remap[n.ID] = id
	}

	for _, e := range doc.Edges {
		from, ok := remap[e.From]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "edge references unknown node: %d", e.From)
		}
		to, ok := remap[e.To]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "edge references unknown node: %d", e.To)
		}
		if err := g.Connect(from, to); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCycleRejected, err, "edge %d -> %d", e.From, e.To)
		}
	}

	return g, nil
}
