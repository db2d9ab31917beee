package graph

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownNode is returned by [Graph.Connect] and [Graph.SetPrecision]
	// when a node identifier does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrWouldCycle is returned by [Graph.Connect] when adding the edge would
	// create a directed cycle. Self-loops are rejected as the trivial case.
	ErrWouldCycle = errors.New("edge would create a cycle")
)

// NodeID identifies a node within a single graph instance. Identifiers are
// assigned at creation, increase monotonically, and are never reused.
type NodeID int

// Node holds a numeric value with a display name and rounding precision.
//
// Value is the node's initial value; during evaluation the engine adds the
// final values of all upstream nodes to it. Precision is the number of decimal
// digits the final value is rounded to (0 disables rounding). Name is an
// opaque display label and is not required to be unique.
type Node struct {
	ID        NodeID
	Name      string
	Value     float64
	Precision int
}

// Graph is a directed acyclic dataflow graph of numeric nodes.
//
// Graph owns the node records and the adjacency lists and is the only
// component that mutates topology. All mutations are validated: edges can only
// reference existing nodes and can never close a cycle, so a Graph is acyclic
// at all times.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// mutation without external synchronization; read-only use (including
// evaluation) is safe once mutation has stopped.
type Graph struct {
	nodes    map[NodeID]*Node
	outgoing map[NodeID][]NodeID // node -> successors, insertion-ordered
	incoming map[NodeID][]NodeID // node -> predecessors, insertion-ordered
	nextID   NodeID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]*Node),
		outgoing: make(map[NodeID][]NodeID),
		incoming: make(map[NodeID][]NodeID),
	}
}

// CreateNode adds a node with the given display name and initial value and
// returns its freshly allocated identifier. CreateNode always succeeds.
func (g *Graph) CreateNode(name string, value float64) NodeID {
	id := g.nextID
	g.nextID++
	g.nodes[id] = &Node{ID: id, Name: name, Value: value}
	return id
}

// Has reports whether a node with the given identifier exists.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the stored node; callers must not
// mutate it directly.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// SetPrecision stores the rounding precision for a node. Negative digit counts
// are clamped to zero (no rounding). Returns ErrUnknownNode if the node does
// not exist; the graph is unchanged on failure.
func (g *Graph) SetPrecision(id NodeID, digits int) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	n.Precision = max(digits, 0)
	return nil
}

// Connect adds a directed edge between two existing nodes.
//
// A duplicate edge is an idempotent success: Connect returns nil and the
// adjacency lists are unchanged. Returns ErrUnknownNode if either endpoint
// does not exist, or ErrWouldCycle if the edge would close a directed cycle
// (including the from == to self-loop). On any failure the graph is unchanged.
//
// The cycle check is a DFS reachability search from to over existing outgoing
// edges: the edge is rejected if from is already reachable from to. The check
// is re-run per request rather than maintained incrementally; graphs in this
// domain are small and mutated far less often than they are evaluated.
func (g *Graph) Connect(from, to NodeID) error {
	if !g.Has(from) || !g.Has(to) {
		return ErrUnknownNode
	}
	if from == to {
		return ErrWouldCycle
	}
	if slices.Contains(g.outgoing[from], to) {
		return nil
	}
	if g.reaches(to, from) {
		return ErrWouldCycle
	}
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// reaches reports whether dst is reachable from src over outgoing edges.
func (g *Graph) reaches(src, dst NodeID) bool {
	visited := make(map[NodeID]bool, len(g.nodes))
	var dfs func(id NodeID) bool
	dfs = func(id NodeID) bool {
		if id == dst {
			return true
		}
		visited[id] = true
		for _, next := range g.outgoing[id] {
			if !visited[next] && dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(src)
}

// RemoveEdge removes the edge from→to if it exists. No error is returned if
// the edge does not exist. Optimization passes use this on working copies;
// callers building graphs never remove edges.
func (g *Graph) RemoveEdge(from, to NodeID) {
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(id NodeID) bool { return id == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(id NodeID) bool { return id == from })
}

// RemoveNode removes a node and all edges touching it. Like RemoveEdge this
// exists for optimization passes operating on working copies; the caller-level
// API exposes no node deletion.
func (g *Graph) RemoveNode(id NodeID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, to := range slices.Clone(g.outgoing[id]) {
		g.RemoveEdge(id, to)
	}
	for _, from := range slices.Clone(g.incoming[id]) {
		g.RemoveEdge(from, id)
	}
	delete(g.outgoing, id)
	delete(g.incoming, id)
	delete(g.nodes, id)
}

// SetValue overwrites a node's stored initial value. Constant folding uses
// this on working copies to install folded sums.
func (g *Graph) SetValue(id NodeID, value float64) {
	if n, ok := g.nodes[id]; ok {
		n.Value = value
	}
}

// Nodes returns all nodes sorted by ascending identifier.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return int(a.ID - b.ID) })
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.outgoing {
		count += len(targets)
	}
	return count
}

// Children returns the IDs of nodes this node has edges to, in the order the
// edges were added. The returned slice is a read-only view.
func (g *Graph) Children(id NodeID) []NodeID { return g.outgoing[id] }

// Parents returns the IDs of nodes with edges into this node, in the order the
// edges were added. The returned slice is a read-only view.
func (g *Graph) Parents(id NodeID) []NodeID { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id NodeID) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id NodeID) int { return len(g.incoming[id]) }

// Sources returns all nodes with no incoming edges, sorted by ID. Source
// values are fixed before execution begins, which makes them the seeds for
// constant folding.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, n := range g.Nodes() {
		if len(g.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns all nodes with no outgoing edges, sorted by ID. Sinks are the
// graph's outputs: dead-node elimination retains exactly the nodes that can
// influence a sink.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, n := range g.Nodes() {
		if len(g.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Clone returns a deep copy of the graph. The copy shares no state with the
// original: optimization passes mutate clones so the caller-visible graph and
// its precision settings are never touched.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make(map[NodeID]*Node, len(g.nodes)),
		outgoing: make(map[NodeID][]NodeID, len(g.outgoing)),
		incoming: make(map[NodeID][]NodeID, len(g.incoming)),
		nextID:   g.nextID,
	}
	for id, n := range g.nodes {
		copied := *n
		c.nodes[id] = &copied
	}
	for id, targets := range g.outgoing {
		if len(targets) > 0 {
			c.outgoing[id] = slices.Clone(targets)
		}
	}
	for id, sources := range g.incoming {
		if len(sources) > 0 {
			c.incoming[id] = slices.Clone(sources)
		}
	}
	return c
}
