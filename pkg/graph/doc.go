// Package graph provides the directed acyclic dataflow graph at the core of
// NumFlow.
//
// A [Graph] owns a set of numeric nodes and the directed edges between them.
// Each node carries a display name, an initial value, and a rounding
// precision. Edges express dataflow dependencies: during evaluation a node's
// value is its initial value plus the sum of the final values of all nodes
// with an edge into it.
//
// # Invariants
//
// The graph enforces its invariants at mutation time rather than asking
// callers to validate afterwards:
//
//   - Every edge references nodes that exist when the edge is added.
//   - The graph is acyclic after every successful [Graph.Connect]; a
//     connection that would close a cycle is rejected and the graph is left
//     unchanged.
//   - Node identifiers are stable for the lifetime of the graph instance and
//     are never reused.
//
// # Identity
//
// Nodes are addressed by [NodeID], a small integer allocated by
// [Graph.CreateNode]. Names are display labels only and need not be unique.
//
// # Mutability
//
// Callers build graphs with CreateNode, Connect, and SetPrecision. RemoveNode,
// RemoveEdge, and SetValue exist for optimization passes that rewrite a
// [Graph.Clone] working copy; the caller-visible graph is never mutated by
// evaluation or optimization.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Concurrent read-only use,
// including evaluation by pkg/engine, is safe once mutation has stopped.
package graph
