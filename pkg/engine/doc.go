// Package engine evaluates a dataflow graph and reports per-node outcomes.
//
// # Evaluation model
//
// [Run] computes a topological order over the graph with Kahn's algorithm and
// evaluates each node strictly in that order. A node's raw value is its stored
// initial value plus the sum of the already-computed final values of all nodes
// with an edge into it; a source node therefore evaluates to exactly its
// initial value. The raw value is then rounded to the node's precision with
// [RoundTo] (round-half-to-even), producing the final value consumed by
// downstream nodes and reported to the caller.
//
// # Determinism
//
// In-degree ties in the topological sort are broken by ascending node
// identifier, so repeated evaluation of an unmodified graph yields
// bit-identical results.
//
// # Failures
//
// Evaluation never aborts. A node whose raw value is non-finite fails with an
// outcome sourced at itself; a node with a failed predecessor records the
// failure of the first failing predecessor in adjacency order, carrying the
// originating node's identifier forward. Failures propagate to all transitive
// successors and never affect independent nodes.
//
// Run never mutates the graph, so it is safe to evaluate the same graph from
// multiple goroutines as long as nobody is mutating it.
package engine
