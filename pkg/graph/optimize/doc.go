// Package optimize provides graph transformations that produce an
// execution-time view of a dataflow graph that is cheaper to evaluate but
// yields the same reported values.
//
// # Overview
//
// Both passes mutate the graph they are given, so callers must pass a
// [graph.Graph.Clone] working copy; the caller-visible graph and its precision
// settings are never touched by optimization. [Apply] runs the enabled passes
// in the correct order and reports what they did.
//
// # Constant Folding
//
// A node with no incoming edges is a source: its value is fixed and known
// before execution. [FoldConstants] walks the graph in topological order and
// replaces every node whose incoming edges all originate from already-constant
// nodes with a constant holding the precision-rounded sum of its inputs. The
// node keeps its identity, so downstream consumers need no rewiring and the
// result mapping is unchanged. Folding stops at the first node with a
// non-constant predecessor.
//
// # Dead-Node Elimination
//
// Sinks (nodes with no outgoing edges) are the graph's outputs and are always
// retained. [EliminateDead] removes every node that cannot reach a sink,
// because such a node cannot influence any reported output; removed nodes are
// absent from evaluation and from the result mapping. If the graph has no
// sinks, all nodes are retained.
//
// # Usage
//
// For most use cases, apply the enabled passes in one call:
//
//	work := g.Clone()
//	report := optimize.Apply(work, optimize.Options{FoldConstants: true})
//
// For fine-grained control, run the passes individually:
//
//	optimize.FoldConstants(work)
//	optimize.EliminateDead(work)
package optimize
