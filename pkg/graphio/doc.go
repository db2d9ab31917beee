// Package graphio provides serialization for dataflow graphs and results.
//
// Three formats are supported:
//
//   - JSON wire format (Doc): the canonical interchange format for graphs.
//     Used for API responses, export, and cache storage. Deterministic:
//     nodes are sorted by ID, so equal graphs always serialize to equal
//     bytes, which makes the output usable as a cache key input.
//
//   - TOML definition format: human-authored graph definitions for the CLI.
//     Nodes are addressed by name, so names must be unique within a file.
//
//   - Binary codec (Serializer): msgpack with zstd compression for compact
//     cache blobs such as execution results.
//
// # Identity
//
// Node IDs are reassigned densely on import. A round-trip preserves the
// structure, names, values, and precisions of a graph but may renumber
// nodes; edges are remapped accordingly.
package graphio
