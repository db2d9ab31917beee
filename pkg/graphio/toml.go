package graphio

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/numflow/numflow/pkg/errors"
	"github.com/numflow/numflow/pkg/graph"
)

// =============================================================================
// TOML Definition Format
// =============================================================================

// A definition file declares nodes and edges by name:
//
//	[[node]]
//	name = "supply"
//	value = 5.0
//	precision = 2
//
//	[[node]]
//	name = "total"
//
//	[[edge]]
//	from = "supply"
//	to = "total"
//
// Names must be unique within a file. Precision is optional and defaults
// to 0 (no rounding).

type definitionFile struct {
	Nodes []definitionNode `toml:"node"`
	Edges []definitionEdge `toml:"edge"`
}

type definitionNode struct {
	Name      string  `toml:"name"`
	Value     float64 `toml:"value"`
	Precision int     `toml:"precision"`
}

type definitionEdge struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// LoadDefinitionFile reads a TOML definition file and builds the graph.
func LoadDefinitionFile(path string) (*graph.Graph, error) {
	var def definitionFile
	if _, err := toml.DecodeFile(path, &def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "parse %s", path)
	}
	return buildDefinition(def)
}

// LoadDefinition reads a TOML definition from an io.Reader and builds
// the graph.
func LoadDefinition(r io.Reader) (*graph.Graph, error) {
	var def definitionFile
	if _, err := toml.NewDecoder(r).Decode(&def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "parse definition")
	}
	return buildDefinition(def)
}

func buildDefinition(def definitionFile) (*graph.Graph, error) {
	g := graph.New()
	byName := make(map[string]graph.NodeID, len(def.Nodes))

	for _, n := range def.Nodes {
		if err := errors.ValidateNodeName(n.Name); err != nil {
			return nil, err
		}
		if _, ok := byName[n.Name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidDefinition, "duplicate node name: %s", n.Name)
		}
		if n.Precision < 0 {
			return nil, errors.New(errors.ErrCodeInvalidPrecision, "node %s: precision must be non-negative", n.Name)
		}

		id := g.CreateNode(n.Name, n.Value)
		if n.Precision > 0 {
			_ = g.SetPrecision(id, n.Precision)
		}
		byName[n.Name] = id
	}

	for _, e := range def.Edges {
		from, ok := byName[e.From]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "edge references unknown node: %s", e.From)
		}
		to, ok := byName[e.To]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNode, "edge references unknown node: %s", e.To)
		}
		if err := g.Connect(from, to); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCycleRejected, err, "edge %s -> %s", e.From, e.To)
		}
	}

	return g, nil
}
