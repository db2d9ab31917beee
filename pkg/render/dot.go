// Package render converts dataflow graphs to Graphviz DOT and raster formats.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/numflow/numflow/pkg/engine"
	"github.com/numflow/numflow/pkg/graph"
)

// Options configures DOT rendering.
type Options struct {
	// Detailed includes value and precision in node labels.
	// When false, only the node name is shown.
	Detailed bool

	// Results annotates nodes with their evaluated outcomes.
	Results engine.Result
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Source nodes (no inputs) are rendered with a light blue fill and sink
// nodes (no outputs) with a light yellow fill. Failed nodes are rendered
// with a red outline when Results are provided.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(g, n, opts)
		attrs := fmtAttrs(g, n, label, opts)
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		for _, child := range g.Children(n.ID) {
			fmt.Fprintf(&buf, "  %d -> %d;\n", n.ID, child)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(g *graph.Graph, n *graph.Node, opts Options) string {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node %d", n.ID)
	}
	if !opts.Detailed {
		return name
	}

	parts := []string{fmt.Sprintf("value: %s", strconv.FormatFloat(n.Value, 'g', -1, 64))}
	if n.Precision > 0 {
		parts = append(parts, fmt.Sprintf("precision: %d", n.Precision))
	}
	if opts.Results != nil {
		if out, ok := opts.Results[n.ID]; ok {
			if out.Failed() {
				parts = append(parts, "result: error")
			} else {
				parts = append(parts, fmt.Sprintf("result: %s", strconv.FormatFloat(out.Value, 'g', -1, 64)))
			}
		}
	}

	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(g *graph.Graph, n *graph.Node, label string, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}

	switch {
	case g.InDegree(n.ID) == 0 && g.OutDegree(n.ID) == 0:
		// isolated node, default style
	case g.InDegree(n.ID) == 0:
		attrs = append(attrs, "fillcolor=lightblue")
	case g.OutDegree(n.ID) == 0:
		attrs = append(attrs, "fillcolor=lightyellow")
	}

	if opts.Results != nil {
		if out, ok := opts.Results[n.ID]; ok && out.Failed() {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
	}

	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
