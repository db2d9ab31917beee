package optimize

import "github.com/numflow/numflow/pkg/graph"

// Options selects which optimization passes run. The zero value disables
// optimization entirely.
type Options struct {
	// FoldConstants pre-sums chains of constant-valued nodes.
	FoldConstants bool `json:"fold_constants"`

	// EliminateDead removes nodes that cannot influence any sink.
	EliminateDead bool `json:"eliminate_dead_nodes"`
}

// Enabled reports whether any pass is turned on.
func (o Options) Enabled() bool { return o.FoldConstants || o.EliminateDead }

// Report summarizes what the enabled passes did to the working copy.
type Report struct {
	// Folded is the number of non-source nodes replaced by constants.
	Folded int

	// Removed is the number of dead nodes dropped from evaluation.
	Removed int
}

// Apply runs the enabled passes on g in fold-then-eliminate order and returns
// a report. g must be a working copy: the passes mutate it in place.
func Apply(g *graph.Graph, opts Options) Report {
	var r Report
	if opts.FoldConstants {
		r.Folded = FoldConstants(g)
	}
	if opts.EliminateDead {
		r.Removed = EliminateDead(g)
	}
	return r
}
