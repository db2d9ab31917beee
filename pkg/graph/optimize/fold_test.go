package optimize

import (
	"math"
	"testing"

	"github.com/numflow/numflow/pkg/engine"
	"github.com/numflow/numflow/pkg/graph"
)

func TestFoldConstants_ChainCollapsesToSources(t *testing.T) {
	g := graph.New()
	a := g.CreateNode("a", 1.0)
	b := g.CreateNode("b", 2.0)
	c := g.CreateNode("c", 4.0)
	mustConnect(t, g, a, b)
	mustConnect(t, g, b, c)

	work := g.Clone()
	folded := FoldConstants(work)

	if folded != 2 {
		t.Errorf("FoldConstants() = %d, want 2", folded)
	}
	if work.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d after folding, want 0", work.EdgeCount())
	}
	nb, _ := work.Node(b)
	if nb.Value != 3.0 {
		t.Errorf("folded value of b = %v, want 3.0", nb.Value)
	}
	nc, _ := work.Node(c)
	if nc.Value != 7.0 {
		t.Errorf("folded value of c = %v, want 7.0", nc.Value)
	}
}

func TestFoldConstants_StopsAtNonConstantPredecessor(t *testing.T) {
	// bad holds NaN: it is never constant, so its successor cannot fold.
	g := graph.New()
	bad := g.CreateNode("bad", math.NaN())
	mid := g.CreateNode("mid", 1.0)
	mustConnect(t, g, bad, mid)

	work := g.Clone()
	folded := FoldConstants(work)

	if folded != 0 {
		t.Errorf("FoldConstants() = %d, want 0", folded)
	}
	if work.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1 (edge must survive)", work.EdgeCount())
	}
}

func TestFoldConstants_AppliesPrecisionWhileFolding(t *testing.T) {
	g := graph.New()
	a := g.CreateNode("a", 0.0625)
	b := g.CreateNode("b", 0.0)
	mustConnect(t, g, a, b)
	if err := g.SetPrecision(a, 2); err != nil {
		t.Fatal(err)
	}
	if err := g.SetPrecision(b, 1); err != nil {
		t.Fatal(err)
	}

	work := g.Clone()
	FoldConstants(work)

	nb, _ := work.Node(b)
	if nb.Value != 0.1 {
		t.Errorf("folded value of b = %v, want 0.1 (sum of rounded finals)", nb.Value)
	}
}

func TestFoldConstants_PreservesResults(t *testing.T) {
	// Two sources feeding one aggregator feeding one sink: folding must not
	// change any reported value.
	g := graph.New()
	s1 := g.CreateNode("s1", 5.0)
	s2 := g.CreateNode("s2", 3.0)
	agg := g.CreateNode("agg", 0.5)
	sink := g.CreateNode("sink", 1.0)
	mustConnect(t, g, s1, agg)
	mustConnect(t, g, s2, agg)
	mustConnect(t, g, agg, sink)
	for _, id := range []graph.NodeID{s1, s2, agg, sink} {
		if err := g.SetPrecision(id, 4); err != nil {
			t.Fatal(err)
		}
	}

	plain := engine.Run(g)

	work := g.Clone()
	FoldConstants(work)
	optimized := engine.Run(work)

	if len(plain) != len(optimized) {
		t.Fatalf("result sizes differ: %d vs %d", len(plain), len(optimized))
	}
	for id, want := range plain {
		got := optimized[id]
		if got.Failed() != want.Failed() || got.Value != want.Value {
			t.Errorf("node %d: optimized = %+v, want %+v", id, got, want)
		}
	}
}

func mustConnect(t *testing.T, g *graph.Graph, from, to graph.NodeID) {
	t.Helper()
	if err := g.Connect(from, to); err != nil {
		t.Fatalf("Connect(%d, %d) error = %v", from, to, err)
	}
}
