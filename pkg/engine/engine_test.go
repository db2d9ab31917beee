package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numflow/numflow/pkg/graph"
)

func TestRun_TwoInputsOneOutput(t *testing.T) {
	g := graph.New()
	n1 := g.CreateNode("input1", 5.0)
	n2 := g.CreateNode("input2", 3.0)
	n3 := g.CreateNode("output", 0.0)
	require.NoError(t, g.Connect(n1, n3))
	require.NoError(t, g.Connect(n2, n3))
	for _, id := range []graph.NodeID{n1, n2, n3} {
		require.NoError(t, g.SetPrecision(id, 4))
	}

	res := Run(g)

	require.Len(t, res, 3)
	assert.Equal(t, 5.0, res[n1].Value)
	assert.Equal(t, 3.0, res[n2].Value)
	assert.Equal(t, 8.0, res[n3].Value)
	for id, o := range res {
		assert.False(t, o.Failed(), "node %d unexpectedly failed", id)
	}
}

func TestRun_ChainAccumulatesRunningSums(t *testing.T) {
	g := graph.New()
	values := []float64{0.0, 2.5, 5.0, 7.5, 10.0}
	ids := make([]graph.NodeID, len(values))
	for i, v := range values {
		ids[i] = g.CreateNode("node", v)
		require.NoError(t, g.SetPrecision(ids[i], i+2))
	}
	for i := 0; i < len(ids)-1; i++ {
		require.NoError(t, g.Connect(ids[i], ids[i+1]))
	}

	res := Run(g)

	running := 0.0
	for i, id := range ids {
		running += values[i]
		require.False(t, res[id].Failed())
		assert.Equal(t, running, res[id].Value, "node %d", i)
	}
}

func TestRun_SourceEvaluatesToInitialValue(t *testing.T) {
	g := graph.New()
	id := g.CreateNode("lonely", 42.5)

	res := Run(g)

	require.Len(t, res, 1)
	assert.Equal(t, 42.5, res[id].Value)
}

func TestRun_AppliesPrecisionPerNode(t *testing.T) {
	g := graph.New()
	a := g.CreateNode("a", 0.0625) // exactly representable
	b := g.CreateNode("b", 0.0)
	require.NoError(t, g.Connect(a, b))
	require.NoError(t, g.SetPrecision(a, 2)) // 0.0625 → 0.06
	require.NoError(t, g.SetPrecision(b, 1)) // 0.06 → 0.1

	res := Run(g)

	assert.Equal(t, 0.06, res[a].Value)
	// Downstream consumes the rounded final value, not the raw one.
	assert.Equal(t, 0.1, res[b].Value)
}

func TestRun_IsDeterministic(t *testing.T) {
	g := graph.New()
	var ids []graph.NodeID
	for i := 0; i < 8; i++ {
		ids = append(ids, g.CreateNode("n", float64(i)*1.7))
	}
	// Diamond fan-in plus an independent chain.
	require.NoError(t, g.Connect(ids[0], ids[2]))
	require.NoError(t, g.Connect(ids[1], ids[2]))
	require.NoError(t, g.Connect(ids[2], ids[3]))
	require.NoError(t, g.Connect(ids[4], ids[5]))
	require.NoError(t, g.Connect(ids[5], ids[6]))
	for _, id := range ids {
		require.NoError(t, g.SetPrecision(id, 6))
	}

	first := Run(g)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Run(g), "run %d differed", i)
	}
}

func TestRun_NonFiniteValueFailsAtItself(t *testing.T) {
	g := graph.New()
	bad := g.CreateNode("bad", math.NaN())

	res := Run(g)

	require.True(t, res[bad].Failed())
	assert.Equal(t, bad, res[bad].Err.Source)
}

func TestRun_FailurePropagatesWithOriginatingSource(t *testing.T) {
	g := graph.New()
	bad := g.CreateNode("bad", math.Inf(1))
	mid := g.CreateNode("mid", 1.0)
	far := g.CreateNode("far", 2.0)
	ok := g.CreateNode("independent", 3.0)
	require.NoError(t, g.Connect(bad, mid))
	require.NoError(t, g.Connect(mid, far))

	res := Run(g)

	require.True(t, res[bad].Failed())
	require.True(t, res[mid].Failed())
	require.True(t, res[far].Failed())
	assert.Equal(t, bad, res[mid].Err.Source, "propagated source must be the origin")
	assert.Equal(t, bad, res[far].Err.Source, "transitive source must be the origin")

	// Independent nodes are unaffected by failures elsewhere.
	require.False(t, res[ok].Failed())
	assert.Equal(t, 3.0, res[ok].Value)
}

func TestRun_FirstFailingPredecessorInAdjacencyOrder(t *testing.T) {
	g := graph.New()
	bad1 := g.CreateNode("bad1", math.NaN())
	bad2 := g.CreateNode("bad2", math.NaN())
	sink := g.CreateNode("sink", 0.0)
	// bad2 connected first: it is the first failing predecessor in
	// adjacency order even though bad1 has the smaller ID.
	require.NoError(t, g.Connect(bad2, sink))
	require.NoError(t, g.Connect(bad1, sink))

	res := Run(g)

	require.True(t, res[sink].Failed())
	assert.Equal(t, bad2, res[sink].Err.Source)
}

func TestRun_HugeFiniteValueStaysFiniteUnderRounding(t *testing.T) {
	g := graph.New()
	a := g.CreateNode("huge", 1e308)
	b := g.CreateNode("sink", 0.0)
	require.NoError(t, g.Connect(a, b))
	require.NoError(t, g.SetPrecision(a, 2))

	res := Run(g)

	// A finite raw value must never surface as a non-finite success:
	// rounding at a precision whose scale factor overflows is the identity.
	require.False(t, res[a].Failed())
	assert.Equal(t, 1e308, res[a].Value)
	require.False(t, res[b].Failed())
	assert.False(t, math.IsInf(res[b].Value, 0) || math.IsNaN(res[b].Value))
}

func TestTopoOrder_BreaksTiesByID(t *testing.T) {
	g := graph.New()
	// Three disconnected sources: order must be ascending IDs.
	c := []graph.NodeID{
		g.CreateNode("x", 1),
		g.CreateNode("y", 2),
		g.CreateNode("z", 3),
	}

	order := TopoOrder(g)

	require.Equal(t, c, order)
}

func TestTopoOrder_RespectsDependencies(t *testing.T) {
	g := graph.New()
	a := g.CreateNode("a", 0)
	b := g.CreateNode("b", 0)
	cc := g.CreateNode("c", 0)
	require.NoError(t, g.Connect(cc, a)) // later-created node feeds earlier one
	require.NoError(t, g.Connect(a, b))

	order := TopoOrder(g)

	pos := make(map[graph.NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[cc], pos[a])
	assert.Less(t, pos[a], pos[b])
}

func TestOutcome_JSONRoundTrip(t *testing.T) {
	success := Outcome{Value: 8.25}
	data, err := success.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `8.25`, string(data))

	failure := Outcome{Err: &NodeError{Source: 3, Msg: "computation produced a non-finite value"}}
	data, err = failure.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"computation produced a non-finite value","source":3}`, string(data))

	var back Outcome
	require.NoError(t, back.UnmarshalJSON(data))
	require.True(t, back.Failed())
	assert.Equal(t, failure.Err.Source, back.Err.Source)
}
