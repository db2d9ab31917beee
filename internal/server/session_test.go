package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/numflow/numflow/pkg/graph"
)

func TestSessionStore(t *testing.T) {
	st := NewSessionStore()

	sess := st.Create(nil)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, st.Len())
	assert.Same(t, sess, st.Get(sess.ID))

	// Created with a nil graph means an empty graph, not a nil one
	sess.WithGraph(func(g *graph.Graph) {
		assert.Equal(t, 0, g.NodeCount())
	})

	st.Delete(sess.ID)
	assert.Nil(t, st.Get(sess.ID))
	assert.Equal(t, 0, st.Len())

	// Deleting again is a no-op
	st.Delete(sess.ID)
}

func TestSessionStoreCleanup(t *testing.T) {
	st := NewSessionStore()

	stale := st.Create(nil)
	stale.mu.Lock()
	stale.touchedAt = time.Now().Add(-2 * SessionTTL)
	stale.mu.Unlock()

	fresh := st.Create(nil)

	removed := st.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Nil(t, st.Get(stale.ID))
	assert.NotNil(t, st.Get(fresh.ID))
}

func TestSessionOptimizationFlags(t *testing.T) {
	st := NewSessionStore()
	sess := st.Create(nil)

	fold, dce := sess.Optimization()
	assert.False(t, fold)
	assert.False(t, dce)

	sess.SetOptimization(true, true)
	fold, dce = sess.Optimization()
	assert.True(t, fold)
	assert.True(t, dce)
}
