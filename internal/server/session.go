package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/numflow/numflow/pkg/graph"
)

// Session holds one graph being edited over the API.
// Sessions live in memory only; restarting the server drops them.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu            sync.Mutex
	graph         *graph.Graph
	foldConstants bool
	eliminateDead bool
	touchedAt     time.Time
}

// WithGraph runs fn while holding the session lock.
// All graph access from handlers goes through here so that concurrent
// requests against the same session serialize cleanly.
func (s *Session) WithGraph(fn func(g *graph.Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = time.Now()
	fn(s.graph)
}

// SetOptimization updates the session's optimization flags.
func (s *Session) SetOptimization(fold, dce bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foldConstants = fold
	s.eliminateDead = dce
	s.touchedAt = time.Now()
}

// Optimization returns the session's optimization flags.
func (s *Session) Optimization() (fold, dce bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.foldConstants, s.eliminateDead
}

// SessionTTL is how long an idle session survives before cleanup.
const SessionTTL = 24 * time.Hour

// SessionStore is an in-memory session registry.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session around the given graph.
// If g is nil, an empty graph is created.
func (st *SessionStore) Create(g *graph.Graph) *Session {
	if g == nil {
		g = graph.New()
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		graph:     g,
		touchedAt: now,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
	return sess
}

// Get retrieves a session by ID. Returns nil if it doesn't exist.
func (st *SessionStore) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete removes a session. Deleting a missing session is a no-op.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup removes sessions idle for longer than SessionTTL.
func (st *SessionStore) Cleanup() int {
	cutoff := time.Now().Add(-SessionTTL)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		sess.mu.Lock()
		idle := sess.touchedAt.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
