// Package server exposes the dataflow engine over an HTTP API.
//
// Graphs are edited through sessions: a client creates a session (optionally
// seeded with a serialized graph), mutates it with node and edge operations,
// and executes it. Sessions are in-memory only; execution results are cached
// through the shared pipeline runner under a per-session key namespace, so
// one session never observes another session's cached results.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/numflow/numflow/pkg/cache"
	"github.com/numflow/numflow/pkg/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	sessions *SessionStore
	runner   *pipeline.Runner
	logger   *log.Logger
	validate *validator.Validate
	router   chi.Router
}

// New creates a server around a pipeline runner.
// If logger is nil, the default logger is used.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		sessions: NewSessionStore(),
		runner:   runner,
		logger:   logger,
		validate: validator.New(),
	}
	s.router = s.routes()
	return s
}

// sessionRunner returns a copy of the shared runner whose cache keys are
// namespaced to the session, so result and render entries are isolated
// between sessions.
func (s *Server) sessionRunner(sess *Session) *pipeline.Runner {
	r := *s.runner
	r.Keyer = cache.NewScopedKeyer(s.runner.Keyer, "session:"+sess.ID+":")
	return &r
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/graphs", func(r chi.Router) {
		r.Post("/", s.handleCreateGraph)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleExportGraph)
			r.Delete("/", s.handleDeleteGraph)
			r.Post("/nodes", s.handleCreateNode)
			r.Put("/nodes/{nodeID}/precision", s.handleSetPrecision)
			r.Put("/nodes/{nodeID}/value", s.handleSetValue)
			r.Post("/edges", s.handleConnect)
			r.Put("/optimization", s.handleSetOptimization)
			r.Post("/execute", s.handleExecute)
			r.Get("/render", s.handleRender)
		})
	})

	return r
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Idle session cleanup
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.sessions.Cleanup(); removed > 0 {
					s.logger.Debug("cleaned up idle sessions", "removed", removed)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
