package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/numflow/numflow/pkg/engine"
	"github.com/numflow/numflow/pkg/errors"
	"github.com/numflow/numflow/pkg/graph"
	"github.com/numflow/numflow/pkg/graphio"
	"github.com/numflow/numflow/pkg/pipeline"
)

// =============================================================================
// Request / Response DTOs
// =============================================================================

type createNodeRequest struct {
	Name      string  `json:"name" validate:"max=256"`
	Value     float64 `json:"value"`
	Precision int     `json:"precision" validate:"gte=0"`
}

type connectRequest struct {
	From *int `json:"from" validate:"required"`
	To   *int `json:"to" validate:"required"`
}

type precisionRequest struct {
	Digits int `json:"digits" validate:"gte=0"`
}

type valueRequest struct {
	Value float64 `json:"value"`
}

type optimizationRequest struct {
	FoldConstants bool `json:"fold_constants"`
	EliminateDead bool `json:"eliminate_dead_nodes"`
}

type executeRequest struct {
	Refresh bool `json:"refresh"`
}

type executeResponse struct {
	OK        bool          `json:"ok"`
	GraphHash string        `json:"graph_hash"`
	Cached    bool          `json:"cached"`
	Results   engine.Result `json:"results"`
	Stats     executeStats  `json:"stats"`
}

type executeStats struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Failed  int `json:"failed"`
	Folded  int `json:"folded"`
	Removed int `json:"removed"`
}

// decode parses and validates a JSON request body.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body")
	}
	if err := s.validate.Struct(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	return nil
}

// session resolves the session from the URL, or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	id := chi.URLParam(r, "id")
	sess := s.sessions.Get(id)
	if sess == nil {
		writeError(w, errors.New(errors.ErrCodeGraphNotFound, "graph not found: %s", id))
		return nil
	}
	return sess
}

func nodeID(r *http.Request) (graph.NodeID, error) {
	raw := chi.URLParam(r, "nodeID")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid node id: %s", raw)
	}
	return graph.NodeID(n), nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"sessions": s.sessions.Len(),
	})
}

// handleCreateGraph creates a session, optionally seeded from a serialized
// graph in the request body. An empty body creates an empty graph.
func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	var g *graph.Graph
	if len(body) > 0 {
		g, err = graphio.UnmarshalGraph(body)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	sess := s.sessions.Create(g)
	s.logger.Info("created graph session", "id", sess.ID)

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok": true,
		"id": sess.ID,
	})
}

func (s *Server) handleExportGraph(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var data []byte
	var err error
	sess.WithGraph(func(g *graph.Graph) {
		data, err = graphio.MarshalGraph(g)
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.sessions.Delete(sess.ID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req createNodeRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var id graph.NodeID
	sess.WithGraph(func(g *graph.Graph) {
		id = g.CreateNode(req.Name, req.Value)
		if req.Precision > 0 {
			_ = g.SetPrecision(id, req.Precision)
		}
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok": true,
		"id": id,
	})
}

func (s *Server) handleSetPrecision(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	id, err := nodeID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req precisionRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var opErr error
	sess.WithGraph(func(g *graph.Graph) {
		opErr = g.SetPrecision(id, req.Digits)
	})
	if opErr != nil {
		writeError(w, errors.Wrap(errors.ErrCodeUnknownNode, opErr, "node %d", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	id, err := nodeID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req valueRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	found := false
	sess.WithGraph(func(g *graph.Graph) {
		if g.Has(id) {
			g.SetValue(id, req.Value)
			found = true
		}
	})
	if !found {
		writeError(w, errors.New(errors.ErrCodeUnknownNode, "node %d", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req connectRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var opErr error
	sess.WithGraph(func(g *graph.Graph) {
		opErr = g.Connect(graph.NodeID(*req.From), graph.NodeID(*req.To))
	})

	switch {
	case opErr == nil:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case stderrors.Is(opErr, graph.ErrUnknownNode):
		writeError(w, errors.Wrap(errors.ErrCodeUnknownNode, opErr, "edge %d -> %d", *req.From, *req.To))
	case stderrors.Is(opErr, graph.ErrWouldCycle):
		writeError(w, errors.Wrap(errors.ErrCodeCycleRejected, opErr, "edge %d -> %d", *req.From, *req.To))
	default:
		writeError(w, errors.Wrap(errors.ErrCodeInternal, opErr, "connect"))
	}
}

func (s *Server) handleSetOptimization(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req optimizationRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess.SetOptimization(req.FoldConstants, req.EliminateDead)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleExecute evaluates the session graph. Node-level failures are data,
// not errors: the response is always 200 with per-node outcomes.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req executeRequest
	if r.ContentLength > 0 {
		if err := s.decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	var work *graph.Graph
	sess.WithGraph(func(g *graph.Graph) {
		work = g.Clone()
	})
	fold, dce := sess.Optimization()

	result, err := s.sessionRunner(sess).Execute(r.Context(), work, pipeline.Options{
		FoldConstants: fold,
		EliminateDead: dce,
		Refresh:       req.Refresh,
		Logger:        s.logger,
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "execute"))
		return
	}

	writeJSON(w, http.StatusOK, executeResponse{
		OK:        true,
		GraphHash: result.GraphHash,
		Cached:    result.CacheInfo.ResultHit,
		Results:   result.Outcomes,
		Stats: executeStats{
			Nodes:   result.Stats.NodeCount,
			Edges:   result.Stats.EdgeCount,
			Failed:  result.Stats.FailedCount,
			Folded:  result.Report.Folded,
			Removed: result.Report.Removed,
		},
	})
}

var renderContentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	var work *graph.Graph
	sess.WithGraph(func(g *graph.Graph) {
		work = g.Clone()
	})
	fold, dce := sess.Optimization()

	result, err := s.sessionRunner(sess).Execute(r.Context(), work, pipeline.Options{
		FoldConstants: fold,
		EliminateDead: dce,
		Formats:       []string{format},
		Detailed:      true,
		Logger:        s.logger,
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render"))
		return
	}

	w.Header().Set("Content-Type", renderContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}
