package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/numflow/numflow/pkg/cache"
	"github.com/numflow/numflow/pkg/engine"
	"github.com/numflow/numflow/pkg/graph"
	"github.com/numflow/numflow/pkg/graph/optimize"
	"github.com/numflow/numflow/pkg/graphio"
	"github.com/numflow/numflow/pkg/observability"
	"github.com/numflow/numflow/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete optimize, execute, render pipeline with caching.
// The input graph is never modified; all work happens on a clone.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	result := &Result{}

	// Compute input graph hash for cache keys and API responses
	graphHash, err := graphio.GraphHash(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph: %w", err)
	}
	result.GraphHash = graphHash

	// Stage 1: Optimize
	optStart := time.Now()
	work := g.Clone()
	observability.Execution().OnOptimizeStart(ctx, work.NodeCount(), work.EdgeCount())
	result.Report = optimize.Apply(work, opts.OptimizeOptions())
	result.Stats.OptimizeTime = time.Since(optStart)
	observability.Execution().OnOptimizeComplete(ctx, result.Report.Folded, result.Report.Removed, result.Stats.OptimizeTime)

	result.Graph = work
	result.Stats.NodeCount = work.NodeCount()
	result.Stats.EdgeCount = work.EdgeCount()

	if result.Report.Folded > 0 || result.Report.Removed > 0 {
		logger.Info("optimized graph",
			"folded", result.Report.Folded,
			"removed", result.Report.Removed,
			"duration", result.Stats.OptimizeTime)
	}

	// Stage 2: Execute
	runStart := time.Now()
	outcomes, resultHit, err := r.runWithCacheInfo(ctx, graphHash, work, opts)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	result.Outcomes = outcomes
	result.Stats.RunTime = time.Since(runStart)
	result.CacheInfo.ResultHit = resultHit

	for _, out := range outcomes {
		if out.Failed() {
			result.Stats.FailedCount++
		}
	}

	logger.Info("executed graph",
		"nodes", result.Stats.NodeCount,
		"failed", result.Stats.FailedCount,
		"cached", resultHit,
		"duration", result.Stats.RunTime)

	// Stage 3: Render (optional)
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.renderWithCacheInfo(ctx, graphHash, work, outcomes, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Run is a convenience wrapper that executes without rendering and returns
// only the per-node outcomes.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, opts Options) (engine.Result, error) {
	opts.Formats = nil
	result, err := r.Execute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	return result.Outcomes, nil
}

// runWithCacheInfo evaluates the optimized graph, serving results from cache
// when the input graph and optimization flags match a previous run.
func (r *Runner) runWithCacheInfo(ctx context.Context, graphHash string, work *graph.Graph, opts Options) (engine.Result, bool, error) {
	cacheKey := r.Keyer.ResultKey(graphHash, cache.ResultKeyOpts{
		FoldConstants: opts.FoldConstants,
		EliminateDead: opts.EliminateDead,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if res, err := graphio.UnmarshalResult(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "result")
				return res, true, nil
			}
			// Corrupt entry, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "result")

	observability.Execution().OnRunStart(ctx, work.NodeCount(), work.EdgeCount())
	runStart := time.Now()
	res := engine.Run(work)
	failed := 0
	for _, out := range res {
		if out.Failed() {
			failed++
		}
	}
	observability.Execution().OnRunComplete(ctx, work.NodeCount(), failed, time.Since(runStart))

	// Cache the result
	if data, err := graphio.MarshalResult(res); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.ResultTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "result", len(data))
		}
	}

	return res, false, nil
}

// renderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) renderWithCacheInfo(ctx context.Context, graphHash string, work *graph.Graph, outcomes engine.Result, opts Options) (map[string][]byte, bool, error) {
	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(graphHash, r.renderKeyOpts(format, opts))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "render")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	// Render all formats
	rendered := make(map[string][]byte, len(opts.Formats))
	dot := render.ToDOT(work, render.Options{Detailed: opts.Detailed, Results: outcomes})

	for _, format := range opts.Formats {
		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(dot)
		case FormatPNG:
			data, err = render.RenderPNG(dot)
		case FormatJSON:
			data, err = graphio.MarshalGraph(work)
		}
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(graphHash, r.renderKeyOpts(format, opts))
		if r.Cache.Set(ctx, cacheKey, data, cache.RenderTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
	}

	return rendered, false, nil
}

func (r *Runner) renderKeyOpts(format string, opts Options) cache.RenderKeyOpts {
	// Optimization flags and detail level change the rendered output, so
	// they are folded into the format discriminator.
	return cache.RenderKeyOpts{
		Format: fmt.Sprintf("%s:fold=%t:dce=%t:detail=%t", format, opts.FoldConstants, opts.EliminateDead, opts.Detailed),
	}
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
