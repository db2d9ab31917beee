// Package pipeline provides the optimize and execute pipeline for NumFlow.
//
// This package implements the complete optimize, execute, render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Optimize: Apply constant folding and dead-node elimination to a
//     working copy of the graph
//  2. Execute: Evaluate the optimized graph in dependency order
//  3. Render: Generate output in various formats (DOT, SVG, PNG, JSON)
//
// The execute stage is cached by graph content hash plus optimization
// flags, so repeated runs of an unchanged graph are served from cache.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{FoldConstants: true}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for id, out := range result.Outcomes {
//	    ...
//	}
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/numflow/numflow/pkg/engine"
	"github.com/numflow/numflow/pkg/errors"
	"github.com/numflow/numflow/pkg/graph"
	"github.com/numflow/numflow/pkg/graph/optimize"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks a list of output formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Optimization options
	FoldConstants bool `json:"fold_constants,omitempty"`
	EliminateDead bool `json:"eliminate_dead_nodes,omitempty"`

	// Refresh bypasses the cache and recomputes results.
	Refresh bool `json:"refresh,omitempty"`

	// Render options. When empty, the render stage is skipped.
	Formats []string `json:"formats,omitempty"`

	// Detailed includes values and results in rendered node labels.
	Detailed bool `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// OptimizeOptions converts the pipeline options to optimizer options.
func (o Options) OptimizeOptions() optimize.Options {
	return optimize.Options{
		FoldConstants: o.FoldConstants,
		EliminateDead: o.EliminateDead,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the optimized working copy. The caller's graph is never
	// modified.
	Graph *graph.Graph

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Outcomes holds the per-node evaluation results.
	Outcomes engine.Result

	// Report describes what the optimizer changed.
	Report optimize.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	FailedCount  int
	OptimizeTime time.Duration
	RunTime      time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	// ResultHit indicates the execution results came from cache.
	ResultHit bool `json:"result_hit"`

	// RenderHit indicates all rendered artifacts came from cache.
	RenderHit bool `json:"render_hit"`
}
