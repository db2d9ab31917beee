// Package cache provides caching for graph executions and rendered artifacts.
//
// The package defines a backend-agnostic Cache interface with three
// implementations:
//   - FileCache: file-based cache for CLI usage
//   - RedisCache: Redis-backed cache for server deployments
//   - NullCache: no-op cache for tests and disabled caching
//
// Cache keys are produced by a Keyer so that callers never build key strings
// by hand. The DefaultKeyer derives keys from a content hash of the graph plus
// the options that influence the cached value, which makes entries immutable:
// a changed graph or changed options always produces a fresh key.
package cache

import (
	"context"
	"time"
)

// TTLs for different entry kinds. Execution results are derived purely from
// graph content, so they never go stale and get a long TTL. Rendered
// artifacts are larger and cheaper to recompute.
const (
	ResultTTL = 30 * 24 * time.Hour
	RenderTTL = 7 * 24 * time.Hour
)

// Cache is a generic byte-oriented cache.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A TTL of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ResultKeyOpts holds the options that influence an execution result.
type ResultKeyOpts struct {
	FoldConstants bool `json:"fold_constants"`
	EliminateDead bool `json:"eliminate_dead_nodes"`
}

// RenderKeyOpts holds the options that influence a rendered artifact.
type RenderKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys for the different entry kinds.
type Keyer interface {
	// GraphKey generates a key for a serialized graph, addressed by its
	// content hash.
	GraphKey(graphHash string) string

	// ResultKey generates a key for an execution result.
	ResultKey(graphHash string, opts ResultKeyOpts) string

	// RenderKey generates a key for a rendered artifact.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a serialized graph.
func (k *DefaultKeyer) GraphKey(graphHash string) string {
	return "graph:" + graphHash
}

// ResultKey generates a key for an execution result.
func (k *DefaultKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	return hashKey("result", graphHash, opts)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}
