// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph execution and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExecutionHooks(&myExecutionHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Execution().OnRunStart(ctx, nodeCount, edgeCount)
//	// ... evaluate graph ...
//	observability.Execution().OnRunComplete(ctx, nodeCount, failedCount, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Execution Hooks
// =============================================================================

// ExecutionHooks receives events from graph optimization and evaluation.
type ExecutionHooks interface {
	// Optimization events
	OnOptimizeStart(ctx context.Context, nodeCount, edgeCount int)
	OnOptimizeComplete(ctx context.Context, folded, removed int, duration time.Duration)

	// Evaluation events
	OnRunStart(ctx context.Context, nodeCount, edgeCount int)
	OnRunComplete(ctx context.Context, nodeCount, failedCount int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExecutionHooks is a no-op implementation of ExecutionHooks.
type NoopExecutionHooks struct{}

func (NoopExecutionHooks) OnOptimizeStart(context.Context, int, int)                   {}
func (NoopExecutionHooks) OnOptimizeComplete(context.Context, int, int, time.Duration) {}
func (NoopExecutionHooks) OnRunStart(context.Context, int, int)                        {}
func (NoopExecutionHooks) OnRunComplete(context.Context, int, int, time.Duration)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	executionHooks ExecutionHooks = NoopExecutionHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetExecutionHooks registers custom execution hooks.
// This should be called once at application startup before any graph runs.
func SetExecutionHooks(h ExecutionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		executionHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Execution returns the registered execution hooks.
func Execution() ExecutionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return executionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	executionHooks = NoopExecutionHooks{}
	cacheHooks = NoopCacheHooks{}
}
