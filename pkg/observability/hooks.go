// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about encoding runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The encoding engine itself never calls hooks; only the pipeline does, so
// the engine stays free of side effects.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEncodeHooks(&myEncodeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// The pipeline calls hooks to emit events:
//
//	observability.Encode().OnEncodeStart(ctx, format)
//	// ... encode ...
//	observability.Encode().OnEncodeComplete(ctx, format, entries, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Encode Hooks
// =============================================================================

// EncodeHooks receives events from the encoding pipeline.
type EncodeHooks interface {
	// OnEncodeStart is called before an input document is encoded.
	OnEncodeStart(ctx context.Context, format string)

	// OnEncodeComplete is called after encoding. entries is the number of
	// scope or table entries in the output.
	OnEncodeComplete(ctx context.Context, format string, entries int, duration time.Duration, err error)

	// OnOptimizeComplete is called after a reference table is optimized,
	// with the entry counts before and after.
	OnOptimizeComplete(ctx context.Context, before, after int, duration time.Duration)
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

// NoopEncodeHooks is a no-op implementation of EncodeHooks.
type NoopEncodeHooks struct{}

func (NoopEncodeHooks) OnEncodeStart(context.Context, string)                             {}
func (NoopEncodeHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {}
func (NoopEncodeHooks) OnOptimizeComplete(context.Context, int, int, time.Duration)        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	encodeHooks EncodeHooks = NoopEncodeHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetEncodeHooks registers custom encode hooks.
// This should be called once at application startup before any encoding.
func SetEncodeHooks(h EncodeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		encodeHooks = h
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

// Encode returns the registered encode hooks.
func Encode() EncodeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return encodeHooks
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
	encodeHooks = NoopEncodeHooks{}
	cacheHooks = NoopCacheHooks{}
}
