// Package cache provides byte-level caching for encoded expressions.
//
// # Overview
//
// Encoding a large expression tree is deterministic: the same input document
// and the same options always yield the same output bytes. The pipeline
// exploits this by keying rendered output on a hash of the input and the
// options that shaped it.
//
// # Backends
//
//   - [FileCache]: one JSON envelope per key under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (services, CI runners)
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// # Keys
//
// Keys are built by a [Keyer]. [DefaultKeyer] hashes every option into the
// key; [ScopedKeyer] prefixes the keys of another keyer so several tenants
// can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default time-to-live values.
const (
	// TTLExpression is how long encoded output is kept.
	TTLExpression = 24 * time.Hour

	// TTLOptimized is how long re-optimized expressions are kept.
	TTLOptimized = 7 * 24 * time.Hour
)
