package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/geoexpr/pkg/cache"
	"github.com/matzehuels/geoexpr/pkg/deserializer"
	"github.com/matzehuels/geoexpr/pkg/errors"
	"github.com/matzehuels/geoexpr/pkg/expr"
	"github.com/matzehuels/geoexpr/pkg/observability"
	"github.com/matzehuels/geoexpr/pkg/serializer"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeExpression = "expression"
	keyTypeOptimized  = "optimized"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind cache lifetimes when non-zero.
	TTL time.Duration
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

// Run decodes opts.Input, encodes it in opts.Format and caches the output.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if len(opts.Input) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input is empty")
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(opts.Input),
	}
	logger := r.logger(opts).With("run", result.RunID)
	key := r.Keyer.ExpressionKey(result.InputHash, opts.ExpressionKeyOpts())

	if data, ok := r.lookup(ctx, key, keyTypeExpression, opts.Refresh); ok {
		result.Output = data
		result.CacheInfo.Hit = true
		logger.Info("encoded expression", "format", opts.Format, "cached", true)
		return result, nil
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	root, err := deserializer.FromJSON(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Stats.DecodeTime = time.Since(decodeStart)
	logger.Debug("decoded input", "bytes", len(opts.Input), "duration", result.Stats.DecodeTime)

	// Stage 2: Encode
	hooks := opts.encodeHooks()
	hooks.OnEncodeStart(ctx, opts.Format)
	encodeStart := time.Now()
	out, rep, err := opts.Serializer().Render(root, serializer.Format(opts.Format))
	result.Stats.EncodeTime = time.Since(encodeStart)
	hooks.OnEncodeComplete(ctx, opts.Format, rep.Entries, result.Stats.EncodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if opts.IsModern() {
		hooks.OnOptimizeComplete(ctx, rep.Built, rep.Entries, rep.Optimize)
		logger.Debug("optimized expression", "before", rep.Built, "after", rep.Entries, "duration", rep.Optimize)
	}
	result.Output = out
	result.Stats.Entries = rep.Entries

	logger.Info("encoded expression",
		"format", opts.Format,
		"entries", rep.Entries,
		"duration", result.Stats.EncodeTime,
		"cached", false)

	r.store(ctx, key, keyTypeExpression, out, cache.TTLExpression, logger)
	return result, nil
}

// Optimize re-optimizes a reference-table document. opts.Format selects
// between the compact table (modern) and the expanded tree
// (modern-readable); the legacy formats are rejected.
func (r *Runner) Optimize(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if !opts.IsModern() {
		return nil, errors.New(errors.ErrCodeUnsupported, "cannot optimize into format %q", opts.Format)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(data),
	}
	logger := r.logger(opts).With("run", result.RunID)
	keyOpts := opts.OptimizeKeyOpts()
	key := r.Keyer.OptimizeKey(result.InputHash, keyOpts) + ":" + opts.Format

	if cached, ok := r.lookup(ctx, key, keyTypeOptimized, opts.Refresh); ok {
		result.Output = cached
		result.CacheInfo.Hit = true
		logger.Info("optimized expression", "cached", true)
		return result, nil
	}

	decodeStart := time.Now()
	var in expr.Expression
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := expr.Validate(in); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	result.Stats.DecodeTime = time.Since(decodeStart)

	s := opts.Serializer()
	format := serializer.Format(opts.Format)
	start := time.Now()
	out, err := s.Optimize(in, format)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	elapsed := time.Since(start)
	opts.encodeHooks().OnOptimizeComplete(ctx, len(in.Values), len(out.Values), elapsed)

	if result.Output, err = s.RenderExpression(out, format); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.Entries = len(out.Values)
	result.Stats.EncodeTime = elapsed

	logger.Info("optimized expression",
		"before", len(in.Values),
		"after", len(out.Values),
		"duration", elapsed,
		"cached", false)

	r.store(ctx, key, keyTypeOptimized, result.Output, cache.TTLOptimized, logger)
	return result, nil
}

// logger returns the per-run logger override or the runner's own.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// lookup reads key from the cache unless refresh is set.
func (r *Runner) lookup(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes data to the cache. Failures are logged, not returned: the
// run itself succeeded.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration, logger *log.Logger) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
