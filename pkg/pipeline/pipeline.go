// Package pipeline provides the encode pipeline shared by the CLI and any
// service embedding geoexpr.
//
// A run decodes a compound-value document into a producer tree, encodes it
// into the requested output format and caches the resulting bytes. Caching
// is keyed on a hash of the input and every option that shapes the output,
// so a hit is byte-identical to a fresh run.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    Input:  data,
//	    Format: pipeline.FormatModern,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Output)
//
// Re-optimize an existing reference-table document:
//
//	result, err := runner.Optimize(ctx, data, pipeline.Options{DepthLimit: 10})
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoexpr/pkg/cache"
	"github.com/matzehuels/geoexpr/pkg/config"
	"github.com/matzehuels/geoexpr/pkg/expr/optimize"
	"github.com/matzehuels/geoexpr/pkg/observability"
	"github.com/matzehuels/geoexpr/pkg/serializer"
)

// =============================================================================
// Default Values
// =============================================================================

// Format constants for output formats.
const (
	FormatCompact        = config.FormatCompact
	FormatReadable       = config.FormatReadable
	FormatModern         = config.FormatModern
	FormatModernReadable = config.FormatModernReadable
)

// DefaultFormat is the output format used when none is given.
const DefaultFormat = FormatModern

// DefaultIndent is the indent of the readable formats.
const DefaultIndent = serializer.DefaultIndent

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input is the compound-value document to encode.
	Input []byte `json:"input,omitempty"`

	// Format selects the output; see the Format constants.
	Format string `json:"format,omitempty"`

	// Indent is used by the readable formats.
	Indent string `json:"indent,omitempty"`

	// DepthLimit bounds inlining. Zero selects optimize.DefaultDepthLimit,
	// a negative value disables the bound.
	DepthLimit int `json:"depth_limit,omitempty"`

	// Expand turns off reference counting so every value is inlined.
	Expand bool `json:"expand,omitempty"`

	// Refresh bypasses cache reads. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	// Hooks overrides the registered encode hooks for this run.
	Hooks observability.EncodeHooks `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in log output.
	RunID string

	// InputHash is the content hash of the input document.
	InputHash string

	// Output is the encoded text.
	Output []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo reports whether the output came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	// Entries is the number of scope or table entries in the output.
	Entries    int
	DecodeTime time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache use.
type CacheInfo struct {
	Hit bool
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !config.ValidFormat(format) {
		return fmt.Errorf("invalid format: %q (must be one of: %s, %s, %s, %s)",
			format, FormatCompact, FormatReadable, FormatModern, FormatModernReadable)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and checks the options.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.DepthLimit == 0 {
		o.DepthLimit = optimize.DefaultDepthLimit
	}
	o.validated = true
	return nil
}

// IsModern reports whether the format is a reference-table format.
func (o *Options) IsModern() bool {
	return serializer.Format(o.Format).Modern()
}

func (o *Options) encodeHooks() observability.EncodeHooks {
	if o.Hooks != nil {
		return o.Hooks
	}
	return observability.Encode()
}

// Serializer returns a serializer configured by o.
func (o *Options) Serializer() *serializer.Serializer {
	limit := o.DepthLimit
	if limit < 0 {
		limit = 0
	}
	return serializer.New(serializer.Options{
		DepthLimit:        limit,
		ReferenceCounting: !o.Expand,
		Indent:            o.Indent,
	})
}

// ExpressionKeyOpts returns cache key options for encoded output.
func (o *Options) ExpressionKeyOpts() cache.ExpressionKeyOpts {
	return cache.ExpressionKeyOpts{
		Format:            o.Format + "/" + o.Indent,
		DepthLimit:        o.DepthLimit,
		ReferenceCounting: !o.Expand,
	}
}

// OptimizeKeyOpts returns cache key options for re-optimization.
func (o *Options) OptimizeKeyOpts() cache.OptimizeKeyOpts {
	return cache.OptimizeKeyOpts{
		DepthLimit:        o.DepthLimit,
		ReferenceCounting: !o.Expand,
	}
}

// FromConfig returns options carrying the configured defaults.
func FromConfig(cfg config.Config) Options {
	limit := cfg.Optimizer.InlineDepthLimit
	if limit == 0 {
		limit = -1
	}
	return Options{
		Format:     cfg.Output.Format,
		Indent:     cfg.Output.Indent,
		DepthLimit: limit,
		Expand:     !cfg.Optimizer.ReferenceCounting,
	}
}

// =============================================================================
// Encoding
// =============================================================================

// Encode renders a producer tree in the format selected by opts and reports
// the number of entries in the output.
func Encode(root any, opts Options) ([]byte, int, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}
	out, rep, err := opts.Serializer().Render(root, serializer.Format(opts.Format))
	if err != nil {
		return nil, 0, err
	}
	return out, rep.Entries, nil
}
