// Package config loads geoexpr settings from a TOML file.
//
// A missing file is not an error: every setting has a default, and the CLI
// overrides individual settings with flags.
//
//	[optimizer]
//	inline_depth_limit = 50
//	reference_counting = true
//
//	[output]
//	format = "modern"
//	indent = "  "
//
//	[cache]
//	enabled = true
//	dir = "~/.cache/geoexpr"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//	namespace = "project-a"
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/geoexpr/pkg/errors"
	"github.com/matzehuels/geoexpr/pkg/expr/optimize"
)

// FileName is the configuration file looked up by the CLI.
const FileName = "geoexpr.toml"

// Output formats.
const (
	FormatCompact        = "compact"
	FormatReadable       = "readable"
	FormatModern         = "modern"
	FormatModernReadable = "modern-readable"
)

// Formats lists every output format.
var Formats = []string{FormatCompact, FormatReadable, FormatModern, FormatModernReadable}

// Config holds all settings.
type Config struct {
	Optimizer Optimizer `toml:"optimizer"`
	Output    Output    `toml:"output"`
	Cache     Cache     `toml:"cache"`
}

// Optimizer configures expression optimization.
type Optimizer struct {
	InlineDepthLimit  int  `toml:"inline_depth_limit"`
	ReferenceCounting bool `toml:"reference_counting"`
}

// Output configures rendered text.
type Output struct {
	Format string `toml:"format"`
	Indent string `toml:"indent"`
}

// Cache configures output caching.
type Cache struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`

	// Namespace prefixes every key, so several projects can share one
	// Redis database.
	Namespace string `toml:"namespace"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid duration %q", text)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Optimizer: Optimizer{
			InlineDepthLimit:  optimize.DefaultDepthLimit,
			ReferenceCounting: true,
		},
		Output: Output{
			Format: FormatModern,
			Indent: "  ",
		},
		Cache: Cache{
			Enabled: true,
			TTL:     Duration(24 * time.Hour),
		},
	}
}

// Load reads the file at path on top of the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML data into cfg. Keys absent from data keep their
// current values; unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown setting %q", undecoded[0].String())
	}
	return nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.Optimizer.InlineDepthLimit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "optimizer.inline_depth_limit must not be negative")
	}
	if !ValidFormat(c.Output.Format) {
		return errors.New(errors.ErrCodeInvalidInput, "output.format %q is not one of %v", c.Output.Format, Formats)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return nil
}

// ValidFormat reports whether f names an output format.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
