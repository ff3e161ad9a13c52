package serializer

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	errs "github.com/matzehuels/geoexpr/pkg/errors"
	"github.com/matzehuels/geoexpr/pkg/expr"
	"github.com/matzehuels/geoexpr/pkg/expr/optimize"
)

// Format names a text rendering of an encoded tree.
type Format string

// Output formats.
const (
	FormatCompact        Format = "compact"
	FormatReadable       Format = "readable"
	FormatModern         Format = "modern"
	FormatModernReadable Format = "modern-readable"
)

// DefaultIndent is the indent of the readable formats.
const DefaultIndent = "  "

// Modern reports whether f is a reference-table format.
func (f Format) Modern() bool {
	return f == FormatModern || f == FormatModernReadable
}

// Report describes one [Serializer.Render] call.
type Report struct {
	// Entries is the number of scope or table entries in the output.
	Entries int

	// Built is the reference-table size before optimization and Optimize
	// the time spent optimizing. Both are zero for compound values.
	Built    int
	Optimize time.Duration
}

// Options configures a [Serializer].
type Options struct {
	// DepthLimit bounds how deeply single-use entries are inlined by the
	// optimizer. Zero or less disables the bound.
	DepthLimit int

	// ReferenceCounting keeps entries that are used more than once named.
	// When false every value reference is inlined.
	ReferenceCounting bool

	// Indent is used by the readable formats. Empty selects DefaultIndent.
	Indent string
}

// DefaultOptions returns the options used by the package-level functions.
func DefaultOptions() Options {
	return Options{
		DepthLimit:        optimize.DefaultDepthLimit,
		ReferenceCounting: true,
		Indent:            DefaultIndent,
	}
}

// Serializer encodes producer trees. A Serializer holds no per-call state
// and is safe for concurrent use.
type Serializer struct {
	opts Options
}

// New returns a Serializer with the given options.
func New(opts Options) *Serializer {
	return &Serializer{opts: opts}
}

var std = New(DefaultOptions())

// Options returns the serializer's options.
func (s *Serializer) Options() Options { return s.opts }

func (s *Serializer) optimizeOptions() []optimize.Option {
	opts := []optimize.Option{optimize.WithDepthLimit(s.opts.DepthLimit)}
	if !s.opts.ReferenceCounting {
		opts = append(opts, optimize.WithoutReferenceCounting())
	}
	return opts
}

func (s *Serializer) indent(f Format) string {
	if f == FormatCompact || f == FormatModern {
		return ""
	}
	if s.opts.Indent == "" {
		return DefaultIndent
	}
	return s.opts.Indent
}

// modernOptions adds the readable format's full inlining to the
// serializer's optimizer options.
func (s *Serializer) modernOptions(f Format) []optimize.Option {
	opts := s.optimizeOptions()
	if f == FormatModernReadable {
		opts = append(opts, optimize.WithoutReferenceCounting())
	}
	return opts
}

// Encode renders root in the compound-value vocabulary. With compound set,
// shared subtrees are deduplicated into a scope; otherwise the nested body
// is returned.
func (s *Serializer) Encode(root any, compound bool) (expr.Legacy, error) {
	return newLegacyBuilder(compound).build(root)
}

// EncodeModern builds the reference table of root and optimizes it. Extra
// options are applied after the serializer's own.
func (s *Serializer) EncodeModern(root any, opts ...optimize.Option) (expr.Expression, error) {
	result, table, err := BuildReferenceTable(root)
	if err != nil {
		return expr.Expression{}, err
	}
	return optimize.Optimize(result, table, append(s.optimizeOptions(), opts...)...)
}

// Render encodes root and writes it as JSON text in format f.
func (s *Serializer) Render(root any, f Format) ([]byte, Report, error) {
	switch f {
	case FormatCompact, FormatReadable:
		l, err := s.Encode(root, f == FormatCompact)
		if err != nil {
			return nil, Report{}, err
		}
		rep := Report{Entries: 1}
		if cv, ok := l.(expr.CompoundValue); ok {
			rep.Entries = len(cv.Scope)
		}
		out, err := Marshal(l.Wire(), s.indent(f))
		return out, rep, err

	case FormatModern, FormatModernReadable:
		result, table, err := BuildReferenceTable(root)
		if err != nil {
			return nil, Report{}, err
		}
		start := time.Now()
		e, err := optimize.Optimize(result, table, s.modernOptions(f)...)
		if err != nil {
			return nil, Report{}, err
		}
		rep := Report{Entries: len(e.Values), Built: len(table), Optimize: time.Since(start)}
		out, err := s.RenderExpression(e, f)
		return out, rep, err
	}
	return nil, Report{}, errs.New(errs.ErrCodeUnsupported, "unknown format %q", f)
}

// Optimize re-optimizes an existing expression for format f.
func (s *Serializer) Optimize(e expr.Expression, f Format) (expr.Expression, error) {
	return optimize.Expression(e, s.modernOptions(f)...)
}

// RenderExpression writes an optimized expression in a reference-table
// format. The readable format expands every remaining name in place.
func (s *Serializer) RenderExpression(e expr.Expression, f Format) ([]byte, error) {
	switch f {
	case FormatModern:
		return Marshal(e.Wire(), "")
	case FormatModernReadable:
		tree, err := Expand(e)
		if err != nil {
			return nil, err
		}
		return Marshal(tree, s.indent(f))
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "%q is not a reference-table format", f)
}

func (s *Serializer) text(root any, f Format) (string, error) {
	out, _, err := s.Render(root, f)
	return string(out), err
}

// ToCompactText is the JSON text of Encode(root, true) without whitespace.
func (s *Serializer) ToCompactText(root any) (string, error) {
	return s.text(root, FormatCompact)
}

// ToReadableText is the indented JSON text of Encode(root, false).
func (s *Serializer) ToReadableText(root any) (string, error) {
	return s.text(root, FormatReadable)
}

// ToModernText is the compact JSON text of EncodeModern(root).
func (s *Serializer) ToModernText(root any) (string, error) {
	return s.text(root, FormatModern)
}

// ToReadableModernText renders root as one nested tree: the expression is
// optimized without reference counting and every remaining name is expanded
// in place.
func (s *Serializer) ToReadableModernText(root any) (string, error) {
	return s.text(root, FormatModernReadable)
}

// BuildReferenceTable flattens root into an unoptimized reference table in
// which every entry refers only to entries listed before it.
func BuildReferenceTable(root any) (string, expr.Table, error) {
	return newModernBuilder().build(root)
}

// Encode is [Serializer.Encode] with default options.
func Encode(root any, compound bool) (expr.Legacy, error) { return std.Encode(root, compound) }

// ToCompactText is [Serializer.ToCompactText] with default options.
func ToCompactText(root any) (string, error) { return std.ToCompactText(root) }

// ToReadableText is [Serializer.ToReadableText] with default options.
func ToReadableText(root any) (string, error) { return std.ToReadableText(root) }

// EncodeModern is [Serializer.EncodeModern] with default options.
func EncodeModern(root any, opts ...optimize.Option) (expr.Expression, error) {
	return std.EncodeModern(root, opts...)
}

// ToModernText is [Serializer.ToModernText] with default options.
func ToModernText(root any) (string, error) { return std.ToModernText(root) }

// ToReadableModernText is [Serializer.ToReadableModernText] with default
// options.
func ToReadableModernText(root any) (string, error) { return std.ToReadableModernText(root) }

// Marshal renders a wire tree as JSON text. Object keys are sorted, HTML
// characters are not escaped, and a non-empty indent pretty-prints.
func Marshal(wire any, indent string) ([]byte, error) {
	text, err := marshal(wire, indent)
	return []byte(text), err
}

// marshal writes w as JSON with sorted keys and no HTML escaping.
func marshal(w any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(w); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
