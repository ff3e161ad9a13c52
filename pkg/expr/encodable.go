package expr

// LegacyResolver encodes a child of the node being encoded and returns what
// the parent should embed in its own legacy body: a [ValueRef] to the
// child's scope entry, or the child's body itself for literals, dates and
// argument references.
type LegacyResolver func(child any) (Legacy, error)

// ModernResolver encodes a child of the node being encoded and returns a
// reference to the child's table entry. Every child, literals included, gets
// an entry.
type ModernResolver func(child any) (Reference, error)

// Encodable is implemented by expression-tree producers.
//
// Both methods must be pure: they call resolve exactly once per distinct
// child, embed the results in the returned body, and never cache results
// across calls. The engine owns deduplication.
//
// A child may be another Encodable or a raw literal: nil, bool, any integer
// or float kind, string, []byte, time.Time, []any or map[string]any.
type Encodable interface {
	EncodeLegacy(resolve LegacyResolver) (Legacy, error)
	EncodeModern(resolve ModernResolver) (Value, error)
}
