package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend get separate namespaces.
//
// Example usage:
//
//	// Keys for one CI project sharing a Redis instance
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:geo-pipelines:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ExpressionKey generates a prefixed key for encoded output.
func (k *ScopedKeyer) ExpressionKey(inputHash string, opts ExpressionKeyOpts) string {
	return k.prefix + k.inner.ExpressionKey(inputHash, opts)
}

// OptimizeKey generates a prefixed key for re-optimized expressions.
func (k *ScopedKeyer) OptimizeKey(exprHash string, opts OptimizeKeyOpts) string {
	return k.prefix + k.inner.OptimizeKey(exprHash, opts)
}
