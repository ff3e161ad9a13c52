package cache

// Keyer builds cache keys.
type Keyer interface {
	// ExpressionKey is the key of the output produced from an input
	// document with the given hash.
	ExpressionKey(inputHash string, opts ExpressionKeyOpts) string

	// OptimizeKey is the key of a re-optimized expression document.
	OptimizeKey(exprHash string, opts OptimizeKeyOpts) string
}

// ExpressionKeyOpts are the options that change encoded output.
type ExpressionKeyOpts struct {
	Format            string `json:"format"`
	DepthLimit        int    `json:"depth_limit"`
	ReferenceCounting bool   `json:"reference_counting"`
}

// OptimizeKeyOpts are the options that change a re-optimized expression.
type OptimizeKeyOpts struct {
	DepthLimit        int  `json:"depth_limit"`
	ReferenceCounting bool `json:"reference_counting"`
}

// DefaultKeyer hashes the input hash and every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ExpressionKey implements [Keyer].
func (DefaultKeyer) ExpressionKey(inputHash string, opts ExpressionKeyOpts) string {
	return hashKey("expr", inputHash, opts)
}

// OptimizeKey implements [Keyer].
func (DefaultKeyer) OptimizeKey(exprHash string, opts OptimizeKeyOpts) string {
	return hashKey("opt", exprHash, opts)
}

var _ Keyer = DefaultKeyer{}
