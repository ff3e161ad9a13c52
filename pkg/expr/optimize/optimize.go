package optimize

import (
	"errors"
	"strconv"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// DefaultDepthLimit bounds how deeply single-use entries are inlined.
const DefaultDepthLimit = 50

// nestingCost is the depth added by each array, dictionary or argument level.
const nestingCost = 3

// Option configures [Optimize].
type Option func(*optimizer)

// WithDepthLimit stops copy propagation once the inlined nesting depth
// reaches n; deeper single-use entries stay named and the depth restarts
// inside them. A limit of zero or less disables the check.
func WithDepthLimit(n int) Option {
	return func(o *optimizer) { o.depthLimit = n }
}

// WithoutReferenceCounting inlines every value reference regardless of how
// often its target is used, producing a tree instead of a DAG. Definition
// bodies and function references stay named.
func WithoutReferenceCounting() Option {
	return func(o *optimizer) { o.expand = true }
}

type optimizer struct {
	values     map[string]expr.Value
	counts     map[string]int
	visiting   map[string]bool
	depthLimit int
	expand     bool

	renamed map[string]string
	out     expr.Table
}

// Optimize rewrites the table reachable from result. The input table is not
// modified.
func Optimize(result string, table expr.Table, opts ...Option) (expr.Expression, error) {
	o := &optimizer{
		values:     table.Index(),
		counts:     make(map[string]int),
		visiting:   make(map[string]bool),
		depthLimit: DefaultDepthLimit,
		renamed:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.count(result, ""); err != nil {
		return expr.Expression{}, err
	}

	root, err := o.referred(result)
	if err != nil {
		return expr.Expression{}, err
	}
	return expr.Expression{Result: root, Values: o.out}, nil
}

// Expression is [Optimize] applied to an existing expression.
func Expression(e expr.Expression, opts ...Option) (expr.Expression, error) {
	return Optimize(e.Result, e.Values, opts...)
}

func (o *optimizer) lookup(name, referrer string) (expr.Value, error) {
	v, ok := o.values[name]
	if !ok {
		return nil, &expr.MalformedGraphError{Name: name, Referrer: referrer}
	}
	return v, nil
}

func (o *optimizer) count(name, referrer string) error {
	v, err := o.lookup(name, referrer)
	if err != nil {
		return err
	}
	if o.visiting[name] {
		return &expr.CycleError{Path: []string{name}}
	}
	o.counts[name]++
	if o.counts[name] > 1 {
		return nil
	}

	o.visiting[name] = true
	for _, ref := range expr.References(v) {
		if err := o.count(ref, name); err != nil {
			var cycle *expr.CycleError
			if errors.As(err, &cycle) && !closed(cycle.Path) {
				cycle.Path = append([]string{name}, cycle.Path...)
			}
			return err
		}
	}
	delete(o.visiting, name)
	return nil
}

func closed(path []string) bool {
	return len(path) > 1 && path[0] == path[len(path)-1]
}

// referred returns the new name of an entry, optimizing its body on first
// use.
func (o *optimizer) referred(name string) (string, error) {
	if renamed, ok := o.renamed[name]; ok {
		return renamed, nil
	}
	renamed := strconv.Itoa(len(o.renamed))
	o.renamed[name] = renamed

	slot := len(o.out)
	o.out = append(o.out, expr.Entry{Name: renamed})

	v, err := o.lookup(name, "")
	if err != nil {
		return "", err
	}
	optimized, err := o.value(v, 0)
	if err != nil {
		return "", err
	}
	o.out[slot].Value = optimized
	return renamed, nil
}

func (o *optimizer) inline(name string, depth int) bool {
	if o.expand {
		return true
	}
	if o.depthLimit > 0 && depth >= o.depthLimit {
		return false
	}
	return o.counts[name] == 1
}

func (o *optimizer) value(v expr.Value, depth int) (expr.Value, error) {
	switch v := v.(type) {
	case expr.Constant, expr.Integer, expr.Bytes, expr.ArgumentReference:
		return v, nil

	case expr.Reference:
		target, err := o.lookup(v.Name, "")
		if err != nil {
			return nil, err
		}
		if o.inline(v.Name, depth) {
			return o.value(target, depth)
		}
		if expr.IsAlwaysLiftable(target) {
			return target, nil
		}
		renamed, err := o.referred(v.Name)
		if err != nil {
			return nil, err
		}
		return expr.Reference{Name: renamed}, nil

	case expr.Array:
		values := make([]expr.Value, len(v.Values))
		constant := true
		for i, e := range v.Values {
			optimized, err := o.value(e, depth+nestingCost)
			if err != nil {
				return nil, err
			}
			values[i] = optimized
			constant = constant && expr.IsConstant(optimized)
		}
		if constant {
			folded := make([]any, len(values))
			for i, e := range values {
				folded[i] = e.(expr.Constant).Value
			}
			return expr.Constant{Value: folded}, nil
		}
		return expr.Array{Values: values}, nil

	case expr.Dictionary:
		values, constant, err := o.members(v.Values, depth+nestingCost)
		if err != nil {
			return nil, err
		}
		if constant {
			folded := make(map[string]any, len(values))
			for k, e := range values {
				folded[k] = e.(expr.Constant).Value
			}
			return expr.Constant{Value: folded}, nil
		}
		return expr.Dictionary{Values: values}, nil

	case expr.Definition:
		body, err := o.referred(v.Body)
		if err != nil {
			return nil, err
		}
		return expr.Definition{ArgumentNames: v.ArgumentNames, Body: body}, nil

	case expr.Invocation:
		optimized := expr.Invocation{FunctionName: v.FunctionName}
		if v.ByReference() {
			ref, err := o.referred(v.FunctionReference)
			if err != nil {
				return nil, err
			}
			optimized.FunctionReference = ref
		}
		args, _, err := o.members(v.Arguments, depth+nestingCost)
		if err != nil {
			return nil, err
		}
		optimized.Arguments = args
		return optimized, nil
	}
	return nil, expr.Unencodable(v, "unknown value kind")
}

// members optimizes every member of m in key order and reports whether all
// results are constants.
func (o *optimizer) members(m map[string]expr.Value, depth int) (map[string]expr.Value, bool, error) {
	out := make(map[string]expr.Value, len(m))
	constant := true
	for _, k := range expr.SortedKeys(m) {
		optimized, err := o.value(m[k], depth)
		if err != nil {
			return nil, false, err
		}
		out[k] = optimized
		constant = constant && expr.IsConstant(optimized)
	}
	return out, constant, nil
}
