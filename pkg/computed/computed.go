package computed

import (
	"github.com/matzehuels/geoexpr/pkg/errors"
	"github.com/matzehuels/geoexpr/pkg/expr"
)

// Invocation calls a named algorithm with keyword arguments. Argument
// values are children: literals, other producers, slices or maps.
type Invocation struct {
	Name string
	Args map[string]any
}

// Call returns an invocation of the named algorithm.
func Call(name string, args map[string]any) *Invocation {
	return &Invocation{Name: name, Args: args}
}

// EncodeLegacy implements [expr.Encodable].
func (c *Invocation) EncodeLegacy(resolve expr.LegacyResolver) (expr.Legacy, error) {
	if err := errors.ValidateFunctionName(c.Name); err != nil {
		return nil, expr.Unencodable(c, errors.UserMessage(err))
	}
	args, err := legacyArgs(c.Args, resolve)
	if err != nil {
		return nil, err
	}
	return expr.LegacyInvocation{FunctionName: c.Name, Arguments: args}, nil
}

// EncodeModern implements [expr.Encodable].
func (c *Invocation) EncodeModern(resolve expr.ModernResolver) (expr.Value, error) {
	if err := errors.ValidateFunctionName(c.Name); err != nil {
		return nil, expr.Unencodable(c, errors.UserMessage(err))
	}
	args, err := modernArgs(c.Args, resolve)
	if err != nil {
		return nil, err
	}
	return expr.Invocation{FunctionName: c.Name, Arguments: args}, nil
}

// Apply invokes a function value, typically a [*Function], rather than a
// named algorithm.
type Apply struct {
	Function any
	Args     map[string]any
}

// EncodeLegacy implements [expr.Encodable].
func (a *Apply) EncodeLegacy(resolve expr.LegacyResolver) (expr.Legacy, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	fn, err := resolve(a.Function)
	if err != nil {
		return nil, err
	}
	args, err := legacyArgs(a.Args, resolve)
	if err != nil {
		return nil, err
	}
	return expr.LegacyInvocation{Function: fn, Arguments: args}, nil
}

// EncodeModern implements [expr.Encodable].
func (a *Apply) EncodeModern(resolve expr.ModernResolver) (expr.Value, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	fn, err := resolve(a.Function)
	if err != nil {
		return nil, err
	}
	args, err := modernArgs(a.Args, resolve)
	if err != nil {
		return nil, err
	}
	return expr.Invocation{FunctionReference: fn.Name, Arguments: args}, nil
}

// check rejects function slots that cannot evaluate to a function: nothing
// at all, or a literal, date, collection or wrapped [Constant]. Any other
// producer, such as a [*Function], a [*Variable] or an invocation returning
// a function, is accepted.
func (a *Apply) check() error {
	switch a.Function.(type) {
	case nil:
		return expr.Unencodable(a, "no function to apply")
	case Constant, *Constant:
		return expr.Unencodable(a.Function, "constant is not a function")
	case expr.Encodable:
		return nil
	}
	return expr.Unencodable(a.Function, "not a function")
}

// Function is a custom function. Body refers to the parameters through
// [Variable] producers.
type Function struct {
	Params []string
	Body   any
}

// EncodeLegacy implements [expr.Encodable].
func (f *Function) EncodeLegacy(resolve expr.LegacyResolver) (expr.Legacy, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	body, err := resolve(f.Body)
	if err != nil {
		return nil, err
	}
	return expr.LegacyFunction{ArgumentNames: params(f.Params), Body: body}, nil
}

// EncodeModern implements [expr.Encodable].
func (f *Function) EncodeModern(resolve expr.ModernResolver) (expr.Value, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	body, err := resolve(f.Body)
	if err != nil {
		return nil, err
	}
	return expr.Definition{ArgumentNames: params(f.Params), Body: body.Name}, nil
}

func (f *Function) check() error {
	if f.Body == nil {
		return expr.Unencodable(f, "function has no body")
	}
	for _, p := range f.Params {
		if err := errors.ValidateName(p); err != nil {
			return expr.Unencodable(f, errors.UserMessage(err))
		}
	}
	return nil
}

func params(p []string) []string {
	if p == nil {
		return []string{}
	}
	return append([]string(nil), p...)
}

// Variable refers to a parameter of the enclosing [Function].
type Variable struct {
	Name string
}

// EncodeLegacy implements [expr.Encodable].
func (v *Variable) EncodeLegacy(expr.LegacyResolver) (expr.Legacy, error) {
	if err := errors.ValidateName(v.Name); err != nil {
		return nil, expr.Unencodable(v, errors.UserMessage(err))
	}
	return expr.ArgumentRef{Name: v.Name}, nil
}

// EncodeModern implements [expr.Encodable].
func (v *Variable) EncodeModern(expr.ModernResolver) (expr.Value, error) {
	if err := errors.ValidateName(v.Name); err != nil {
		return nil, expr.Unencodable(v, errors.UserMessage(err))
	}
	return expr.ArgumentReference{Name: v.Name}, nil
}

// Constant wraps a literal so it can be used where a producer is expected.
// It encodes exactly as the bare literal would.
type Constant struct {
	Value any
}

// EncodeLegacy implements [expr.Encodable].
func (c Constant) EncodeLegacy(resolve expr.LegacyResolver) (expr.Legacy, error) {
	return resolve(c.Value)
}

// EncodeModern implements [expr.Encodable].
func (c Constant) EncodeModern(resolve expr.ModernResolver) (expr.Value, error) {
	return resolve(c.Value)
}

func legacyArgs(args map[string]any, resolve expr.LegacyResolver) (map[string]expr.Legacy, error) {
	out := make(map[string]expr.Legacy, len(args))
	for _, k := range expr.SortedKeys(args) {
		v, err := resolve(args[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func modernArgs(args map[string]any, resolve expr.ModernResolver) (map[string]expr.Value, error) {
	out := make(map[string]expr.Value, len(args))
	for _, k := range expr.SortedKeys(args) {
		ref, err := resolve(args[k])
		if err != nil {
			return nil, err
		}
		out[k] = ref
	}
	return out, nil
}

var (
	_ expr.Encodable = (*Invocation)(nil)
	_ expr.Encodable = (*Apply)(nil)
	_ expr.Encodable = (*Function)(nil)
	_ expr.Encodable = (*Variable)(nil)
	_ expr.Encodable = Constant{}
)
