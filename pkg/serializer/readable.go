package serializer

import (
	"github.com/matzehuels/geoexpr/pkg/expr"
)

// Expand returns the wire tree of e with every name (value references,
// definition bodies and function references) replaced by the tree of the
// entry it names. Shared entries are duplicated at each use.
func Expand(e expr.Expression) (any, error) {
	if err := expr.Validate(e); err != nil {
		return nil, err
	}
	x := expander{idx: e.Values.Index(), memo: make(map[string]any)}
	return x.entry(e.Result), nil
}

type expander struct {
	idx  map[string]expr.Value
	memo map[string]any
}

func (x *expander) entry(name string) any {
	if w, ok := x.memo[name]; ok {
		return w
	}
	w := x.value(x.idx[name])
	x.memo[name] = w
	return w
}

func (x *expander) value(v expr.Value) any {
	switch v := v.(type) {
	case expr.Reference:
		return x.entry(v.Name)
	case expr.Array:
		values := make([]any, len(v.Values))
		for i, e := range v.Values {
			values[i] = x.value(e)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}
	case expr.Dictionary:
		return map[string]any{"dictionaryValue": map[string]any{"values": x.members(v.Values)}}
	case expr.Invocation:
		inv := map[string]any{"arguments": x.members(v.Arguments)}
		if v.ByReference() {
			inv["functionReference"] = x.entry(v.FunctionReference)
		} else {
			inv["functionName"] = v.FunctionName
		}
		return map[string]any{"functionInvocationValue": inv}
	case expr.Definition:
		names := make([]any, len(v.ArgumentNames))
		for i, n := range v.ArgumentNames {
			names[i] = n
		}
		return map[string]any{"functionDefinitionValue": map[string]any{
			"argumentNames": names,
			"body":          x.entry(v.Body),
		}}
	}
	return v.Wire()
}

func (x *expander) members(m map[string]expr.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = x.value(v)
	}
	return out
}
