package deserializer

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/matzehuels/geoexpr/pkg/computed"
	"github.com/matzehuels/geoexpr/pkg/errors"
	"github.com/matzehuels/geoexpr/pkg/expr"
	"github.com/matzehuels/geoexpr/pkg/serializer"
)

// FromJSON parses compound-value JSON text and rebuilds the producer tree
// it describes.
func FromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode compound value")
	}
	norm, err := expr.NormalizeJSON(v)
	if err != nil {
		return nil, err
	}
	return Decode(norm)
}

// Decode rebuilds a producer tree from a decoded compound-value document.
//
// Scope entries are decoded in order and may only refer to entries listed
// before them. An entry referenced several times decodes to one shared
// producer, so re-encoding the result yields the same scope.
func Decode(v any) (any, error) {
	d := &decoder{named: make(map[string]any)}
	if m, ok := v.(map[string]any); ok && m["type"] == "CompoundValue" {
		return d.compound(m)
	}
	return d.value(v)
}

type decoder struct {
	named map[string]any
}

func (d *decoder) compound(m map[string]any) (any, error) {
	scope, ok := m["scope"].([]any)
	if !ok {
		return nil, malformed("compound value has no scope")
	}
	for i, raw := range scope {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, malformed("scope entry %d is not a [name, value] pair", i)
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, malformed("scope entry %d has no name", i)
		}
		v, err := d.value(pair[1])
		if err != nil {
			return nil, err
		}
		d.named[name] = v
	}
	value, ok := m["value"]
	if !ok {
		return nil, malformed("compound value has no value")
	}
	return d.value(value)
}

func (d *decoder) value(v any) (any, error) {
	switch v := v.(type) {
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			x, err := d.value(e)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case map[string]any:
		return d.object(v)
	}
	return v, nil
}

func (d *decoder) object(m map[string]any) (any, error) {
	kind, _ := m["type"].(string)
	switch kind {
	case "ValueRef":
		name, _ := m["value"].(string)
		v, ok := d.named[name]
		if !ok {
			return nil, &expr.MalformedGraphError{Name: name}
		}
		return v, nil

	case "ArgumentRef":
		name, ok := m["value"].(string)
		if !ok {
			return nil, malformed("argument reference has no name")
		}
		return &computed.Variable{Name: name}, nil

	case "Dictionary":
		raw, ok := m["value"].(map[string]any)
		if !ok {
			return nil, malformed("dictionary has no value")
		}
		return d.members(raw)

	case "Date":
		return date(m["value"])

	case "Invocation":
		args := map[string]any{}
		if raw, ok := m["arguments"].(map[string]any); ok {
			var err error
			if args, err = d.members(raw); err != nil {
				return nil, err
			}
		}
		if name, ok := m["functionName"].(string); ok {
			if name == serializer.DateFunction && len(args) == 1 {
				if ms, ok := args["value"]; ok {
					return date(ms)
				}
			}
			return computed.Call(name, args), nil
		}
		raw, ok := m["function"]
		if !ok {
			return nil, malformed("invocation has neither functionName nor function")
		}
		fn, err := d.value(raw)
		if err != nil {
			return nil, err
		}
		return &computed.Apply{Function: fn, Args: args}, nil

	case "Function":
		names, ok := m["argumentNames"].([]any)
		if !ok {
			return nil, malformed("function has no argumentNames")
		}
		params := make([]string, len(names))
		for i, n := range names {
			if params[i], ok = n.(string); !ok {
				return nil, malformed("function argument name %d is not a string", i)
			}
		}
		body, err := d.value(m["body"])
		if err != nil {
			return nil, err
		}
		return &computed.Function{Params: params, Body: body}, nil

	case "CompoundValue":
		return nil, malformed("nested compound values are not allowed")
	case "":
		return nil, malformed("object has no type tag")
	}
	return nil, malformed("unknown type %q", kind)
}

func (d *decoder) members(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, k := range expr.SortedKeys(raw) {
		v, err := d.value(raw[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func date(v any) (any, error) {
	switch ms := v.(type) {
	case int64:
		return time.UnixMilli(ms).UTC(), nil
	case float64:
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	return nil, malformed("date value must be a number")
}

func malformed(format string, args ...any) error {
	return errors.New(errors.ErrCodeMalformedGraph, format, args...)
}
