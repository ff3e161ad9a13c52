package expr

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	errs "github.com/matzehuels/geoexpr/pkg/errors"
)

// FromWire converts a decoded JSON tree back into a [Value]. Numbers decoded
// as json.Number are normalized with [NormalizeNumber].
func FromWire(w any) (Value, error) {
	m, ok := w.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "value must be an object with exactly one key, got %s", Describe(w))
	}

	var kind string
	var body any
	for k, b := range m {
		kind, body = k, b
	}

	switch kind {
	case "constantValue":
		v, err := NormalizeJSON(body)
		if err != nil {
			return nil, err
		}
		return Constant{Value: v}, nil
	case "integerValue":
		s, err := wireString(kind, body)
		if err != nil {
			return nil, err
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			if _, uerr := strconv.ParseUint(s, 10, 64); uerr != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "integerValue %q", s)
			}
		}
		return Integer{Value: s}, nil
	case "bytesValue":
		s, err := wireString(kind, body)
		if err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "bytesValue")
		}
		return Bytes{Value: data}, nil
	case "valueReference":
		s, err := wireString(kind, body)
		if err != nil {
			return nil, err
		}
		return Reference{Name: s}, nil
	case "argumentReference":
		s, err := wireString(kind, body)
		if err != nil {
			return nil, err
		}
		return ArgumentReference{Name: s}, nil
	case "arrayValue":
		obj, err := wireObject(kind, body)
		if err != nil {
			return nil, err
		}
		raw, ok := obj["values"].([]any)
		if !ok && obj["values"] != nil {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "arrayValue.values must be a list")
		}
		values := make([]Value, len(raw))
		for i, r := range raw {
			if values[i], err = FromWire(r); err != nil {
				return nil, err
			}
		}
		return Array{Values: values}, nil
	case "dictionaryValue":
		obj, err := wireObject(kind, body)
		if err != nil {
			return nil, err
		}
		values, err := wireValueMap(kind, obj["values"])
		if err != nil {
			return nil, err
		}
		return Dictionary{Values: values}, nil
	case "functionInvocationValue":
		obj, err := wireObject(kind, body)
		if err != nil {
			return nil, err
		}
		args, err := wireValueMap(kind, obj["arguments"])
		if err != nil {
			return nil, err
		}
		inv := Invocation{Arguments: args}
		name, hasName := obj["functionName"].(string)
		ref, hasRef := obj["functionReference"].(string)
		switch {
		case hasName && !hasRef && name != "":
			inv.FunctionName = name
		case hasRef && !hasName && ref != "":
			inv.FunctionReference = ref
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "functionInvocationValue needs exactly one of functionName and functionReference")
		}
		return inv, nil
	case "functionDefinitionValue":
		obj, err := wireObject(kind, body)
		if err != nil {
			return nil, err
		}
		bodyName, ok := obj["body"].(string)
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "functionDefinitionValue.body must be a string")
		}
		rawNames, _ := obj["argumentNames"].([]any)
		names := make([]string, len(rawNames))
		for i, n := range rawNames {
			s, ok := n.(string)
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidFormat, "argument names must be strings")
			}
			names[i] = s
		}
		return Definition{ArgumentNames: names, Body: bodyName}, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown value kind %q", kind)
	}
}

func wireString(kind string, body any) (string, error) {
	s, ok := body.(string)
	if !ok {
		return "", errs.New(errs.ErrCodeInvalidFormat, "%s must be a string", kind)
	}
	return s, nil
}

func wireObject(kind string, body any) (map[string]any, error) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "%s must be an object", kind)
	}
	return obj, nil
}

func wireValueMap(kind string, raw any) (map[string]Value, error) {
	if raw == nil {
		return map[string]Value{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "%s entries must be an object", kind)
	}
	out := make(map[string]Value, len(obj))
	for k, r := range obj {
		v, err := FromWire(r)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// NormalizeNumber converts a json.Number to an int64 when it is an integer
// that fits, to a uint64 for larger non-negative integers, and otherwise to
// a float64. Numbers outside the float64 range are rejected.
func NormalizeNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "number %s out of range", n)
	}
	return f, nil
}

// NormalizeJSON applies [NormalizeNumber] to every number inside a decoded
// JSON tree.
func NormalizeJSON(x any) (any, error) {
	switch x := x.(type) {
	case json.Number:
		return NormalizeNumber(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			v, err := NormalizeJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			v, err := NormalizeJSON(e)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return x, nil
}
