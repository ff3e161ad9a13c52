package expr

import (
	"encoding/base64"
	"encoding/json"
	"reflect"
	"sort"
)

// Node is anything that can be projected into its JSON-compatible wire tree.
// The wire tree is built from map[string]any, []any and scalars only, so it
// can be handed directly to encoding/json or a CBOR encoder.
type Node interface {
	Wire() any
}

// Value is a node in the reference-table vocabulary.
//
// The variants are [Constant], [Integer], [Bytes], [Reference],
// [ArgumentReference], [Array], [Dictionary], [Invocation] and [Definition].
type Value interface {
	Node
	isValue()
}

// Constant is a literal: nil, a bool, a number or a string. After constant
// folding it may also hold a []any or map[string]any of such literals.
type Constant struct {
	Value any
}

// Integer is an integer that a float64 cannot represent exactly, carried as
// its decimal digits.
type Integer struct {
	Value string
}

// Bytes is an opaque byte blob, base64 encoded on the wire.
type Bytes struct {
	Value []byte
}

// Reference links to another entry of the enclosing table by name.
type Reference struct {
	Name string
}

// ArgumentReference links to a parameter of the enclosing function
// definition. It is never resolved by the engine.
type ArgumentReference struct {
	Name string
}

// Array is an ordered list of values.
type Array struct {
	Values []Value
}

// Dictionary maps string keys to values. Key order is irrelevant.
type Dictionary struct {
	Values map[string]Value
}

// Invocation calls a function, either a named remote algorithm
// (FunctionName) or a function value held in the table (FunctionReference).
// Exactly one of the two is set.
type Invocation struct {
	FunctionName      string
	FunctionReference string
	Arguments         map[string]Value
}

// ByReference reports whether the invocation targets a table entry rather
// than a named algorithm.
func (v Invocation) ByReference() bool { return v.FunctionName == "" }

// Definition is a custom function. Body names the table entry holding the
// function body.
type Definition struct {
	ArgumentNames []string
	Body          string
}

func (Constant) isValue()          {}
func (Integer) isValue()           {}
func (Bytes) isValue()             {}
func (Reference) isValue()         {}
func (ArgumentReference) isValue() {}
func (Array) isValue()             {}
func (Dictionary) isValue()        {}
func (Invocation) isValue()        {}
func (Definition) isValue()        {}

func (v Constant) Wire() any { return map[string]any{"constantValue": v.Value} }

func (v Integer) Wire() any { return map[string]any{"integerValue": v.Value} }

func (v Bytes) Wire() any {
	return map[string]any{"bytesValue": base64.StdEncoding.EncodeToString(v.Value)}
}

func (v Reference) Wire() any { return map[string]any{"valueReference": v.Name} }

func (v ArgumentReference) Wire() any { return map[string]any{"argumentReference": v.Name} }

func (v Array) Wire() any {
	values := make([]any, len(v.Values))
	for i, e := range v.Values {
		values[i] = e.Wire()
	}
	return map[string]any{"arrayValue": map[string]any{"values": values}}
}

func (v Dictionary) Wire() any {
	return map[string]any{"dictionaryValue": map[string]any{"values": wireMap(v.Values)}}
}

func (v Invocation) Wire() any {
	inv := map[string]any{"arguments": wireMap(v.Arguments)}
	if v.ByReference() {
		inv["functionReference"] = v.FunctionReference
	} else {
		inv["functionName"] = v.FunctionName
	}
	return map[string]any{"functionInvocationValue": inv}
}

func (v Definition) Wire() any {
	names := make([]any, len(v.ArgumentNames))
	for i, n := range v.ArgumentNames {
		names[i] = n
	}
	return map[string]any{"functionDefinitionValue": map[string]any{
		"argumentNames": names,
		"body":          v.Body,
	}}
}

func wireMap(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Wire()
	}
	return out
}

// IsConstant reports whether v is a [Constant].
func IsConstant(v Value) bool {
	_, ok := v.(Constant)
	return ok
}

// IsAlwaysLiftable reports whether v is cheap enough to duplicate at every
// use site instead of naming it: a nil, boolean or numeric constant, or an
// argument reference.
func IsAlwaysLiftable(v Value) bool {
	switch v := v.(type) {
	case Constant:
		return IsScalarConstant(v.Value)
	case ArgumentReference:
		return true
	}
	return false
}

// IsScalarConstant reports whether x is nil, a bool or a number.
func IsScalarConstant(x any) bool {
	if x == nil {
		return true
	}
	if _, ok := x.(json.Number); ok {
		return true
	}
	switch reflect.TypeOf(x).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// References returns the table names v refers to, in a deterministic order
// (dictionary and argument keys sorted). Duplicates are preserved: a name
// referenced twice appears twice.
func References(v Value) []string {
	var out []string
	var walk func(Value)
	walk = func(v Value) {
		switch v := v.(type) {
		case Reference:
			out = append(out, v.Name)
		case Array:
			for _, e := range v.Values {
				walk(e)
			}
		case Dictionary:
			for _, k := range SortedKeys(v.Values) {
				walk(v.Values[k])
			}
		case Invocation:
			if v.ByReference() {
				out = append(out, v.FunctionReference)
			}
			for _, k := range SortedKeys(v.Arguments) {
				walk(v.Arguments[k])
			}
		case Definition:
			out = append(out, v.Body)
		}
	}
	walk(v)
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two values have identical wire trees. Numbers
// compare by the value they serialize to.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(canonicalNumbers(a.Wire()), canonicalNumbers(b.Wire()))
}
