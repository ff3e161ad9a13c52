package expr

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/geoexpr/pkg/errors"
)

func TestWire(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"constant", Constant{Value: 3}, `{"constantValue":3}`},
		{"null", Constant{}, `{"constantValue":null}`},
		{"integer", Integer{Value: "9007199254740993"}, `{"integerValue":"9007199254740993"}`},
		{"bytes", Bytes{Value: []byte("hi")}, `{"bytesValue":"aGk="}`},
		{"reference", Reference{Name: "0"}, `{"valueReference":"0"}`},
		{"argument", ArgumentReference{Name: "x"}, `{"argumentReference":"x"}`},
		{"array", Array{Values: []Value{Reference{Name: "0"}}}, `{"arrayValue":{"values":[{"valueReference":"0"}]}}`},
		{"dictionary", Dictionary{Values: map[string]Value{"a": Constant{Value: true}}}, `{"dictionaryValue":{"values":{"a":{"constantValue":true}}}}`},
		{
			"invocation by name",
			Invocation{FunctionName: "Image.load", Arguments: map[string]Value{"id": Reference{Name: "1"}}},
			`{"functionInvocationValue":{"arguments":{"id":{"valueReference":"1"}},"functionName":"Image.load"}}`,
		},
		{
			"invocation by reference",
			Invocation{FunctionReference: "2", Arguments: map[string]Value{}},
			`{"functionInvocationValue":{"arguments":{},"functionReference":"2"}}`,
		},
		{
			"definition",
			Definition{ArgumentNames: []string{"x"}, Body: "3"},
			`{"functionDefinitionValue":{"argumentNames":["x"],"body":"3"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.v.Wire())
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("wire = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFromWireRoundTrip(t *testing.T) {
	values := []Value{
		Constant{Value: int64(3)},
		Constant{Value: "text"},
		Integer{Value: "-9223372036854775808"},
		Bytes{Value: []byte{0, 1, 2}},
		Reference{Name: "4"},
		ArgumentReference{Name: "x"},
		Array{Values: []Value{Constant{Value: 1.5}, Reference{Name: "0"}}},
		Dictionary{Values: map[string]Value{"k": Reference{Name: "1"}}},
		Invocation{FunctionName: "Number.add", Arguments: map[string]Value{"left": Constant{Value: int64(1)}}},
		Invocation{FunctionReference: "7", Arguments: map[string]Value{}},
		Definition{ArgumentNames: []string{"a", "b"}, Body: "2"},
	}

	for _, v := range values {
		data, err := json.Marshal(v.Wire())
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var w any
		if err := dec.Decode(&w); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		norm, err := NormalizeJSON(w)
		if err != nil {
			t.Fatalf("NormalizeJSON(%s): %v", data, err)
		}
		got, err := FromWire(norm)
		if err != nil {
			t.Fatalf("FromWire(%s): %v", data, err)
		}
		if !Equal(got, v) {
			t.Errorf("FromWire(%s) = %#v, want %#v", data, got, v)
		}
	}
}

func TestFromWireErrors(t *testing.T) {
	tests := []struct {
		name string
		w    any
	}{
		{"not an object", []any{}},
		{"two keys", map[string]any{"constantValue": 1, "valueReference": "0"}},
		{"unknown kind", map[string]any{"mystery": 1}},
		{"reference not a string", map[string]any{"valueReference": 1}},
		{"bad integer", map[string]any{"integerValue": "1.5"}},
		{"bad base64", map[string]any{"bytesValue": "!!"}},
		{"invocation without target", map[string]any{"functionInvocationValue": map[string]any{"arguments": map[string]any{}}}},
		{"invocation with both targets", map[string]any{"functionInvocationValue": map[string]any{
			"functionName": "f", "functionReference": "0",
		}}},
		{"definition without body", map[string]any{"functionDefinitionValue": map[string]any{"argumentNames": []any{}}}},
		{"number out of range", map[string]any{"constantValue": []any{json.Number("1e400")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromWire(tt.w); err == nil {
				t.Errorf("FromWire(%v) succeeded, want error", tt.w)
			}
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"3", int64(3)},
		{"-9223372036854775808", int64(-9223372036854775808)},
		{"9223372036854775808", uint64(9223372036854775808)},
		{"18446744073709551615", uint64(18446744073709551615)},
		{"18446744073709551616", 18446744073709551616.0},
		{"3.0", 3.0},
		{"1e3", 1000.0},
	}
	for _, tt := range tests {
		got, err := NormalizeNumber(json.Number(tt.in))
		if err != nil {
			t.Errorf("NormalizeNumber(%s): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeNumber(%s) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"1e400", "-1e400"} {
		if v, err := NormalizeNumber(json.Number(in)); !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("NormalizeNumber(%s) = %v, %v, want INVALID_FORMAT", in, v, err)
		}
	}
}

func TestIsAlwaysLiftable(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Constant{}, true},
		{Constant{Value: false}, true},
		{Constant{Value: int64(7)}, true},
		{Constant{Value: 2.5}, true},
		{Constant{Value: json.Number("4")}, true},
		{Constant{Value: "s"}, false},
		{Constant{Value: []any{1}}, false},
		{ArgumentReference{Name: "x"}, true},
		{Integer{Value: "9007199254740993"}, false},
		{Bytes{Value: []byte("x")}, false},
		{Reference{Name: "0"}, false},
	}

	for _, tt := range tests {
		if got := IsAlwaysLiftable(tt.v); got != tt.want {
			t.Errorf("IsAlwaysLiftable(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestReferences(t *testing.T) {
	v := Invocation{
		FunctionReference: "9",
		Arguments: map[string]Value{
			"b": Array{Values: []Value{Reference{Name: "2"}, Reference{Name: "2"}}},
			"a": Dictionary{Values: map[string]Value{"z": Reference{Name: "1"}, "y": Constant{}}},
		},
	}
	want := []string{"9", "1", "2", "2"}
	if diff := cmp.Diff(want, References(v)); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"4"}, References(Definition{Body: "4"})); diff != "" {
		t.Errorf("definition references mismatch (-want +got):\n%s", diff)
	}
}

func TestLegacyWire(t *testing.T) {
	cv := CompoundValue{
		Scope: []ScopeEntry{
			{Name: "0", Value: LegacyDictionary{"a": Literal{Value: 1}}},
			{Name: "1", Value: LegacyInvocation{
				FunctionName: "f",
				Arguments:    map[string]Legacy{"d": ValueRef{Name: "0"}, "x": ArgumentRef{Name: "x"}},
			}},
		},
		Value: ValueRef{Name: "1"},
	}
	got, err := json.Marshal(cv.Wire())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"scope":[["0",{"type":"Dictionary","value":{"a":1}}],` +
		`["1",{"arguments":{"d":{"type":"ValueRef","value":"0"},"x":{"type":"ArgumentRef","value":"x"}},"functionName":"f","type":"Invocation"}]],` +
		`"type":"CompoundValue","value":{"type":"ValueRef","value":"1"}}`
	if string(got) != want {
		t.Errorf("wire =\n%s\nwant\n%s", got, want)
	}

	if diff := cmp.Diff([]string{"0"}, LegacyReferences(cv.Scope[1].Value)); diff != "" {
		t.Errorf("LegacyReferences mismatch (-want +got):\n%s", diff)
	}
}
