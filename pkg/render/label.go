package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// maxConstant caps the length of a constant shown in a label.
const maxConstant = 40

// Kind names the variant of v.
func Kind(v expr.Value) string {
	switch v.(type) {
	case expr.Constant:
		return "Constant"
	case expr.Integer:
		return "Integer"
	case expr.Bytes:
		return "Bytes"
	case expr.Reference:
		return "Reference"
	case expr.ArgumentReference:
		return "ArgumentReference"
	case expr.Array:
		return "Array"
	case expr.Dictionary:
		return "Dictionary"
	case expr.Invocation:
		return "Invocation"
	case expr.Definition:
		return "Definition"
	}
	return "Unknown"
}

// summary is a one-line description of v without its members.
func summary(v expr.Value) string {
	switch v := v.(type) {
	case expr.Constant:
		return constant(v.Value)
	case expr.Integer:
		return v.Value
	case expr.Bytes:
		return fmt.Sprintf("bytes(%d)", len(v.Value))
	case expr.Reference:
		return "$" + v.Name
	case expr.ArgumentReference:
		return "arg " + v.Name
	case expr.Array:
		return fmt.Sprintf("Array(len=%d)", len(v.Values))
	case expr.Dictionary:
		return fmt.Sprintf("Dictionary(len=%d)", len(v.Values))
	case expr.Invocation:
		if v.ByReference() {
			return "call $" + v.FunctionReference
		}
		return v.FunctionName
	case expr.Definition:
		return "fn(" + strings.Join(v.ArgumentNames, ", ") + ")"
	}
	return Kind(v)
}

func constant(x any) string {
	b, err := json.Marshal(x)
	if err != nil {
		return fmt.Sprintf("%v", x)
	}
	s := string(b)
	if len(s) > maxConstant {
		s = s[:maxConstant-3] + "..."
	}
	return s
}

// edge is a reference held by a table entry, labelled with the path of
// keys leading to it.
type edge struct {
	label string
	to    string
}

// edges lists the references held by v in a deterministic order.
func edges(v expr.Value) []edge {
	var out []edge
	var walk func(path string, v expr.Value)
	join := func(path, key string) string {
		if path == "" {
			return key
		}
		return path + "." + key
	}
	walk = func(path string, v expr.Value) {
		switch v := v.(type) {
		case expr.Reference:
			out = append(out, edge{label: path, to: v.Name})
		case expr.Array:
			for i, e := range v.Values {
				walk(join(path, fmt.Sprint(i)), e)
			}
		case expr.Dictionary:
			for _, k := range expr.SortedKeys(v.Values) {
				walk(join(path, k), v.Values[k])
			}
		case expr.Invocation:
			if v.ByReference() {
				out = append(out, edge{label: join(path, "function"), to: v.FunctionReference})
			}
			for _, k := range expr.SortedKeys(v.Arguments) {
				walk(join(path, k), v.Arguments[k])
			}
		case expr.Definition:
			out = append(out, edge{label: join(path, "body"), to: v.Body})
		}
	}
	walk("", v)
	return out
}
