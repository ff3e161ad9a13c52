package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// applyDouble is double(x) applied to a shared constant list.
func applyDouble() expr.Expression {
	return expr.Expression{Result: "0", Values: expr.Table{
		{Name: "0", Value: expr.Invocation{FunctionReference: "1", Arguments: map[string]expr.Value{
			"x": expr.Reference{Name: "3"},
			"y": expr.Reference{Name: "3"},
		}}},
		{Name: "1", Value: expr.Definition{ArgumentNames: []string{"x", "y"}, Body: "2"}},
		{Name: "2", Value: expr.Invocation{FunctionName: "Number.multiply", Arguments: map[string]expr.Value{
			"left":  expr.ArgumentReference{Name: "x"},
			"right": expr.Constant{Value: 2.0},
		}}},
		{Name: "3", Value: expr.Array{Values: []expr.Value{expr.Constant{Value: 1.0}, expr.Integer{Value: "9007199254740993"}}}},
	}}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(applyDouble())

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, want := range []string{
		`"0" -> "1" [label="function"]`,
		`"0" -> "3" [label="x"]`,
		`"0" -> "3" [label="y"]`,
		`"1" -> "2" [label="body"]`,
		`penwidth=2.5`,
		`Number.multiply`,
		`fn(x, y)`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Definition(t *testing.T) {
	dot := ToDOT(applyDouble())
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"1" [`) && !strings.Contains(line, "dashed") {
			t.Errorf("definition node not dashed: %s", line)
		}
	}
}

func TestToDOT_Missing(t *testing.T) {
	e := expr.Expression{Result: "0", Values: expr.Table{
		{Name: "0", Value: expr.Array{Values: []expr.Value{expr.Reference{Name: "gone"}}}},
	}}
	dot := ToDOT(e)
	if !strings.Contains(dot, `"0" -> "gone" [label="0"]`) {
		t.Errorf("missing edge to dangling reference:\n%s", dot)
	}
	if !strings.Contains(dot, `"gone" [label="gone\nmissing", color=red`) {
		t.Errorf("missing placeholder node:\n%s", dot)
	}
}

func TestEdges(t *testing.T) {
	v := expr.Dictionary{Values: map[string]expr.Value{
		"b": expr.Array{Values: []expr.Value{expr.Constant{Value: 1.0}, expr.Reference{Name: "r"}}},
		"a": expr.Invocation{FunctionReference: "f", Arguments: map[string]expr.Value{"k": expr.Reference{Name: "s"}}},
	}}
	want := []edge{{label: "a.function", to: "f"}, {label: "a.k", to: "s"}, {label: "b.1", to: "r"}}
	if diff := cmp.Diff(want, edges(v), cmp.AllowUnexported(edge{})); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		v    expr.Value
		want string
	}{
		{expr.Constant{Value: "hi"}, `"hi"`},
		{expr.Constant{Value: nil}, "null"},
		{expr.Constant{Value: strings.Repeat("x", 60)}, `"` + strings.Repeat("x", 36) + "..."},
		{expr.Integer{Value: "12"}, "12"},
		{expr.Bytes{Value: []byte("abc")}, "bytes(3)"},
		{expr.ArgumentReference{Name: "x"}, "arg x"},
		{expr.Array{Values: make([]expr.Value, 2)}, "Array(len=2)"},
		{expr.Invocation{FunctionReference: "1"}, "call $1"},
		{expr.Definition{ArgumentNames: []string{"a"}, Body: "b"}, "fn(a)"},
	}
	for _, tt := range tests {
		if got := summary(tt.v); got != tt.want {
			t.Errorf("summary(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestTree(t *testing.T) {
	out := Tree(applyDouble())

	if !strings.HasPrefix(out, "$0 = call $1") {
		t.Errorf("Tree() root line wrong:\n%s", out)
	}
	// The shared array is printed under both arguments.
	if n := strings.Count(out, "$3 = Array(len=2)"); n != 2 {
		t.Errorf("shared entry printed %d times, want 2:\n%s", n, out)
	}
	for _, want := range []string{"$1 = fn(x, y)", "$2 = Number.multiply", "arg x", "9007199254740993"} {
		if !strings.Contains(out, want) {
			t.Errorf("Tree() missing %q:\n%s", want, out)
		}
	}
}

func TestTreeBroken(t *testing.T) {
	cyclic := expr.Expression{Result: "a", Values: expr.Table{
		{Name: "a", Value: expr.Array{Values: []expr.Value{expr.Reference{Name: "b"}, expr.Reference{Name: "nope"}}}},
		{Name: "b", Value: expr.Array{Values: []expr.Value{expr.Reference{Name: "a"}}}},
	}}
	out := Tree(cyclic)
	if !strings.Contains(out, "$a (cycle)") {
		t.Errorf("cycle not marked:\n%s", out)
	}
	if !strings.Contains(out, "$nope (missing)") {
		t.Errorf("missing entry not marked:\n%s", out)
	}

	if out := Tree(expr.Expression{Result: "x"}); !strings.Contains(out, "$x (missing)") {
		t.Errorf("missing result not marked:\n%s", out)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz layout is slow")
	}
	svg, err := RenderSVG(ToDOT(applyDouble()))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("RenderSVG output has no normalized svg tag:\n%.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("normalizeViewBox without viewBox changed input: %s", got)
	}
}

func ExampleTree() {
	e := expr.Expression{Result: "0", Values: expr.Table{
		{Name: "0", Value: expr.Invocation{FunctionName: "Number.add", Arguments: map[string]expr.Value{
			"left":  expr.Constant{Value: 3.0},
			"right": expr.Constant{Value: 3.0},
		}}},
	}}
	fmt.Println(strings.Split(Tree(e), "\n")[0])
	// Output: $0 = Number.add
}
