// Package computed provides the basic expression producers: algorithm
// invocations, function values, function parameters and literal wrappers.
//
// Producers are plain data. Building one performs no encoding; the
// [serializer] package walks a tree of producers and asks each one for its
// body through the [expr.Encodable] methods.
//
//	sum := computed.Call("Number.add", map[string]any{"left": 1, "right": 2})
//	double := &computed.Function{
//		Params: []string{"x"},
//		Body: computed.Call("Number.multiply", map[string]any{
//			"left":  &computed.Variable{Name: "x"},
//			"right": 2,
//		}),
//	}
//	result := &computed.Apply{Function: double, Args: map[string]any{"x": sum}}
package computed
