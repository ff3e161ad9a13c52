// Package pkg provides the core libraries for geoexpr expression graphs.
//
// # Overview
//
// geoexpr turns an in-memory graph of computed values (function calls,
// custom functions, literals, lists and dictionaries) into JSON text that a
// remote evaluator understands. Two wire vocabularies are supported:
//
//  1. The compound-value format, where shared subgraphs are hoisted into an
//     ordered scope and referred to by name.
//  2. The reference-table format, where every value is a named table entry
//     and an optimizer inlines, folds and renames entries before output.
//
// # Architecture
//
// The typical data flow:
//
//	producer tree ([computed] values, literals, lists, maps)
//	         ↓
//	    [serializer] (content-hash dedup, cycle detection)
//	         ↓
//	    [expr] table or compound value
//	         ↓
//	    [expr/optimize] (reference-table format only)
//	         ↓
//	    JSON text
//
// [deserializer] reads compound-value text back into a producer tree, and
// [pipeline] wires decoding, encoding and caching together for the CLI.
//
// # Quick Start
//
//	root := computed.Call("Number.add", map[string]any{"left": 3, "right": 3})
//	text, err := serializer.ToModernText(root)
//	// {"result":"0","values":{"0":{"functionInvocationValue":{...}}}}
//
// # Main Packages
//
// [expr] - Node model for both vocabularies, content hashing, table
// validation and JSON parsing.
//
// [expr/optimize] - Reachability, copy propagation under a depth limit,
// constant folding and deterministic renaming.
//
// [serializer] - Graph builders and the text facade.
//
// [computed] - Producers: named invocations, custom functions, function
// application, variables and constants.
//
// [deserializer] - Compound-value decoding.
//
// [pipeline] - Encode and re-optimize runs with caching and hooks.
//
// [cache] - File, Redis and null caches with key derivation.
//
// [render] - Graphviz DOT/SVG and tree views of a table.
//
// [config] - TOML settings.
//
// [observability] - Encode and cache hooks for metrics.
//
// # Testing
//
// Run tests:
//
//	go test ./...                        # All tests
//	go test -short ./...                 # Skip graphviz layout
//	GEOEXPR_TEST_REDIS=redis://localhost:6379/0 go test ./pkg/cache/
//
// [expr]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/expr
// [expr/optimize]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/expr/optimize
// [serializer]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/serializer
// [computed]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/computed
// [deserializer]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/deserializer
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/render
// [config]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/geoexpr/pkg/observability
package pkg
