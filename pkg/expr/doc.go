// Package expr defines the node model shared by the expression-graph
// encoders and the optimizer.
//
// # Overview
//
// A computation sent to the remote engine is a graph of expression nodes:
// function invocations, constants, arrays, dictionaries, function
// definitions and references to named entries or function parameters. This
// package provides two closed vocabularies for those nodes:
//
//   - [Value]: the reference-table vocabulary consumed by the optimizer and
//     the modern endpoint ({"constantValue": ...}, {"valueReference": ...}).
//   - [Legacy]: the "compound value" vocabulary ({"type": "Invocation"},
//     {"type": "ValueRef"}, ...).
//
// Both are sum types: every variant implements an unexported marker method,
// so type switches over them are exhaustive by construction and nothing
// outside this package can add a variant.
//
// # Tables and Expressions
//
// A [Table] is an ordered list of named entries. The builders in the
// serializer package always produce topologically sorted tables (an entry
// only references entries that precede it), which [CheckTopological]
// verifies. An [Expression] pairs a table with the name of its result and
// marshals to {"result": name, "values": {name: node, ...}}.
//
// # Encodable
//
// Producers of expression trees implement [Encodable]. The engine hands the
// producer a resolver callback; the producer calls it once per distinct child
// and embeds whatever the resolver returns into its own body.
//
// # Content Hashing
//
// [ContentHash] digests the canonical CBOR form of a node's wire tree. The
// digest is used only as a deduplication key while building a table.
// Numbers are keyed by the JSON value they serialize to, so 3 and 3.0 name
// the same entry.
package expr
