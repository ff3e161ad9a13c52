// Package serializer turns expression trees built from producers into their
// wire forms.
//
// Two vocabularies are supported. The compound-value vocabulary
// ([Encode], [ToCompactText], [ToReadableText]) nests bodies directly and,
// in compound mode, hoists every list, dictionary and producer node into a
// scope of named entries so shared subtrees are written once. The
// reference-table vocabulary ([EncodeModern], [ToModernText],
// [ToReadableModernText]) flattens the tree into a table where every node
// is an entry, then hands the table to [optimize.Optimize] for copy
// propagation, constant folding and renaming.
//
// # Producers
//
// Anything implementing [expr.Encodable] can appear in a tree, next to raw
// literals: nil, booleans, integers and floats of any width, strings,
// []byte (reference tables only), [time.Time], slices and string-keyed
// maps. Producers encode their children through the resolver they are
// handed and never cache results themselves.
//
// # Deduplication
//
// Structurally identical subtrees share one entry. Equality is decided by
// a content hash of the canonical CBOR encoding of each node's wire tree.
// Within a call, an object reached twice through the same pointer, map or
// slice is hashed once; the identity side table lives on the per-call
// builder and nothing is written to caller objects, so a Serializer can be
// shared between goroutines.
//
// A tree that contains itself fails with [expr.CycleError].
//
// # Example
//
//	add := computed.Call("Number.add", map[string]any{"left": 3, "right": 3})
//	text, err := serializer.ToModernText(add)
//	// {"result":"0","values":{"0":{"functionInvocationValue":{...}}}}
package serializer
