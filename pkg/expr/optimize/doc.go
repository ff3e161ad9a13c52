// Package optimize compacts a reference table produced by the serializer.
//
// # Overview
//
// The reference-graph builder emits a maximally expanded table: every
// literal, array element and argument gets its own named entry, and
// structurally identical subexpressions share one entry. [Optimize] rewrites
// such a table into the smallest equivalent one:
//
//   - Copy propagation: an entry referenced exactly once is inlined at its
//     use site.
//   - Lifting: entries holding nil, booleans, numbers or argument references
//     are duplicated at every use site instead of being named.
//   - Constant folding: arrays and dictionaries whose members are all
//     constants become a single constant.
//   - Dead-entry elimination: only entries reachable from the result are
//     emitted.
//   - Renaming: surviving entries get dense names "0", "1", ... in the order
//     they are first reached, so the result is always "0".
//
// Function definition bodies and function references of invocations are
// always kept as named entries.
//
// # Reference Counting
//
// Counts are computed once, before rewriting, by a walk from the result that
// increments a target's count for every reference and descends into a
// target's body only on its first visit. The same walk reports dangling
// names ([expr.MalformedGraphError]) and cycles ([expr.CycleError]).
//
// # Fixpoint
//
// Optimizing an already optimized expression returns it unchanged.
package optimize
