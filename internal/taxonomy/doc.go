// Package taxonomy models the read-only audience taxonomy and the pure
// projections the selection engine and UI read from it.
//
// The tree has three levels: categories, sub-categories (each with an opaque
// display metadata bag), and leaf segments carrying a tag set and a
// reachable-audience count. Every accessor accepts a nil tree and unknown
// keys; absent nodes simply yield empty results. Source order from the
// taxonomy document is preserved so option lists render deterministically.
//
// Fetching is not this package's concern beyond Load/Parse for a snapshot
// file and Source, which performs one load per session and never retries.
package taxonomy
