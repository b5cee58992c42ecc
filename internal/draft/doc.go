// Package draft forwards the selection to the campaign draft.
//
// The bridge owns seven draft fields and nothing else: a Patch carries
// exactly those fields, and Document.Apply merges them into a draft held by
// someone else while leaving every other key alone.
package draft
