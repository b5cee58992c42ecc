// Package preflight provides readiness checks for the filesystem paths and
// the console server that reach depends on.
//
// These checks run in two contexts:
//   - "reach serve" calls RunAll before opening the store and refuses to
//     start when a required check fails.
//   - The CLI "reach doctor" command prints every result, including
//     CheckServer and CheckWriterLock.
package preflight
