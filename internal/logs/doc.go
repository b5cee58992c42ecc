// Package logs reads the console's log files for `reach logs`.
//
// Last returns the trailing lines with bounded memory. Follow streams lines
// appended after an offset and re-resolves the reach.log pointer when
// `reach serve` starts a new run.
package logs
