// Package logging assembles structured slog loggers used across reach.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context helpers so store and controller code can tag log lines
// with the execution-context ID and the selection revision. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
