// Package daemon coordinates the long-running reach console process.
//
// It wires an opened console, the cross-process writer lock, and the HTTP
// API into a single lifecycle. The lock is taken before the console is
// opened so the controller never writes while another process owns the
// selection; the daemon releases it on Close.
//
// Keep orchestration logic here: selection semantics live in the selection
// and persist packages while the daemon focuses on startup, shutdown, and
// serving.
package daemon
