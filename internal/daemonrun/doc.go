// Package daemonrun runs the reach console process: logging, preflight,
// the writer lock, and the daemon lifecycle until a signal arrives.
package daemonrun
