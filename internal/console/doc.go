// Package console assembles the selection engine from configuration.
//
// Open picks the persistence backend, opens the selection store, starts the
// one-shot taxonomy load, and wires the controller to the draft bridge. The
// HTTP server and the CLI both work through a Console.
package console
