// Package main hosts the reach CLI entrypoint and command graph.
//
// The Cobra-based command tree lists the audience taxonomy, drives the
// selection controller from the terminal, watches the persisted selection
// from another process, serves the console API, and scaffolds
// configuration. It centralizes configuration resolution, writer-lock
// handling, and logging setup so subcommands can focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
