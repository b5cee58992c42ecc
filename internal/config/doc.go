// Package config loads, normalizes, and validates reach configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies REACH_* environment overrides. The
// Config type centralizes every knob the CLI and the console server need so
// state, log, and taxonomy locations are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
