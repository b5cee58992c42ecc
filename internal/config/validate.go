package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected %q or %q)", c.Store.Backend, BackendSQLite, BackendMemory)
	}
	if c.Store.Key == c.Store.DraftKey {
		return errors.New("store.key and store.draft_key must differ")
	}
	return nil
}

func (c *Config) validateSelection() error {
	if c.Selection.LowCapacityThreshold < 0 {
		return errors.New("selection.low_capacity_threshold must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
