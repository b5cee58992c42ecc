package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStore()
	c.normalizeLogging()
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.Selection.LowCapacityThreshold == 0 {
		c.Selection.LowCapacityThreshold = defaultLowCapacityThreshold
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TaxonomyFile, err = expandPath(strings.TrimSpace(c.Paths.TaxonomyFile)); err != nil {
		return fmt.Errorf("paths.taxonomy_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.Key = strings.TrimSpace(c.Store.Key)
	if c.Store.Key == "" {
		c.Store.Key = defaultSelectionKey
	}
	c.Store.DraftKey = strings.TrimSpace(c.Store.DraftKey)
	if c.Store.DraftKey == "" {
		c.Store.DraftKey = defaultDraftKey
	}
	if c.Store.WatchIntervalMS <= 0 {
		c.Store.WatchIntervalMS = defaultWatchIntervalMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
