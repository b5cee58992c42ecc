package testsupport

import (
	"path/filepath"
	"testing"

	"reach/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TaxonomyFile = filepath.Join(base, "taxonomy.json")
	cfgVal.Store.WatchIntervalMS = 20
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMemoryBackend switches the store to the in-process backend.
func WithMemoryBackend() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = config.BackendMemory
	}
}

// WithRetailTaxonomy writes the retail fixture to the configured taxonomy file.
func WithRetailTaxonomy() ConfigOption {
	return func(b *configBuilder) {
		WriteTaxonomyFile(b.t, b.cfg.Paths.TaxonomyFile, RetailTaxonomyJSON)
	}
}

// WithThreshold overrides the low-capacity threshold.
func WithThreshold(threshold int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Selection.LowCapacityThreshold = threshold
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
