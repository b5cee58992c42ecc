package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	StateDir     string `toml:"state_dir" env:"REACH_STATE_DIR"`
	LogDir       string `toml:"log_dir" env:"REACH_LOG_DIR"`
	TaxonomyFile string `toml:"taxonomy_file" env:"REACH_TAXONOMY_FILE"`
}

// Store contains configuration for the persisted selection store.
type Store struct {
	// Backend is "sqlite" (durable, shared between processes) or "memory".
	Backend  string `toml:"backend" env:"REACH_STORE_BACKEND"`
	Key      string `toml:"key"`
	DraftKey string `toml:"draft_key"`
	// WatchIntervalMS is the poll fallback for cross-process change detection.
	WatchIntervalMS int `toml:"watch_interval_ms"`
}

// Selection contains aggregation knobs.
type Selection struct {
	LowCapacityThreshold int64 `toml:"low_capacity_threshold"`
}

// API contains configuration for the console HTTP server.
type API struct {
	Bind string `toml:"bind" env:"REACH_API_BIND"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"REACH_LOG_FORMAT"`
	Level  string `toml:"level" env:"REACH_LOG_LEVEL"`
}

// Config encapsulates all configuration values for reach.
//
// Configuration sections by subsystem:
//   - Paths: state, log, and taxonomy locations
//   - Store: persistence backend and storage keys
//   - Selection: capacity threshold for the low-audience warning
//   - API: console server bind address
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Store     Store     `toml:"store"`
	Selection Selection `toml:"selection"`
	API       API       `toml:"api"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reach/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reach.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath is the SQLite file backing the selection store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "reach.db")
}

// WriterLockPath is the lock file that keeps the selection single-writer.
func (c *Config) WriterLockPath() string {
	return filepath.Join(c.Paths.StateDir, "reach.lock")
}

// WatchInterval returns the cross-process poll interval.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Store.WatchIntervalMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleOption adjusts the generated sample configuration.
type SampleOption func(string) string

// WithSampleTaxonomy points paths.taxonomy_file at path.
func WithSampleTaxonomy(path string) SampleOption {
	return func(sample string) string {
		if strings.TrimSpace(path) == "" {
			return sample
		}
		lines := strings.Split(sample, "\n")
		for i, line := range lines {
			if strings.HasPrefix(line, "taxonomy_file = ") {
				lines[i] = "taxonomy_file = " + strconv.Quote(path)
			}
		}
		return strings.Join(lines, "\n")
	}
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string, opts ...SampleOption) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	sample := sampleConfig
	for _, opt := range opts {
		sample = opt(sample)
	}
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
