package config

const (
	defaultStateDir             = "~/.local/share/reach"
	defaultLogDir               = "~/.local/share/reach/logs"
	defaultTaxonomyFile         = "~/.config/reach/taxonomy.json"
	defaultStoreBackend         = BackendSQLite
	defaultSelectionKey         = "audience_selection"
	defaultDraftKey             = "campaign_draft"
	defaultWatchIntervalMillis  = 500
	defaultLowCapacityThreshold = 500
	defaultAPIBind              = "127.0.0.1:7590"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Store backend identifiers accepted by store.backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
			TaxonomyFile: defaultTaxonomyFile,
		},
		Store: Store{
			Backend:         defaultStoreBackend,
			Key:             defaultSelectionKey,
			DraftKey:        defaultDraftKey,
			WatchIntervalMS: defaultWatchIntervalMillis,
		},
		Selection: Selection{
			LowCapacityThreshold: defaultLowCapacityThreshold,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
