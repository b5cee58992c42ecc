package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reach/internal/config"
	"reach/internal/draft"
	"reach/internal/logging"
	"reach/internal/persist"
	"reach/internal/selection"
	"reach/internal/taxonomy"
)

// Option customizes Open.
type Option func(*options)

type options struct {
	backend  persist.Backend
	source   *taxonomy.Source
	readOnly bool
	sink     draft.Sink
}

// WithBackend uses backend instead of the one named in the config. The
// console does not close an injected backend.
func WithBackend(backend persist.Backend) Option {
	return func(o *options) { o.backend = backend }
}

// WithTaxonomySource replaces the taxonomy file loader.
func WithTaxonomySource(source *taxonomy.Source) Option {
	return func(o *options) { o.source = source }
}

// WithDraftSink forwards draft patches to sink in addition to the stored
// draft document.
func WithDraftSink(sink draft.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// ReadOnly opens the store and taxonomy without a controller, for observers
// that must never write.
func ReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// Console is one execution context of the selection engine.
type Console struct {
	cfg        *config.Config
	logger     *slog.Logger
	backend    persist.Backend
	ownBackend bool
	store      *persist.Store
	taxonomy   *taxonomy.Source
	controller *selection.Controller
}

// Open wires the engine for cfg. The taxonomy loads in the background; use
// WaitTaxonomy to block on it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Console, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Console{cfg: cfg, logger: logger}

	backend := o.backend
	if backend == nil {
		opened, err := openBackend(cfg, logger)
		if err != nil {
			return nil, err
		}
		backend = opened
		c.ownBackend = true
	}
	c.backend = backend

	store, err := persist.NewStore(backend, cfg.Store.Key, persist.WithLogger(logger))
	if err != nil {
		c.closeBackend()
		return nil, fmt.Errorf("open selection store: %w", err)
	}
	c.store = store

	source := o.source
	if source == nil {
		source = taxonomy.NewFileSource(cfg.Paths.TaxonomyFile)
	}
	c.taxonomy = source

	if !o.readOnly {
		sinks := []draft.Sink{draft.BackendSink(backend, cfg.Store.DraftKey, logger)}
		if o.sink != nil {
			sinks = append(sinks, o.sink)
		}
		bridge := draft.NewBridge(func(p draft.Patch) {
			for _, sink := range sinks {
				sink(p)
			}
		})
		c.controller = selection.NewController(store, source.Tree(),
			selection.WithLogger(logger),
			selection.WithLowCapacityThreshold(cfg.Selection.LowCapacityThreshold),
			selection.WithListener(bridge.Listener()),
		)
		source.OnReady(c.controller.SetTaxonomy)
	}

	source.Start(ctx)
	logger.Debug("console opened",
		slog.String(logging.FieldContextID, backend.ContextID()),
		slog.String("backend", backendName(cfg, o.backend)),
		slog.Bool("read_only", o.readOnly),
	)
	return c, nil
}

func openBackend(cfg *config.Config, logger *slog.Logger) (persist.Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return persist.NewMemorySpace().Context(), nil
	case config.BackendSQLite, "":
		backend, err := persist.OpenSQLite(cfg.DatabasePath(),
			persist.WithPollInterval(cfg.WatchInterval()),
			persist.WithSQLiteLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("open selection database: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func backendName(cfg *config.Config, injected persist.Backend) string {
	if injected != nil {
		return "injected"
	}
	return cfg.Store.Backend
}

// Config returns the configuration the console was opened with.
func (c *Console) Config() *config.Config { return c.cfg }

// Store returns the read side of the selection.
func (c *Console) Store() *persist.Store { return c.store }

// Backend returns the keyed store backing this console.
func (c *Console) Backend() persist.Backend { return c.backend }

// Controller returns the selection controller, or nil for read-only consoles.
func (c *Console) Controller() *selection.Controller { return c.controller }

// Taxonomy returns the taxonomy source.
func (c *Console) Taxonomy() *taxonomy.Source { return c.taxonomy }

// WaitTaxonomy blocks until the taxonomy load finishes. On success the
// controller has already been recomputed against the tree.
func (c *Console) WaitTaxonomy(ctx context.Context) (*taxonomy.Tree, error) {
	tree, err := c.taxonomy.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return tree, nil
}

// Draft reads the stored campaign draft.
func (c *Console) Draft(ctx context.Context) (draft.Document, error) {
	return draft.LoadDocument(ctx, c.backend, c.cfg.Store.DraftKey)
}

// Close stops watching and releases the backend if the console opened it.
func (c *Console) Close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	errs = append(errs, c.closeBackend())
	return errors.Join(errs...)
}

func (c *Console) closeBackend() error {
	if !c.ownBackend || c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	return err
}
