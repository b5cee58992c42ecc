package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"reach/internal/config"
	"reach/internal/console"
	"reach/internal/logging"
	"reach/internal/persist"
	"reach/internal/taxonomy"
)

// Daemon serves one console over HTTP and owns the writer lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	console *console.Console
	lock    *persist.WriterLock
	api     *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	ContextID    string
	Backend      string
	DatabasePath string
	LockFilePath string
	Taxonomy     taxonomy.Status
	TaxonomyErr  error
	Categories   int
	Subscribers  int
}

// New constructs a daemon around an opened console. lock, when non-nil, must
// already be acquired; Close releases it.
func New(cfg *config.Config, c *console.Console, lock *persist.WriterLock, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || c == nil {
		return nil, errors.New("daemon requires config and console")
	}
	if c.Controller() == nil {
		return nil, errors.New("daemon requires a writable console")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		cfg:     cfg,
		logger:  logger.With(slog.String(logging.FieldComponent, "daemon")),
		console: c,
		lock:    lock,
	}
	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api: %w", err)
	}

	d.running.Store(true)
	attrs := []any{slog.String("bind", d.api.address())}
	if d.lock != nil {
		attrs = append(attrs, slog.String("lock", d.lock.Path()))
	}
	d.logger.Info("reach console started", attrs...)
	return nil
}

// Stop stops serving. The console stays open until Close.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("reach console stopped")
}

// Close stops serving, closes the console, and releases the writer lock.
func (d *Daemon) Close() error {
	d.Stop()
	err := d.console.Close()
	if d.lock != nil {
		if unlockErr := d.lock.Release(); unlockErr != nil {
			d.logger.Warn("failed to release writer lock", logging.Error(unlockErr))
		}
		d.lock = nil
	}
	return err
}

// Console returns the served console.
func (d *Daemon) Console() *console.Console { return d.console }

// Addr returns the address the API listens on, once started.
func (d *Daemon) Addr() string { return d.api.address() }

// Status reports runtime information for /api/status.
func (d *Daemon) Status() Status {
	c := d.console
	state, loadErr := c.Taxonomy().Status()
	status := Status{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		ContextID:   c.Store().ContextID(),
		Backend:     d.cfg.Store.Backend,
		Taxonomy:    state,
		TaxonomyErr: loadErr,
		Categories:  len(taxonomy.ListCategories(c.Taxonomy().Tree())),
		Subscribers: d.api.streams.count(),
	}
	if d.cfg.Store.Backend == config.BackendSQLite {
		status.DatabasePath = d.cfg.DatabasePath()
	}
	if d.lock != nil {
		status.LockFilePath = d.lock.Path()
	}
	return status
}
