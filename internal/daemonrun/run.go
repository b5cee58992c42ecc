package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reach/internal/config"
	"reach/internal/console"
	"reach/internal/daemon"
	"reach/internal/logging"
	"reach/internal/persist"
	"reach/internal/preflight"
)

// Options configures console process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Ready, when set, receives the daemon once it is serving.
	Ready func(*daemon.Daemon)
}

// Run serves the console until the context ends or the process is signalled.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("reach-%s.log", runID))

	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update reach.log link: %v\n", err)
	}

	if failed := preflight.Failed(preflight.RunAll(signalCtx, cfg)); len(failed) > 0 {
		for _, result := range failed {
			logger.Error("preflight check failed",
				slog.String("check", result.Name),
				slog.String("detail", result.Detail),
			)
		}
		return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
	}

	lock := persist.NewWriterLock(cfg.WriterLockPath())
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, persist.ErrWriterLocked) {
			return fmt.Errorf("another reach process owns the selection: %w", err)
		}
		return err
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "reach.pid")
	if err := writePIDFile(pidPath); err != nil {
		_ = lock.Release()
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	c, err := console.Open(signalCtx, cfg, logger)
	if err != nil {
		_ = lock.Release()
		logger.Error("open console", logging.Error(err))
		return err
	}

	d, err := daemon.New(cfg, c, lock, logger)
	if err != nil {
		_ = c.Close()
		_ = lock.Release()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}
	if opts.Ready != nil {
		opts.Ready(d)
	}

	if _, err := c.WaitTaxonomy(signalCtx); err != nil && signalCtx.Err() == nil {
		logger.Warn("taxonomy unavailable; selections are ignored until restart",
			logging.Error(err),
			slog.String(logging.FieldAlert, "taxonomy_failed"),
		)
	}

	<-signalCtx.Done()
	logger.Info("reach console shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "reach.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	} else {
		if err := os.Link(target, current); err == nil {
			return nil
		}
		return fmt.Errorf("link log pointer: %w", err)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
