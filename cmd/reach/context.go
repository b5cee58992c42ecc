package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reach/internal/config"
	"reach/internal/console"
	"reach/internal/logging"
	"reach/internal/persist"
	"reach/internal/selection"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) logger() *slog.Logger {
	logger, err := logging.NewFromConfig(c.configValue())
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withReader opens a console that only observes the selection.
func (c *commandContext) withReader(ctx context.Context, fn func(*console.Console) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	con, err := console.Open(ctx, cfg, c.logger(), console.ReadOnly())
	if err != nil {
		return err
	}
	defer con.Close()
	return fn(con)
}

// withController takes the writer lock, opens a console, and waits for the
// taxonomy before handing over the controller.
func (c *commandContext) withController(ctx context.Context, fn func(*console.Console, *selection.Controller) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := persist.NewWriterLock(cfg.WriterLockPath())
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, persist.ErrWriterLocked) {
			return fmt.Errorf("%w; use the console API while `reach serve` is running", err)
		}
		return err
	}
	defer lock.Release()

	con, err := console.Open(ctx, cfg, c.logger())
	if err != nil {
		return err
	}
	defer con.Close()
	if _, err := con.WaitTaxonomy(ctx); err != nil {
		return err
	}
	return fn(con, con.Controller())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
