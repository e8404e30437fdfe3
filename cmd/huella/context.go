package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"huella/internal/capture"
	"huella/internal/config"
	"huella/internal/identity"
	"huella/internal/logging"
	"huella/internal/printer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			OutputPaths: []string{
				"stdout",
				filepath.Join(cfg.Paths.LogDir, "huella.log"),
			},
		})
		if err != nil {
			c.loggerErr = fmt.Errorf("build logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withStore(fn func(*identity.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := identity.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) sessionManager(logger *slog.Logger) (*capture.SessionManager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	device, err := capture.NewHelperDevice(cfg)
	if err != nil {
		return nil, fmt.Errorf("capture helper: %w", err)
	}
	return capture.NewSessionManager(cfg, device, logger), nil
}

// maybeStartMonitor starts the reader hotplug monitor when configuration asks
// for it. The returned stop function is always safe to call.
func (c *commandContext) maybeStartMonitor(ctx context.Context, logger *slog.Logger) func() {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.Capture.MonitorReader {
		return func() {}
	}
	monitor := capture.NewMonitor(logger)
	if err := monitor.Start(ctx); err != nil {
		return func() {}
	}
	return monitor.Stop
}

func (c *commandContext) receipt(logger *slog.Logger) (printer.Receipt, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return printer.NewReceipt(cfg, logger), nil
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
