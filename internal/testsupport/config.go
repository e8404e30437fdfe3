// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"huella/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Capture.LockFile = filepath.Join(base, "capture.lock")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithHelperBinary overrides the capture helper binary on the test config.
func WithHelperBinary(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Capture.HelperBinary = path
	}
}

// WithPrinterDevice enables the printer pointed at the given device path.
func WithPrinterDevice(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Printer.Enabled = true
		cfg.Printer.Device = path
	}
}
