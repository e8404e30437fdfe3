package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validatePrinter(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.HelperBinary == "" {
		return errors.New("capture.helper_binary must be set")
	}
	if c.Capture.EnrollTimeoutSeconds <= 0 {
		return errors.New("capture.enroll_timeout_seconds must be positive")
	}
	if c.Capture.IdentifyTimeoutSeconds <= 0 {
		return errors.New("capture.identify_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePrinter() error {
	if c.Printer.Enabled && c.Printer.Device == "" {
		return errors.New("printer.device must be set when printer.enabled is true")
	}
	if c.Printer.Width <= 0 {
		return errors.New("printer.width must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
