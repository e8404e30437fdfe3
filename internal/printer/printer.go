// Package printer renders clocking receipts on a line printer.
//
// The physical printer is a raw character device (typically /dev/usb/lp0)
// that accepts plain text. Workflows treat print failures as advisory; the
// attendance record is already durable by the time a receipt is attempted.
package printer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sys/unix"

	"huella/internal/config"
	"huella/internal/logging"
)

// Receipt is the capability the identification workflow needs: render one
// line of text on the physical printer.
type Receipt interface {
	PrintLine(ctx context.Context, text string) error
}

// NewReceipt builds a receipt printer from config. When the printer is
// disabled, a noop implementation is returned.
func NewReceipt(cfg *config.Config, logger *slog.Logger) Receipt {
	if !cfg.Printer.Enabled || strings.TrimSpace(cfg.Printer.Device) == "" {
		return noopReceipt{}
	}
	return &deviceReceipt{
		device: cfg.Printer.Device,
		width:  cfg.Printer.Width,
		logger: logging.NewComponentLogger(logger, "printer"),
	}
}

type deviceReceipt struct {
	device string
	width  int
	logger *slog.Logger
}

// PrintLine writes one newline-terminated line to the printer device. The
// device is opened non-blocking so an offline printer fails immediately
// instead of hanging the workflow.
func (p *deviceReceipt) PrintLine(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line := formatLine(text, p.width)

	fd, err := unix.Open(p.device, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("open printer %s: %w", p.device, err)
	}
	defer unix.Close(fd) //nolint:errcheck

	data := []byte(line + "\n")
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			return fmt.Errorf("write printer %s: %w", p.device, err)
		}
		data = data[n:]
	}

	p.logger.Debug("receipt line printed", logging.String("device", p.device))
	return nil
}

func formatLine(text string, width int) string {
	line := strings.TrimSpace(text)
	if width > 0 && len([]rune(line)) > width {
		runes := []rune(line)
		line = string(runes[:width])
	}
	return line
}

type noopReceipt struct{}

func (noopReceipt) PrintLine(context.Context, string) error { return nil }
