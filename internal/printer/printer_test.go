package printer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"huella/internal/logging"
	"huella/internal/printer"
	"huella/internal/testsupport"
)

func TestNewReceiptDisabledIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	receipt := printer.NewReceipt(cfg, logging.NewNop())

	if err := receipt.PrintLine(context.Background(), "Ana Soto"); err != nil {
		t.Fatalf("noop receipt should never fail: %v", err)
	}
}

func TestPrintLineWritesToDevice(t *testing.T) {
	device := filepath.Join(t.TempDir(), "lp0")
	if err := os.WriteFile(device, nil, 0o644); err != nil {
		t.Fatalf("create device file: %v", err)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithPrinterDevice(device))
	receipt := printer.NewReceipt(cfg, logging.NewNop())

	if err := receipt.PrintLine(context.Background(), "Ana Soto  "); err != nil {
		t.Fatalf("PrintLine failed: %v", err)
	}

	data, err := os.ReadFile(device)
	if err != nil {
		t.Fatalf("read device file: %v", err)
	}
	if string(data) != "Ana Soto\n" {
		t.Fatalf("unexpected device contents: %q", data)
	}
}

func TestPrintLineTruncatesToWidth(t *testing.T) {
	device := filepath.Join(t.TempDir(), "lp0")
	if err := os.WriteFile(device, nil, 0o644); err != nil {
		t.Fatalf("create device file: %v", err)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithPrinterDevice(device))
	cfg.Printer.Width = 10
	receipt := printer.NewReceipt(cfg, logging.NewNop())

	if err := receipt.PrintLine(context.Background(), strings.Repeat("x", 50)); err != nil {
		t.Fatalf("PrintLine failed: %v", err)
	}

	data, err := os.ReadFile(device)
	if err != nil {
		t.Fatalf("read device file: %v", err)
	}
	if string(data) != strings.Repeat("x", 10)+"\n" {
		t.Fatalf("unexpected device contents: %q", data)
	}
}

func TestPrintLineMissingDeviceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPrinterDevice(filepath.Join(t.TempDir(), "missing", "lp0")))
	receipt := printer.NewReceipt(cfg, logging.NewNop())

	if err := receipt.PrintLine(context.Background(), "Ana Soto"); err == nil {
		t.Fatal("expected error for missing printer device")
	}
}
