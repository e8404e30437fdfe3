package capture

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"huella/internal/logging"
)

// Monitor listens for udev netlink events and logs reader attach/detach so
// operators can diagnose flaky USB readers without restarting the app.
// Advisory only: workflows never depend on it.
type Monitor struct {
	logger *slog.Logger

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor creates a udev monitor for USB device events.
func NewMonitor(logger *slog.Logger) *Monitor {
	return &Monitor{
		logger: logging.NewComponentLogger(logger, "reader-monitor"),
	}
}

// Start begins listening for udev netlink events. Failure to connect is
// non-fatal; the monitor just stays idle.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; reader events unavailable",
			logging.Error(err),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("reader monitor started")
	return nil
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("reader monitor stopped")
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, buildUSBMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("reader monitor error", logging.Error(err))
		}
	}
}

// buildUSBMatcher matches USB device add/remove events.
func buildUSBMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "usb",
			"DEVTYPE":   "usb_device",
		},
	})
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	label := deviceLabel(uevent)
	switch uevent.Action {
	case "add":
		m.logger.Info("usb device attached", logging.String("device", label))
	case "remove":
		m.logger.Info("usb device detached", logging.String("device", label))
	default:
		m.logger.Debug("usb event ignored",
			logging.String("action", string(uevent.Action)),
			logging.String("device", label),
		)
	}
}

func deviceLabel(uevent netlink.UEvent) string {
	if product := uevent.Env["PRODUCT"]; product != "" {
		return product
	}
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}
	parts := strings.Split(uevent.KObj, "/")
	if len(parts) == 0 {
		return uevent.KObj
	}
	return parts[len(parts)-1]
}
