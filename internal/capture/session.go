package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"huella/internal/config"
	"huella/internal/logging"
)

// State tracks the session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateDiscovering
	StateNoDevice
	StateOpened
	StateInUse
	StateClosed
)

// String returns a human-readable label for the session state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDiscovering:
		return "discovering"
	case StateNoDevice:
		return "no_device"
	case StateOpened:
		return "opened"
	case StateInUse:
		return "in_use"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// SessionManager hands out exclusive reader sessions. A sync.Mutex guards
// in-process callers and a file lock guards other processes; both are
// try-locks so a second concurrent acquisition fails fast with ErrBusy
// instead of queueing behind a capture that can take tens of seconds.
type SessionManager struct {
	device   Device
	logger   *slog.Logger
	lockPath string

	mu sync.Mutex
}

// NewSessionManager constructs a manager for the configured reader.
func NewSessionManager(cfg *config.Config, device Device, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		device:   device,
		logger:   logging.NewComponentLogger(logger, "capture"),
		lockPath: cfg.Capture.LockFile,
	}
}

// Acquire discovers the reader, takes exclusive ownership, and opens it.
// Always pair with Session.Close; the returned session closes exactly once
// even when the caller hits a fault mid-capture.
func (m *SessionManager) Acquire(ctx context.Context) (*Session, error) {
	if !m.mu.TryLock() {
		return nil, ErrBusy
	}

	fileLock, err := m.acquireFileLock()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	release := func() {
		if fileLock != nil {
			_ = fileLock.Unlock()
		}
		m.mu.Unlock()
	}

	m.logger.Debug("discovering capture devices", logging.String("state", StateDiscovering.String()))
	handles, err := m.device.Enumerate(ctx)
	if err != nil {
		release()
		return nil, err
	}
	if len(handles) == 0 {
		release()
		m.logger.Debug("no capture device attached", logging.String("state", StateNoDevice.String()))
		return nil, ErrNoDevice
	}

	// Always the first enumerated device; multi-device selection is out of scope.
	handle := handles[0]
	if err := m.device.Open(ctx, handle); err != nil {
		release()
		return nil, err
	}

	m.logger.Debug("capture device opened",
		logging.String("device", handle.Name),
		logging.String("state", StateOpened.String()),
	)

	return &Session{
		manager:  m,
		fileLock: fileLock,
		handle:   handle,
		state:    StateOpened,
	}, nil
}

func (m *SessionManager) acquireFileLock() (*flock.Flock, error) {
	if m.lockPath == "" {
		return nil, nil
	}
	if dir := filepath.Dir(m.lockPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lock directory: %w", err)
		}
	}
	fileLock := flock.New(m.lockPath)
	ok, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire capture lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return fileLock, nil
}

// Session is one exclusive ownership of the reader from open to close.
type Session struct {
	manager  *SessionManager
	fileLock *flock.Flock
	handle   Handle

	stateMu   sync.Mutex
	state     State
	closeOnce sync.Once
}

// Handle returns the owned device handle.
func (s *Session) Handle() Handle {
	return s.handle
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// Enroll drives the device's multi-sample enrollment sequence. Blocks until
// the hardware completes or errors.
func (s *Session) Enroll(ctx context.Context, tag string) ([]byte, error) {
	if err := s.enterInUse(); err != nil {
		return nil, err
	}
	defer s.leaveInUse()
	return s.manager.device.Enroll(ctx, s.handle, tag)
}

// Identify issues one capture-and-match operation against the candidate set.
func (s *Session) Identify(ctx context.Context, candidates []Candidate) (*Match, error) {
	if err := s.enterInUse(); err != nil {
		return nil, err
	}
	defer s.leaveInUse()
	return s.manager.device.Identify(ctx, s.handle, candidates)
}

func (s *Session) enterInUse() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != StateOpened {
		return fmt.Errorf("%w: session is %s", ErrCapture, s.state)
	}
	s.state = StateInUse
	return nil
}

func (s *Session) leaveInUse() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state == StateInUse {
		s.state = StateOpened
	}
}

// Close releases the device and both exclusivity locks. Safe to call more
// than once; only the first call has any effect.
func (s *Session) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		s.stateMu.Lock()
		s.state = StateClosed
		s.stateMu.Unlock()

		if err := s.manager.device.Close(ctx, s.handle); err != nil {
			s.manager.logger.Warn("capture device close failed", logging.Error(err))
		}
		if s.fileLock != nil {
			if err := s.fileLock.Unlock(); err != nil {
				s.manager.logger.Warn("capture lock release failed", logging.Error(err))
			}
		}
		s.manager.mu.Unlock()
		s.manager.logger.Debug("capture device closed", logging.String("state", StateClosed.String()))
	})
}
