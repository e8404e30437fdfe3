package attendance_test

import (
	"context"
	"sync"
	"testing"

	"huella/internal/attendance"
	"huella/internal/capture"
	"huella/internal/config"
	"huella/internal/identity"
	"huella/internal/logging"
	"huella/internal/testsupport"
)

// stubDevice implements capture.Device with scripted outcomes.
type stubDevice struct {
	mu             sync.Mutex
	handles        []capture.Handle
	enumerateCalls int
	openCount      int
	closeCount     int
	identifyCalls  int
	lastCandidates []capture.Candidate

	enrollTemplate []byte
	enrollErr      error
	identifyMatch  *capture.Match
	identifyErr    error
}

func newStubDevice() *stubDevice {
	return &stubDevice{
		handles:        []capture.Handle{{ID: "dev0", Name: "Test Reader"}},
		enrollTemplate: []byte{0xAA, 0xBB, 0xCC},
	}
}

func (d *stubDevice) Enumerate(context.Context) ([]capture.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enumerateCalls++
	return d.handles, nil
}

func (d *stubDevice) Open(context.Context, capture.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openCount++
	return nil
}

func (d *stubDevice) Close(context.Context, capture.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCount++
	return nil
}

func (d *stubDevice) Enroll(context.Context, capture.Handle, string) ([]byte, error) {
	return d.enrollTemplate, d.enrollErr
}

func (d *stubDevice) Identify(_ context.Context, _ capture.Handle, candidates []capture.Candidate) (*capture.Match, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.identifyCalls++
	d.lastCandidates = candidates
	return d.identifyMatch, d.identifyErr
}

// stubReceipt records print invocations and can be told to fail.
type stubReceipt struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (r *stubReceipt) PrintLine(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.lines = append(r.lines, text)
	return nil
}

type harness struct {
	cfg     *config.Config
	store   *identity.Store
	device  *stubDevice
	receipt *stubReceipt
	manager *capture.SessionManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	device := newStubDevice()
	return &harness{
		cfg:     cfg,
		store:   store,
		device:  device,
		receipt: &stubReceipt{},
		manager: capture.NewSessionManager(cfg, device, logging.NewNop()),
	}
}

func (h *harness) enroller() *attendance.Enroller {
	return attendance.NewEnroller(h.store, h.manager, logging.NewNop())
}

func (h *harness) identifier() *attendance.Identifier {
	return attendance.NewIdentifier(h.store, h.manager, h.receipt, logging.NewNop())
}

func (h *harness) clockingCount(t *testing.T) int {
	t.Helper()
	count, err := h.store.CountClockings(context.Background())
	if err != nil {
		t.Fatalf("CountClockings failed: %v", err)
	}
	return count
}
