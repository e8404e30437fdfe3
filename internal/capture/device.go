package capture

import (
	"context"
	"errors"
)

// Sentinel errors surfaced by session acquisition and capture operations.
var (
	// ErrNoDevice indicates enumeration found no attached reader.
	ErrNoDevice = errors.New("no capture device found")
	// ErrBusy indicates another session already owns the reader.
	ErrBusy = errors.New("capture device busy")
	// ErrCapture indicates the reader or its driver failed mid-operation.
	ErrCapture = errors.New("capture failed")
)

// Handle identifies one attached reader.
type Handle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Candidate pairs a decoded template with the external key it belongs to.
type Candidate struct {
	Tag      string
	Template []byte
}

// Match is the positive outcome of one identify operation.
type Match struct {
	Tag   string
	Score float64
}

// Device is the capability boundary to the fingerprint reader driver. Enroll
// and Identify are blocking calls that return only when the hardware
// completes or errors; the driver owns its own sample-count and retry policy.
type Device interface {
	Enumerate(ctx context.Context) ([]Handle, error)
	Open(ctx context.Context, handle Handle) error
	Close(ctx context.Context, handle Handle) error
	Enroll(ctx context.Context, handle Handle, tag string) ([]byte, error)
	Identify(ctx context.Context, handle Handle, candidates []Candidate) (*Match, error)
}
