package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"huella/internal/config"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, stdin []byte) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if len(stdin) > 0 {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", binary, err, detail)
		}
		return nil, fmt.Errorf("%s: %w", binary, err)
	}
	return out, nil
}

// Option configures the helper device.
type Option func(*HelperDevice)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(d *HelperDevice) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// HelperDevice drives the reader through the configured helper binary. The
// helper speaks JSON on stdout; prompts for finger placement go to the
// helper's own stderr and never reach this process.
type HelperDevice struct {
	binary          string
	enrollTimeout   time.Duration
	identifyTimeout time.Duration
	exec            Executor
}

// NewHelperDevice constructs a Device backed by cfg's helper binary.
func NewHelperDevice(cfg *config.Config, opts ...Option) (*HelperDevice, error) {
	binary := strings.TrimSpace(cfg.Capture.HelperBinary)
	if binary == "" {
		return nil, errors.New("capture helper binary required")
	}
	device := &HelperDevice{
		binary:          binary,
		enrollTimeout:   time.Duration(cfg.Capture.EnrollTimeoutSeconds) * time.Second,
		identifyTimeout: time.Duration(cfg.Capture.IdentifyTimeoutSeconds) * time.Second,
		exec:            commandExecutor{},
	}
	for _, opt := range opts {
		opt(device)
	}
	return device, nil
}

type enumerateResponse struct {
	Devices []Handle `json:"devices"`
}

type enrollResponse struct {
	Template string `json:"template"`
}

type identifyRequest struct {
	Candidates []identifyCandidate `json:"candidates"`
}

type identifyCandidate struct {
	Tag      string `json:"tag"`
	Template string `json:"template"`
}

type identifyResponse struct {
	Matched bool    `json:"matched"`
	Tag     string  `json:"tag,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// Enumerate lists attached readers.
func (d *HelperDevice) Enumerate(ctx context.Context) ([]Handle, error) {
	out, err := d.exec.Run(ctx, d.binary, []string{"enumerate"}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate: %w", ErrCapture, err)
	}
	var resp enumerateResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse enumerate output: %w", ErrCapture, err)
	}
	return resp.Devices, nil
}

// Open acquires the reader in the helper.
func (d *HelperDevice) Open(ctx context.Context, handle Handle) error {
	if _, err := d.exec.Run(ctx, d.binary, []string{"open", "--device", handle.ID}, nil); err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrCapture, handle.ID, err)
	}
	return nil
}

// Close releases the reader in the helper.
func (d *HelperDevice) Close(ctx context.Context, handle Handle) error {
	if _, err := d.exec.Run(ctx, d.binary, []string{"close", "--device", handle.ID}, nil); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrCapture, handle.ID, err)
	}
	return nil
}

// Enroll runs the multi-sample enrollment sequence and returns the produced
// raw template bytes. The helper governs how many finger placements it
// requires.
func (d *HelperDevice) Enroll(ctx context.Context, handle Handle, tag string) ([]byte, error) {
	runCtx := ctx
	if d.enrollTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.enrollTimeout)
		defer cancel()
	}

	out, err := d.exec.Run(runCtx, d.binary, []string{"enroll", "--device", handle.ID, "--tag", tag}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: enroll: %w", ErrCapture, err)
	}
	var resp enrollResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse enroll output: %w", ErrCapture, err)
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: decode enroll template: %w", ErrCapture, err)
	}
	return raw, nil
}

// Identify captures one sample and compares it against the candidate set. A
// nil Match means the sample matched nobody; the helper owns thresholding and
// tie-breaking.
func (d *HelperDevice) Identify(ctx context.Context, handle Handle, candidates []Candidate) (*Match, error) {
	req := identifyRequest{Candidates: make([]identifyCandidate, 0, len(candidates))}
	for _, candidate := range candidates {
		req.Candidates = append(req.Candidates, identifyCandidate{
			Tag:      candidate.Tag,
			Template: base64.StdEncoding.EncodeToString(candidate.Template),
		})
	}
	stdin, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal candidates: %w", ErrCapture, err)
	}

	runCtx := ctx
	if d.identifyTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.identifyTimeout)
		defer cancel()
	}

	out, err := d.exec.Run(runCtx, d.binary, []string{"identify", "--device", handle.ID}, stdin)
	if err != nil {
		return nil, fmt.Errorf("%w: identify: %w", ErrCapture, err)
	}
	var resp identifyResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse identify output: %w", ErrCapture, err)
	}
	if !resp.Matched {
		return nil, nil
	}
	return &Match{Tag: resp.Tag, Score: resp.Score}, nil
}
