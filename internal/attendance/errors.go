package attendance

import (
	"errors"
	"fmt"
	"strings"

	"huella/internal/capture"
)

// Workflow failure taxonomy. Device-resource errors are capture's sentinels
// so callers can classify without importing both packages.
var (
	// ErrValidation marks bad caller input; the device is never touched.
	ErrValidation = errors.New("validation error")
	// ErrNothingEnrolled marks an empty candidate set; the device is never opened.
	ErrNothingEnrolled = errors.New("nothing enrolled")
	// ErrNoMatch is the normal negative outcome of identification.
	ErrNoMatch = errors.New("no match")
	// ErrStorage marks a database-layer failure.
	ErrStorage = errors.New("storage fault")

	// ErrNoDevice and ErrDeviceBusy re-export the capture sentinels.
	ErrNoDevice   = capture.ErrNoDevice
	ErrDeviceBusy = capture.ErrBusy
	// ErrCaptureFault marks a hardware or driver failure during a capture.
	ErrCaptureFault = capture.ErrCapture
)

// Wrap builds an error message that includes workflow context while tagging
// it with the provided marker for later classification. The marker should be
// one of the sentinel errors above.
func Wrap(marker error, workflow, operation, message string, err error) error {
	detail := buildDetail(workflow, operation, message)
	if marker == nil {
		marker = ErrCaptureFault
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(workflow, operation, message string) string {
	parts := make([]string, 0, 3)
	if workflow = strings.TrimSpace(workflow); workflow != "" {
		parts = append(parts, workflow)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "workflow failure"
	}
	return strings.Join(parts, ": ")
}

// Describe renders one human-readable line for a workflow failure. The
// interactive layer shows this instead of the raw error chain.
func Describe(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid input: " + err.Error()
	case errors.Is(err, ErrNothingEnrolled):
		return "no identities enrolled; enroll someone first"
	case errors.Is(err, ErrNoMatch):
		return "fingerprint did not match any enrolled identity"
	case errors.Is(err, ErrNoDevice):
		return "no fingerprint reader found; check the USB connection"
	case errors.Is(err, ErrDeviceBusy):
		return "the fingerprint reader is busy with another operation"
	case errors.Is(err, ErrStorage):
		return "database failure: " + err.Error()
	case errors.Is(err, ErrCaptureFault):
		return "capture failed: " + err.Error()
	default:
		return err.Error()
	}
}
