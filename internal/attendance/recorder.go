package attendance

import (
	"context"
	"log/slog"

	"huella/internal/identity"
	"huella/internal/logging"
)

// Recorder appends clocking records for resolved identities. Each successful
// identification produces exactly one record; there is no deduplication
// window, so two clock-ins seconds apart both persist.
type Recorder struct {
	store  *identity.Store
	logger *slog.Logger
}

// NewRecorder constructs the attendance recorder.
func NewRecorder(store *identity.Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logging.NewComponentLogger(logger, "recorder"),
	}
}

// Record appends one clocking for the external key. It returns false when the
// key no longer resolves, which is the normal became-unenrolled race between
// match and record, not a fault.
func (r *Recorder) Record(ctx context.Context, externalKey string) (bool, error) {
	written, err := r.store.AppendClocking(ctx, externalKey)
	if err != nil {
		return false, Wrap(ErrStorage, "record", "append clocking", "", err)
	}
	if !written {
		r.logger.Warn("identity disappeared between match and record",
			logging.String(logging.FieldExternalKey, externalKey),
		)
		return false, nil
	}
	r.logger.Info("attendance recorded", logging.String(logging.FieldExternalKey, externalKey))
	return true, nil
}
