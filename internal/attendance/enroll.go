package attendance

import (
	"context"
	"log/slog"
	"strings"

	"huella/internal/capture"
	"huella/internal/identity"
	"huella/internal/logging"
	"huella/internal/template"
)

// EnrollRequest carries the caller-supplied identity data for one enrollment.
type EnrollRequest struct {
	GivenName     string
	FamilyName    string
	ExternalKey   string
	SecondaryCode string
}

// Validate trims the request in place and checks required fields. It never
// touches the device.
func (r *EnrollRequest) Validate() error {
	r.GivenName = strings.TrimSpace(r.GivenName)
	r.FamilyName = strings.TrimSpace(r.FamilyName)
	r.ExternalKey = strings.TrimSpace(r.ExternalKey)
	r.SecondaryCode = strings.TrimSpace(r.SecondaryCode)

	if r.GivenName == "" {
		return Wrap(ErrValidation, "enroll", "validate", "given name is required", nil)
	}
	if r.FamilyName == "" {
		return Wrap(ErrValidation, "enroll", "validate", "family name is required", nil)
	}
	if r.ExternalKey == "" {
		return Wrap(ErrValidation, "enroll", "validate", "external key is required", nil)
	}
	return nil
}

// Enroller drives the capture device through one enrollment and commits the
// produced template.
type Enroller struct {
	store    *identity.Store
	sessions *capture.SessionManager
	logger   *slog.Logger
}

// NewEnroller constructs the enrollment workflow.
func NewEnroller(store *identity.Store, sessions *capture.SessionManager, logger *slog.Logger) *Enroller {
	return &Enroller{
		store:    store,
		sessions: sessions,
		logger:   logging.NewComponentLogger(logger, "enroll"),
	}
}

// Run validates the request, captures one template, and upserts the identity.
// Re-enrollment for an existing external key overwrites the stored template;
// the store guarantees that, not this workflow. No partial identity is ever
// written: the upsert only runs after the device reports success.
func (e *Enroller) Run(ctx context.Context, req EnrollRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	e.logger.Info("enrollment started",
		logging.String(logging.FieldExternalKey, req.ExternalKey),
		logging.String("name", req.GivenName+" "+req.FamilyName),
	)

	session, err := e.sessions.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	e.logger.Info("place finger on the reader; the device will ask for several samples",
		logging.String("device", session.Handle().Name),
	)

	raw, err := session.Enroll(ctx, req.ExternalKey)
	if err != nil {
		return Wrap(ErrCaptureFault, "enroll", "capture", "", err)
	}
	if len(raw) == 0 {
		return Wrap(ErrCaptureFault, "enroll", "capture", "device produced an empty template", nil)
	}

	err = e.store.Upsert(ctx, identity.Identity{
		GivenName:     req.GivenName,
		FamilyName:    req.FamilyName,
		ExternalKey:   req.ExternalKey,
		SecondaryCode: req.SecondaryCode,
		Template:      template.Encode(raw),
	})
	if err != nil {
		return Wrap(ErrStorage, "enroll", "upsert", "", err)
	}

	e.logger.Info("enrollment complete",
		logging.String(logging.FieldExternalKey, req.ExternalKey),
		logging.Int("template_bytes", len(raw)),
	)
	return nil
}
