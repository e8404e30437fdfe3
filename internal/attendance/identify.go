package attendance

import (
	"context"
	"log/slog"

	"huella/internal/capture"
	"huella/internal/identity"
	"huella/internal/logging"
	"huella/internal/printer"
	"huella/internal/template"
)

// Outcome describes one successful identification.
type Outcome struct {
	ExternalKey    string
	DisplayName    string
	Score          float64
	Recorded       bool
	ReceiptPrinted bool
}

// Identifier runs the capture-and-match workflow and records attendance on
// success.
type Identifier struct {
	store    *identity.Store
	sessions *capture.SessionManager
	recorder *Recorder
	receipt  printer.Receipt
	logger   *slog.Logger
}

// NewIdentifier constructs the identification workflow.
func NewIdentifier(store *identity.Store, sessions *capture.SessionManager, receipt printer.Receipt, logger *slog.Logger) *Identifier {
	return &Identifier{
		store:    store,
		sessions: sessions,
		recorder: NewRecorder(store, logger),
		receipt:  receipt,
		logger:   logging.NewComponentLogger(logger, "identify"),
	}
}

// Run captures one sample and matches it against every enrolled template.
// The candidate set is built fresh per attempt and discarded afterwards. A
// corrupt stored template excludes that one candidate with a warning; it
// never blocks identification of everyone else.
func (i *Identifier) Run(ctx context.Context) (*Outcome, error) {
	templates, err := i.store.AllTemplates(ctx)
	if err != nil {
		return nil, Wrap(ErrStorage, "identify", "load templates", "", err)
	}
	if len(templates) == 0 {
		return nil, Wrap(ErrNothingEnrolled, "identify", "", "", nil)
	}

	candidates := make([]capture.Candidate, 0, len(templates))
	for externalKey, encoded := range templates {
		raw, err := template.Decode(encoded)
		if err != nil {
			i.logger.Warn("skipping undecodable stored template",
				logging.String(logging.FieldExternalKey, externalKey),
				logging.Error(err),
			)
			continue
		}
		candidates = append(candidates, capture.Candidate{Tag: externalKey, Template: raw})
	}
	if len(candidates) == 0 {
		return nil, Wrap(ErrNothingEnrolled, "identify", "", "every stored template is corrupt", nil)
	}

	session, err := i.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	i.logger.Info("place finger on the reader",
		logging.String("device", session.Handle().Name),
		logging.Int("candidates", len(candidates)),
	)

	match, err := session.Identify(ctx, candidates)
	if err != nil {
		return nil, Wrap(ErrCaptureFault, "identify", "capture", "", err)
	}
	if match == nil {
		return nil, Wrap(ErrNoMatch, "identify", "", "", nil)
	}

	outcome := &Outcome{ExternalKey: match.Tag, Score: match.Score}

	ident, err := i.store.FindByExternalKey(ctx, match.Tag)
	if err != nil {
		// Degrade to the raw key; the match itself is still good.
		i.logger.Warn("identity lookup failed after match",
			logging.String(logging.FieldExternalKey, match.Tag),
			logging.Error(err),
		)
	}
	if ident != nil {
		outcome.DisplayName = ident.DisplayName()
	} else {
		outcome.DisplayName = match.Tag
	}

	i.logger.Info("identification successful",
		logging.String(logging.FieldExternalKey, outcome.ExternalKey),
		logging.String("name", outcome.DisplayName),
		logging.Float64("score", outcome.Score),
	)

	recorded, err := i.recorder.Record(ctx, outcome.ExternalKey)
	if err != nil {
		return nil, err
	}
	outcome.Recorded = recorded

	// Attendance is durable by now; a failed receipt must not change the result.
	if err := i.receipt.PrintLine(ctx, outcome.DisplayName); err != nil {
		i.logger.Warn("receipt print failed",
			logging.String("name", outcome.DisplayName),
			logging.Error(err),
		)
	} else {
		outcome.ReceiptPrinted = true
	}

	return outcome, nil
}
