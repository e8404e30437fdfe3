package attendance

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"huella/internal/capture"
	"huella/internal/identity"
	"huella/internal/logging"
	"huella/internal/printer"
)

// Service is the interactive boundary consumed by the presentation layer.
// Workflow runs execute on their own goroutine so the caller never blocks on
// hardware I/O; results are reported through the injected log sink rather
// than return values.
type Service struct {
	enroller   *Enroller
	identifier *Identifier
	store      *identity.Store
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewService wires the workflows against shared collaborators.
func NewService(store *identity.Store, sessions *capture.SessionManager, receipt printer.Receipt, logger *slog.Logger) *Service {
	return &Service{
		enroller:   NewEnroller(store, sessions, logger),
		identifier: NewIdentifier(store, sessions, receipt, logger),
		store:      store,
		logger:     logging.NewComponentLogger(logger, "attendance"),
	}
}

// RunEnrollment starts an enrollment run in the background. Validation
// failures are reported through the log sink like every other outcome.
func (s *Service) RunEnrollment(ctx context.Context, req EnrollRequest) {
	requestID := uuid.NewString()
	logger := s.logger.With(
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldWorkflow, "enroll"),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.enroller.Run(ctx, req); err != nil {
			logger.Error(Describe(err), logging.Error(err))
			return
		}
		logger.Info("enrollment finished",
			logging.String(logging.FieldExternalKey, req.ExternalKey),
		)
	}()
}

// RunIdentification starts an identification run in the background.
func (s *Service) RunIdentification(ctx context.Context) {
	requestID := uuid.NewString()
	logger := s.logger.With(
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldWorkflow, "identify"),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		outcome, err := s.identifier.Run(ctx)
		if err != nil {
			logger.Error(Describe(err), logging.Error(err))
			return
		}
		logger.Info("identification finished",
			logging.String(logging.FieldExternalKey, outcome.ExternalKey),
			logging.String("name", outcome.DisplayName),
			logging.Bool("recorded", outcome.Recorded),
			logging.Bool("receipt_printed", outcome.ReceiptPrinted),
		)
	}()
}

// ListEnrolledSummaries returns one line per enrolled identity ordered by
// family name.
func (s *Service) ListEnrolledSummaries(ctx context.Context) ([]string, error) {
	identities, err := s.store.ListIdentities(ctx)
	if err != nil {
		return nil, Wrap(ErrStorage, "list", "identities", "", err)
	}
	summaries := make([]string, 0, len(identities))
	for _, ident := range identities {
		summaries = append(summaries, ident.Summary())
	}
	return summaries, nil
}

// Wait blocks until every background workflow run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
