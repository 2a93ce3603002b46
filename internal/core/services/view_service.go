package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/hansubae/Ghighlights/pkg/tracing"

	"go.uber.org/zap"
)

type viewService struct {
	clipRepo ports.ClipRepository
	ledger   ports.ViewLedger
	window   time.Duration
	metrics  *MetricsService
	logger   *zap.SugaredLogger
}

func NewViewService(
	clipRepo ports.ClipRepository,
	ledger ports.ViewLedger,
	window time.Duration,
	metrics *MetricsService,
	logger *zap.SugaredLogger,
) ports.ViewService {
	if window <= 0 {
		window = domain.ViewWindow
	}
	return &viewService{
		clipRepo: clipRepo,
		ledger:   ledger,
		window:   window,
		metrics:  metrics,
		logger:   logger,
	}
}

// RecordView decides whether this request counts and, when it does,
// commits the ledger record and bumps the durable counter. The ledger
// lookup fails closed: a storage error surfaces as an error with no
// counter change, since guessing either way skews the metric.
//
// With the in-memory ledger the lookup-then-commit sequence is not held
// under a cross-request lock; near-simultaneous duplicates can both be
// accepted. The Redis ledger closes that window with a single
// insert-if-absent operation.
func (s *viewService) RecordView(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID, now time.Time) (domain.ViewDecision, int64, error) {
	ctx, span := tracing.TraceViewDecision(ctx, int64(clipID), string(clientID))
	defer span.End()

	clip, err := s.clipRepo.GetByID(ctx, clipID)
	if err != nil {
		return domain.ViewDecision{}, 0, err
	}

	rec := domain.ViewRecord{ClipID: clipID, ClientID: clientID, ObservedAt: now}

	accepted, err := s.decide(ctx, rec, now)
	if err != nil {
		s.metrics.RecordViewFailed()
		tracing.RecordError(ctx, err)
		return domain.ViewDecision{}, 0, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	if !accepted {
		s.metrics.RecordViewDuplicate(clipID)
		return domain.ViewDecision{Accepted: false}, clip.Views, nil
	}

	s.metrics.RecordViewAccepted(clipID)

	count, err := s.clipRepo.IncrementViews(ctx, clipID)
	if err != nil {
		// The ledger record is already committed. The drift of one view is
		// tolerated rather than rolled back; the viewer sees no error.
		s.logger.Warnw("counter increment failed after accepted view",
			"clip_id", clipID, "client_id", clientID, "error", err)
		return domain.ViewDecision{Accepted: true}, clip.Views, nil
	}

	return domain.ViewDecision{Accepted: true}, count, nil
}

func (s *viewService) decide(ctx context.Context, rec domain.ViewRecord, now time.Time) (bool, error) {
	// Ledgers with an insert-if-absent primitive decide and commit in one
	// step.
	if atomic, ok := s.ledger.(ports.AtomicViewLedger); ok {
		return atomic.TryAccept(ctx, rec)
	}

	last, err := s.ledger.LastAccepted(ctx, rec.ClipID, rec.ClientID)
	if err != nil {
		return false, err
	}
	if !last.IsZero() && now.Sub(last) < s.window {
		return false, nil
	}

	if err := s.ledger.Commit(ctx, rec); err != nil {
		// Commit failure after a positive decision is the documented
		// partial-failure case: count the view, log the drift.
		s.logger.Warnw("ledger commit failed for accepted view",
			"clip_id", rec.ClipID, "client_id", rec.ClientID, "error", err)
	}
	return true, nil
}
