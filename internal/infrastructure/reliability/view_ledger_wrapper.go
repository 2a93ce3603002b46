package reliability

import (
	"context"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/hansubae/Ghighlights/pkg/circuitbreaker"
	"github.com/hansubae/Ghighlights/pkg/retry"

	"go.uber.org/zap"
)

// ViewLedgerWrapper wraps a ViewLedger with retry logic and a circuit
// breaker. An exhausted retry or an open circuit still surfaces as an
// error; the view service treats that as a failed lookup and rejects
// the view, so the wrapper never relaxes the fail-closed behavior.
type ViewLedgerWrapper struct {
	ledger ports.ViewLedger
	logger *zap.SugaredLogger

	retryConfig    retry.Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewViewLedgerWrapper creates a wrapper around ledger.
func NewViewLedgerWrapper(
	ledger ports.ViewLedger,
	retryConfig retry.Config,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) *ViewLedgerWrapper {
	wrapper := &ViewLedgerWrapper{
		ledger:         ledger,
		logger:         logger,
		retryConfig:    retryConfig,
		circuitBreaker: circuitbreaker.New(cbConfig),
	}

	wrapper.circuitBreaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("view ledger circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return wrapper
}

func (w *ViewLedgerWrapper) LastAccepted(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID) (time.Time, error) {
	if !w.retryConfig.Enabled {
		return w.ledger.LastAccepted(ctx, clipID, clientID)
	}

	return retry.DoWithResult(ctx, w.retryConfig, func() (time.Time, error) {
		return circuitbreaker.Run(ctx, w.circuitBreaker, func() (time.Time, error) {
			return w.ledger.LastAccepted(ctx, clipID, clientID)
		})
	})
}

func (w *ViewLedgerWrapper) Commit(ctx context.Context, rec domain.ViewRecord) error {
	if !w.retryConfig.Enabled {
		return w.ledger.Commit(ctx, rec)
	}

	return retry.Do(ctx, w.retryConfig, func() error {
		return w.circuitBreaker.Execute(ctx, func() error {
			return w.ledger.Commit(ctx, rec)
		})
	})
}

// GetCircuitBreakerStats returns circuit breaker statistics.
func (w *ViewLedgerWrapper) GetCircuitBreakerStats() circuitbreaker.Stats {
	return w.circuitBreaker.GetStats()
}

// AtomicViewLedgerWrapper additionally exposes the wrapped ledger's
// TryAccept. Wrapping must not hide atomicity: the view service picks
// its decide path by capability, so an atomic ledger keeps reporting as
// atomic through the wrapper.
type AtomicViewLedgerWrapper struct {
	*ViewLedgerWrapper
	atomic ports.AtomicViewLedger
}

// NewAtomicViewLedgerWrapper creates a wrapper around an atomic ledger.
func NewAtomicViewLedgerWrapper(
	ledger ports.AtomicViewLedger,
	retryConfig retry.Config,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) *AtomicViewLedgerWrapper {
	return &AtomicViewLedgerWrapper{
		ViewLedgerWrapper: NewViewLedgerWrapper(ledger, retryConfig, cbConfig, logger),
		atomic:            ledger,
	}
}

// TryAccept is safe to retry: a first attempt that actually landed makes
// the retry observe the existing record and return false, which only
// errs toward rejecting, never double counting.
func (w *AtomicViewLedgerWrapper) TryAccept(ctx context.Context, rec domain.ViewRecord) (bool, error) {
	if !w.retryConfig.Enabled {
		return w.atomic.TryAccept(ctx, rec)
	}

	return retry.DoWithResult(ctx, w.retryConfig, func() (bool, error) {
		return circuitbreaker.Run(ctx, w.circuitBreaker, func() (bool, error) {
			return w.atomic.TryAccept(ctx, rec)
		})
	})
}
