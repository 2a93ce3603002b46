package reliability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/pkg/circuitbreaker"
	"github.com/hansubae/Ghighlights/pkg/retry"

	"go.uber.org/zap"
)

var errLedgerDown = errors.New("ledger down")

// flakyLedger fails the first failures calls of each method, then succeeds.
type flakyLedger struct {
	failures int

	lookupCalls int
	commitCalls int
	tryCalls    int

	lastAccepted time.Time
	accept       bool
}

func (l *flakyLedger) LastAccepted(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID) (time.Time, error) {
	l.lookupCalls++
	if l.lookupCalls <= l.failures {
		return time.Time{}, errLedgerDown
	}
	return l.lastAccepted, nil
}

func (l *flakyLedger) Commit(ctx context.Context, rec domain.ViewRecord) error {
	l.commitCalls++
	if l.commitCalls <= l.failures {
		return errLedgerDown
	}
	return nil
}

func (l *flakyLedger) TryAccept(ctx context.Context, rec domain.ViewRecord) (bool, error) {
	l.tryCalls++
	if l.tryCalls <= l.failures {
		return false, errLedgerDown
	}
	return l.accept, nil
}

func fastRetryConfig(maxAttempts int) retry.Config {
	return retry.Config{
		Enabled:      true,
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func testRecord() domain.ViewRecord {
	return domain.ViewRecord{ClipID: 1, ClientID: "9.9.9.9", ObservedAt: time.Now()}
}

func TestLastAcceptedRetriesTransientFailure(t *testing.T) {
	accepted := time.Now().Add(-time.Hour)
	ledger := &flakyLedger{failures: 2, lastAccepted: accepted}

	w := NewViewLedgerWrapper(ledger, fastRetryConfig(3), circuitbreaker.DefaultConfig(), zap.NewNop().Sugar())

	got, err := w.LastAccepted(context.Background(), 1, "9.9.9.9")
	if err != nil {
		t.Fatalf("LastAccepted: %v", err)
	}
	if !got.Equal(accepted) {
		t.Errorf("got %v, want %v", got, accepted)
	}
	if ledger.lookupCalls != 3 {
		t.Errorf("lookupCalls = %d, want 3", ledger.lookupCalls)
	}
}

func TestLastAcceptedExhaustedRetriesSurfaceError(t *testing.T) {
	ledger := &flakyLedger{failures: 100}

	w := NewViewLedgerWrapper(ledger, fastRetryConfig(2), circuitbreaker.DefaultConfig(), zap.NewNop().Sugar())

	_, err := w.LastAccepted(context.Background(), 1, "9.9.9.9")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, errLedgerDown) {
		t.Errorf("error %v does not wrap the ledger failure", err)
	}
}

func TestCommitRetries(t *testing.T) {
	ledger := &flakyLedger{failures: 1}

	w := NewViewLedgerWrapper(ledger, fastRetryConfig(2), circuitbreaker.DefaultConfig(), zap.NewNop().Sugar())

	if err := w.Commit(context.Background(), testRecord()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ledger.commitCalls != 2 {
		t.Errorf("commitCalls = %d, want 2", ledger.commitCalls)
	}
}

func TestRetryDisabledCallsOnce(t *testing.T) {
	ledger := &flakyLedger{failures: 100}

	w := NewViewLedgerWrapper(ledger, retry.Config{Enabled: false}, circuitbreaker.DefaultConfig(), zap.NewNop().Sugar())

	if _, err := w.LastAccepted(context.Background(), 1, "9.9.9.9"); err == nil {
		t.Fatal("expected error")
	}
	if ledger.lookupCalls != 1 {
		t.Errorf("lookupCalls = %d, want 1", ledger.lookupCalls)
	}
}

func TestAtomicWrapperTryAcceptPassesThrough(t *testing.T) {
	ledger := &flakyLedger{accept: true}

	w := NewAtomicViewLedgerWrapper(ledger, fastRetryConfig(2), circuitbreaker.DefaultConfig(), zap.NewNop().Sugar())

	accepted, err := w.TryAccept(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("TryAccept: %v", err)
	}
	if !accepted {
		t.Error("expected the view to be accepted")
	}
}

func TestAtomicWrapperTryAcceptRetries(t *testing.T) {
	ledger := &flakyLedger{failures: 1, accept: true}

	w := NewAtomicViewLedgerWrapper(ledger, fastRetryConfig(2), circuitbreaker.DefaultConfig(), zap.NewNop().Sugar())

	accepted, err := w.TryAccept(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("TryAccept: %v", err)
	}
	if !accepted {
		t.Error("expected the view to be accepted after a retry")
	}
	if ledger.tryCalls != 2 {
		t.Errorf("tryCalls = %d, want 2", ledger.tryCalls)
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	ledger := &flakyLedger{failures: 1000}

	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		MaxRequestsHalfOpen: 1,
	}

	w := NewViewLedgerWrapper(ledger, fastRetryConfig(5), cbConfig, zap.NewNop().Sugar())

	if _, err := w.LastAccepted(context.Background(), 1, "9.9.9.9"); err == nil {
		t.Fatal("expected error")
	}

	if got := w.GetCircuitBreakerStats().State; got != circuitbreaker.StateOpen {
		t.Errorf("state = %v, want open", got)
	}

	// Once open, calls are rejected without touching the ledger.
	before := ledger.lookupCalls
	if _, err := w.LastAccepted(context.Background(), 1, "9.9.9.9"); err == nil {
		t.Fatal("expected rejection while the circuit is open")
	}
	if ledger.lookupCalls != before {
		t.Errorf("ledger called %d more times while open", ledger.lookupCalls-before)
	}
}
