package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
)

func TestMemoryViewLedger_LastAcceptedZeroWhenUnknown(t *testing.T) {
	ledger := NewMemoryViewLedger(domain.ViewWindow)

	last, err := ledger.LastAccepted(context.Background(), 1, "1.2.3.4")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("expected zero time for unknown pair, got %v", last)
	}
}

func TestMemoryViewLedger_CommitThenLookup(t *testing.T) {
	ledger := NewMemoryViewLedger(domain.ViewWindow)

	now := time.Now()
	rec := domain.ViewRecord{ClipID: 1, ClientID: "1.2.3.4", ObservedAt: now}
	if err := ledger.Commit(context.Background(), rec); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	last, _ := ledger.LastAccepted(context.Background(), 1, "1.2.3.4")
	if !last.Equal(now) {
		t.Fatalf("expected %v, got %v", now, last)
	}

	// Other pairs are unaffected.
	other, _ := ledger.LastAccepted(context.Background(), 2, "1.2.3.4")
	if !other.IsZero() {
		t.Fatalf("unrelated clip leaked a record: %v", other)
	}
	other, _ = ledger.LastAccepted(context.Background(), 1, "5.6.7.8")
	if !other.IsZero() {
		t.Fatalf("unrelated client leaked a record: %v", other)
	}
}

func TestMemoryViewLedger_CommitOverwritesOlderRecord(t *testing.T) {
	ledger := NewMemoryViewLedger(domain.ViewWindow)

	first := time.Now().Add(-25 * time.Hour)
	second := time.Now()

	ledger.Commit(context.Background(), domain.ViewRecord{ClipID: 1, ClientID: "c", ObservedAt: first})
	ledger.Commit(context.Background(), domain.ViewRecord{ClipID: 1, ClientID: "c", ObservedAt: second})

	last, _ := ledger.LastAccepted(context.Background(), 1, "c")
	if !last.Equal(second) {
		t.Fatalf("expected most recent record, got %v", last)
	}
}

func TestMemoryViewLedger_PruneDropsExpiredOnly(t *testing.T) {
	ledger := NewMemoryViewLedger(time.Hour)

	now := time.Now()
	ledger.Commit(context.Background(), domain.ViewRecord{ClipID: 1, ClientID: "old", ObservedAt: now.Add(-2 * time.Hour)})
	ledger.Commit(context.Background(), domain.ViewRecord{ClipID: 1, ClientID: "fresh", ObservedAt: now.Add(-time.Minute)})

	removed := ledger.Prune(now)
	if removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}
	if ledger.Size() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", ledger.Size())
	}

	last, _ := ledger.LastAccepted(context.Background(), 1, "fresh")
	if last.IsZero() {
		t.Fatal("fresh record was pruned")
	}
}
