package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
)

type pairKey struct {
	clipID   domain.ClipID
	clientID domain.ClientID
}

// MemoryViewLedger keeps the last accepted view per (clip, client) pair.
// LastAccepted and Commit are two separate steps and are deliberately not
// held under one cross-request critical section: near-simultaneous
// duplicate requests can both be accepted. That race is part of the
// stated contract; the Redis ledger is the hardened alternative.
type MemoryViewLedger struct {
	mu       sync.RWMutex
	accepted map[pairKey]time.Time
	window   time.Duration
}

func NewMemoryViewLedger(window time.Duration) *MemoryViewLedger {
	if window <= 0 {
		window = domain.ViewWindow
	}
	return &MemoryViewLedger{
		accepted: make(map[pairKey]time.Time),
		window:   window,
	}
}

var _ ports.ViewLedger = (*MemoryViewLedger)(nil)

func (l *MemoryViewLedger) LastAccepted(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID) (time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accepted[pairKey{clipID, clientID}], nil
}

func (l *MemoryViewLedger) Commit(ctx context.Context, rec domain.ViewRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accepted[pairKey{rec.ClipID, rec.ClientID}] = rec.ObservedAt
	return nil
}

// Prune drops entries whose window has fully elapsed. Retention is a
// housekeeping concern; the counting path never deletes records.
func (l *MemoryViewLedger) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, at := range l.accepted {
		if now.Sub(at) >= l.window {
			delete(l.accepted, key)
			removed++
		}
	}
	return removed
}

// StartPruning runs Prune on the given interval until the context ends.
func (l *MemoryViewLedger) StartPruning(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Prune(time.Now())
			}
		}
	}()
}

// Size reports how many pairs are currently tracked.
func (l *MemoryViewLedger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accepted)
}
