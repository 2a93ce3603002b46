package ports

import (
	"context"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
)

type ClipRepository interface {
	Create(ctx context.Context, clip *domain.Clip) error
	GetByID(ctx context.Context, id domain.ClipID) (*domain.Clip, error)
	Delete(ctx context.Context, id domain.ClipID) error
	List(ctx context.Context, order domain.SortOrder) ([]*domain.Clip, error)
	SearchByTitle(ctx context.Context, title string) ([]*domain.Clip, error)
	// IncrementViews atomically bumps the durable view counter and returns
	// the new value. The counter is never decremented or reset through
	// this interface.
	IncrementViews(ctx context.Context, id domain.ClipID) (int64, error)
	IncrementLikes(ctx context.Context, id domain.ClipID) (int64, error)
}

// ViewLedger is the idempotency oracle for view counting. LastAccepted
// reports the most recent accepted view for the pair, or the zero time
// when none is known; Commit records an accepted view.
type ViewLedger interface {
	LastAccepted(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID) (time.Time, error)
	Commit(ctx context.Context, rec domain.ViewRecord) error
}

// AtomicViewLedger is implemented by ledgers whose backing store offers a
// single insert-if-absent primitive covering the whole decide-and-commit
// step, closing the lookup-then-write race.
type AtomicViewLedger interface {
	ViewLedger
	// TryAccept decides and commits in one operation. Returns false when a
	// record for the pair already exists within the window.
	TryAccept(ctx context.Context, rec domain.ViewRecord) (bool, error)
}
