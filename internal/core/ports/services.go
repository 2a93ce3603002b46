package ports

import (
	"context"
	"io"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
)

type ClipService interface {
	PublishClip(ctx context.Context, clip *domain.Clip) (*domain.Clip, error)
	GetClip(ctx context.Context, id domain.ClipID) (*domain.Clip, error)
	ListClips(ctx context.Context, order domain.SortOrder) ([]*domain.Clip, error)
	SearchClips(ctx context.Context, title string) ([]*domain.Clip, error)
	DeleteClip(ctx context.Context, id domain.ClipID) error
	LikeClip(ctx context.Context, id domain.ClipID) (int64, error)
}

type ViewService interface {
	// RecordView evaluates one view request. On an accepted decision the
	// durable counter has already been incremented; count carries the new
	// value. On a rejected decision count is the last known value.
	RecordView(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID, now time.Time) (domain.ViewDecision, int64, error)
}

// Broadcaster fans a serialized event out to every currently registered
// channel. Best-effort, at-most-once per channel per call; send failures
// never surface to the caller.
type Broadcaster interface {
	Broadcast(event domain.Event)
}

// ClipNotifier is invoked by the upload path only after the clip record
// and its payload are durably stored.
type ClipNotifier interface {
	ClipPersisted(ctx context.Context, clip *domain.Clip)
}

// MediaStore persists uploaded clip payloads.
type MediaStore interface {
	Save(ctx context.Context, name string, data io.Reader) error
	Delete(ctx context.Context, name string) error
}
