package realtime

import (
	"context"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"

	"go.uber.org/zap"
)

// Notifier bridges the upload path to the fanout. The upload path calls
// ClipPersisted only after the clip record and its payload are durably
// stored; notify never happens before persist.
type Notifier struct {
	broadcaster ports.Broadcaster
	relay       EventRelay
	logger      *zap.SugaredLogger
}

// EventRelay forwards locally persisted clips to sibling instances.
// Optional; nil disables cross-instance delivery.
type EventRelay interface {
	PublishNewClip(ctx context.Context, clip *domain.Clip) error
}

func NewNotifier(broadcaster ports.Broadcaster, relay EventRelay, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{
		broadcaster: broadcaster,
		relay:       relay,
		logger:      logger,
	}
}

// ClipPersisted builds the announcement event and hands it to the fanout.
// It persists nothing and is called at most once per stored clip.
func (n *Notifier) ClipPersisted(ctx context.Context, clip *domain.Clip) {
	n.broadcaster.Broadcast(domain.NewClipEvent(clip))

	if n.relay != nil {
		if err := n.relay.PublishNewClip(ctx, clip); err != nil {
			// Local viewers already got the event; remote delivery is
			// best-effort like every other push in this system.
			n.logger.Warnw("relay publish failed", "clip_id", clip.ID, "error", err)
		}
	}
}
