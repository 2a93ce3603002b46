package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const relayChannel = "ghighlights:events"

// relayEnvelope is the cross-instance wire form. InstanceID lets a
// subscriber skip events it published itself; the local hub already
// delivered those.
type relayEnvelope struct {
	Type       domain.EventKind `json:"type"`
	InstanceID string           `json:"instance_id"`
	Timestamp  time.Time        `json:"timestamp"`
	Payload    json.RawMessage  `json:"payload,omitempty"`
}

// RedisEventRelay fans new-clip events out to the other instances of the
// service over redis pub/sub, so viewers connected anywhere see uploads
// that landed here.
type RedisEventRelay struct {
	client     *redis.Client
	instanceID string
	logger     *zap.SugaredLogger
	pubsub     *redis.PubSub
}

func NewRedisEventRelay(client *redis.Client, instanceID string, logger *zap.SugaredLogger) *RedisEventRelay {
	return &RedisEventRelay{
		client:     client,
		instanceID: instanceID,
		logger:     logger,
	}
}

// PublishNewClip relays a freshly persisted clip to the other instances.
func (r *RedisEventRelay) PublishNewClip(ctx context.Context, clip *domain.Clip) error {
	payload, err := json.Marshal(clip)
	if err != nil {
		return fmt.Errorf("failed to marshal clip: %w", err)
	}

	envelope := relayEnvelope{
		Type:       domain.EventNewClip,
		InstanceID: r.instanceID,
		Timestamp:  time.Now(),
		Payload:    payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := r.client.Publish(ctx, relayChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	r.logger.Debugw("relayed new clip event",
		"clip_id", clip.ID,
		"instance_id", r.instanceID,
	)

	return nil
}

// Subscribe consumes relayed events and rebroadcasts them to the local
// viewers. Blocks until ctx is cancelled.
func (r *RedisEventRelay) Subscribe(ctx context.Context, broadcaster ports.Broadcaster) error {
	if r.pubsub != nil {
		return fmt.Errorf("already subscribed")
	}

	r.pubsub = r.client.Subscribe(ctx, relayChannel)
	defer r.pubsub.Close()

	ch := r.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			var envelope relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				r.logger.Warnw("failed to unmarshal relayed event",
					"error", err,
					"payload", msg.Payload,
				)
				continue
			}

			// Skip events this instance published itself.
			if envelope.InstanceID == r.instanceID {
				continue
			}

			if envelope.Type != domain.EventNewClip {
				continue
			}

			var clip domain.Clip
			if err := json.Unmarshal(envelope.Payload, &clip); err != nil {
				r.logger.Warnw("failed to unmarshal relayed clip",
					"error", err,
				)
				continue
			}

			broadcaster.Broadcast(domain.NewClipEvent(&clip))
		}
	}
}

// Close ends the subscription if one is active.
func (r *RedisEventRelay) Close() error {
	if r.pubsub != nil {
		return r.pubsub.Close()
	}
	return nil
}
