package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisViewLedger stores one key per (clip, client) pair with a TTL equal
// to the dedup window. SET NX gives a single insert-if-absent step, so
// concurrent duplicate requests cannot both be accepted; key expiry makes
// the window slide from the last accepted view with no pruning job.
type RedisViewLedger struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func NewRedisViewLedger(client *redis.Client, window time.Duration) *RedisViewLedger {
	if window <= 0 {
		window = domain.ViewWindow
	}
	return &RedisViewLedger{
		client: client,
		prefix: "ghighlights:view:",
		window: window,
	}
}

var _ ports.AtomicViewLedger = (*RedisViewLedger)(nil)

func (l *RedisViewLedger) pairKey(clipID domain.ClipID, clientID domain.ClientID) string {
	return fmt.Sprintf("%s%d:%s", l.prefix, clipID, clientID)
}

func (l *RedisViewLedger) LastAccepted(ctx context.Context, clipID domain.ClipID, clientID domain.ClientID) (time.Time, error) {
	val, err := l.client.Get(ctx, l.pairKey(clipID, clientID)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read view record: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt view record %q: %w", val, err)
	}
	return at, nil
}

func (l *RedisViewLedger) Commit(ctx context.Context, rec domain.ViewRecord) error {
	key := l.pairKey(rec.ClipID, rec.ClientID)
	if err := l.client.Set(ctx, key, rec.ObservedAt.Format(time.RFC3339Nano), l.window).Err(); err != nil {
		return fmt.Errorf("failed to commit view record: %w", err)
	}
	return nil
}

// TryAccept decides and commits in one SET NX. A false result means a
// record for the pair already exists within the window.
func (l *RedisViewLedger) TryAccept(ctx context.Context, rec domain.ViewRecord) (bool, error) {
	key := l.pairKey(rec.ClipID, rec.ClientID)
	ok, err := l.client.SetNX(ctx, key, rec.ObservedAt.Format(time.RFC3339Nano), l.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record view: %w", err)
	}
	return ok, nil
}
