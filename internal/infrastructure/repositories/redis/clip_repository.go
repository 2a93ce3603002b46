package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const clipIDSequenceKey = "ghighlights:clip:id"

type RedisClipRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisClipRepository(client *redis.Client) ports.ClipRepository {
	return &RedisClipRepository{
		client: client,
		prefix: "ghighlights:clip:",
	}
}

func (r *RedisClipRepository) clipKey(id domain.ClipID) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

func (r *RedisClipRepository) viewsKey(id domain.ClipID) string {
	return fmt.Sprintf("%s%d:views", r.prefix, id)
}

func (r *RedisClipRepository) likesKey(id domain.ClipID) string {
	return fmt.Sprintf("%s%d:likes", r.prefix, id)
}

func (r *RedisClipRepository) indexKey() string {
	return r.prefix + "by_upload"
}

func (r *RedisClipRepository) Create(ctx context.Context, clip *domain.Clip) error {
	if clip.ID == 0 {
		id, err := r.client.Incr(ctx, clipIDSequenceKey).Result()
		if err != nil {
			return fmt.Errorf("failed to allocate clip id: %w", err)
		}
		clip.ID = domain.ClipID(id)
	}

	data, err := json.Marshal(clip)
	if err != nil {
		return fmt.Errorf("failed to marshal clip: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.clipKey(clip.ID), data, 0)
	pipe.ZAdd(ctx, r.indexKey(), redis.Z{
		Score:  float64(clip.UploadedAt.UnixNano()),
		Member: strconv.FormatInt(int64(clip.ID), 10),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store clip in Redis: %w", err)
	}
	return nil
}

func (r *RedisClipRepository) GetByID(ctx context.Context, id domain.ClipID) (*domain.Clip, error) {
	data, err := r.client.Get(ctx, r.clipKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrClipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clip from Redis: %w", err)
	}

	var clip domain.Clip
	if err := json.Unmarshal([]byte(data), &clip); err != nil {
		return nil, fmt.Errorf("failed to unmarshal clip: %w", err)
	}

	// Counters live outside the record so increments stay atomic.
	counts, err := r.client.MGet(ctx, r.viewsKey(id), r.likesKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get clip counters: %w", err)
	}
	clip.Views = parseCounter(counts[0])
	clip.Likes = parseCounter(counts[1])

	return &clip, nil
}

func (r *RedisClipRepository) Delete(ctx context.Context, id domain.ClipID) error {
	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, r.indexKey(), strconv.FormatInt(int64(id), 10))
	pipe.Del(ctx, r.clipKey(id), r.viewsKey(id), r.likesKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete clip from Redis: %w", err)
	}
	return nil
}

func (r *RedisClipRepository) List(ctx context.Context, order domain.SortOrder) ([]*domain.Clip, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read clip index: %w", err)
	}

	clips := make([]*domain.Clip, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		clip, err := r.GetByID(ctx, domain.ClipID(id))
		if err != nil {
			// Skip clips deleted since the index read.
			continue
		}
		clips = append(clips, clip)
	}

	// The index is upload-recency ordered; other orders sort in process.
	switch order {
	case domain.SortViews:
		sort.SliceStable(clips, func(i, j int) bool { return clips[i].Views > clips[j].Views })
	case domain.SortPopular:
		sort.SliceStable(clips, func(i, j int) bool { return clips[i].Likes > clips[j].Likes })
	}

	return clips, nil
}

func (r *RedisClipRepository) SearchByTitle(ctx context.Context, title string) ([]*domain.Clip, error) {
	all, err := r.List(ctx, domain.SortLatest)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(title)
	var matches []*domain.Clip
	for _, clip := range all {
		if strings.Contains(strings.ToLower(clip.Title), needle) {
			matches = append(matches, clip)
		}
	}
	return matches, nil
}

func (r *RedisClipRepository) IncrementViews(ctx context.Context, id domain.ClipID) (int64, error) {
	count, err := r.client.Incr(ctx, r.viewsKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return count, nil
}

func (r *RedisClipRepository) IncrementLikes(ctx context.Context, id domain.ClipID) (int64, error) {
	count, err := r.client.Incr(ctx, r.likesKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment likes: %w", err)
	}
	return count, nil
}

func parseCounter(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
