package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/hansubae/Ghighlights/pkg/cache"
)

// CachedClipService wraps ClipService with a short read-through cache for
// the hot listing and single-clip lookups. View counters drift by up to
// the TTL on cached reads, which the feed tolerates.
type CachedClipService struct {
	baseService ports.ClipService
	cache       *cache.CacheWithFallback
	clipTTL     time.Duration
	listTTL     time.Duration
}

func NewCachedClipService(
	baseService ports.ClipService,
	clipTTL time.Duration,
	listTTL time.Duration,
) ports.ClipService {
	return &CachedClipService{
		baseService: baseService,
		cache:       cache.NewCacheWithFallback(clipTTL),
		clipTTL:     clipTTL,
		listTTL:     listTTL,
	}
}

func (s *CachedClipService) PublishClip(ctx context.Context, clip *domain.Clip) (*domain.Clip, error) {
	created, err := s.baseService.PublishClip(ctx, clip)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate("clips:list:")
	return created, nil
}

func (s *CachedClipService) GetClip(ctx context.Context, id domain.ClipID) (*domain.Clip, error) {
	key := fmt.Sprintf("clip:%d", id)
	value, err := s.cache.GetOrSet(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.baseService.GetClip(ctx, id)
	}, s.clipTTL)
	if err != nil {
		return nil, err
	}
	return value.(*domain.Clip), nil
}

func (s *CachedClipService) ListClips(ctx context.Context, order domain.SortOrder) ([]*domain.Clip, error) {
	key := fmt.Sprintf("clips:list:%s", order)
	value, err := s.cache.GetOrSet(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.baseService.ListClips(ctx, order)
	}, s.listTTL)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.Clip), nil
}

// SearchClips is never cached; query cardinality is unbounded.
func (s *CachedClipService) SearchClips(ctx context.Context, title string) ([]*domain.Clip, error) {
	return s.baseService.SearchClips(ctx, title)
}

func (s *CachedClipService) DeleteClip(ctx context.Context, id domain.ClipID) error {
	if err := s.baseService.DeleteClip(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(fmt.Sprintf("clip:%d", id))
	s.cache.Invalidate("clips:list:")
	return nil
}

func (s *CachedClipService) LikeClip(ctx context.Context, id domain.ClipID) (int64, error) {
	likes, err := s.baseService.LikeClip(ctx, id)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(fmt.Sprintf("clip:%d", id))
	return likes, nil
}
