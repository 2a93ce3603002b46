package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"

	"go.uber.org/zap"
)

type clipService struct {
	clipRepo ports.ClipRepository
	media    ports.MediaStore
	notifier ports.ClipNotifier
	logger   *zap.SugaredLogger
}

func NewClipService(
	clipRepo ports.ClipRepository,
	media ports.MediaStore,
	notifier ports.ClipNotifier,
	logger *zap.SugaredLogger,
) ports.ClipService {
	return &clipService{
		clipRepo: clipRepo,
		media:    media,
		notifier: notifier,
		logger:   logger,
	}
}

// PublishClip persists the clip record and then announces it to connected
// viewers. The caller has already stored the binary payload; persist
// happens before notify, always.
func (s *clipService) PublishClip(ctx context.Context, clip *domain.Clip) (*domain.Clip, error) {
	if strings.TrimSpace(clip.Title) == "" || strings.TrimSpace(clip.Game) == "" || strings.TrimSpace(clip.User) == "" {
		return nil, domain.ErrInvalidClip
	}

	clip.Views = 0
	clip.Likes = 0
	if clip.UploadedAt.IsZero() {
		clip.UploadedAt = time.Now()
	}

	if err := s.clipRepo.Create(ctx, clip); err != nil {
		return nil, fmt.Errorf("failed to create clip: %w", err)
	}

	s.notifier.ClipPersisted(ctx, clip)
	return clip, nil
}

func (s *clipService) GetClip(ctx context.Context, id domain.ClipID) (*domain.Clip, error) {
	return s.clipRepo.GetByID(ctx, id)
}

func (s *clipService) ListClips(ctx context.Context, order domain.SortOrder) ([]*domain.Clip, error) {
	switch order {
	case domain.SortLatest, domain.SortViews, domain.SortPopular:
	default:
		order = domain.SortLatest
	}
	return s.clipRepo.List(ctx, order)
}

func (s *clipService) SearchClips(ctx context.Context, title string) ([]*domain.Clip, error) {
	return s.clipRepo.SearchByTitle(ctx, title)
}

func (s *clipService) DeleteClip(ctx context.Context, id domain.ClipID) error {
	clip, err := s.clipRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.clipRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}

	if name := payloadName(clip.VideoURL); name != "" && s.media != nil {
		if err := s.media.Delete(ctx, name); err != nil {
			// The record is gone; an orphaned payload is a housekeeping
			// problem, not a request failure.
			s.logger.Warnw("failed to delete clip payload", "clip_id", id, "name", name, "error", err)
		}
	}
	return nil
}

func (s *clipService) LikeClip(ctx context.Context, id domain.ClipID) (int64, error) {
	if _, err := s.clipRepo.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return s.clipRepo.IncrementLikes(ctx, id)
}

func payloadName(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Path, "/")
	return parts[len(parts)-1]
}
