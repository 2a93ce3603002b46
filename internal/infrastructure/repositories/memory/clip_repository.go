package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
)

type MemoryClipRepository struct {
	mu     sync.RWMutex
	clips  map[domain.ClipID]*domain.Clip
	nextID domain.ClipID
}

func NewMemoryClipRepository() ports.ClipRepository {
	return &MemoryClipRepository{
		clips:  make(map[domain.ClipID]*domain.Clip),
		nextID: 1,
	}
}

func (r *MemoryClipRepository) Create(ctx context.Context, clip *domain.Clip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clip.ID == 0 {
		clip.ID = r.nextID
	}
	if clip.ID >= r.nextID {
		r.nextID = clip.ID + 1
	}

	stored := *clip
	r.clips[clip.ID] = &stored
	return nil
}

func (r *MemoryClipRepository) GetByID(ctx context.Context, id domain.ClipID) (*domain.Clip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clip, exists := r.clips[id]
	if !exists {
		return nil, domain.ErrClipNotFound
	}

	copied := *clip
	return &copied, nil
}

func (r *MemoryClipRepository) Delete(ctx context.Context, id domain.ClipID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clips[id]; !exists {
		return domain.ErrClipNotFound
	}

	delete(r.clips, id)
	return nil
}

func (r *MemoryClipRepository) List(ctx context.Context, order domain.SortOrder) ([]*domain.Clip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clips := make([]*domain.Clip, 0, len(r.clips))
	for _, clip := range r.clips {
		copied := *clip
		clips = append(clips, &copied)
	}

	switch order {
	case domain.SortViews:
		sort.Slice(clips, func(i, j int) bool { return clips[i].Views > clips[j].Views })
	case domain.SortPopular:
		sort.Slice(clips, func(i, j int) bool { return clips[i].Likes > clips[j].Likes })
	default:
		sort.Slice(clips, func(i, j int) bool { return clips[i].UploadedAt.After(clips[j].UploadedAt) })
	}

	return clips, nil
}

func (r *MemoryClipRepository) SearchByTitle(ctx context.Context, title string) ([]*domain.Clip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(title)
	var matches []*domain.Clip
	for _, clip := range r.clips {
		if strings.Contains(strings.ToLower(clip.Title), needle) {
			copied := *clip
			matches = append(matches, &copied)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].UploadedAt.After(matches[j].UploadedAt) })
	return matches, nil
}

// IncrementViews bumps the counter under the repository lock, so racing
// increments for different clients are never lost.
func (r *MemoryClipRepository) IncrementViews(ctx context.Context, id domain.ClipID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clip, exists := r.clips[id]
	if !exists {
		return 0, domain.ErrClipNotFound
	}

	clip.Views++
	return clip.Views, nil
}

func (r *MemoryClipRepository) IncrementLikes(ctx context.Context, id domain.ClipID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clip, exists := r.clips[id]
	if !exists {
		return 0, domain.ErrClipNotFound
	}

	clip.Likes++
	return clip.Likes, nil
}
