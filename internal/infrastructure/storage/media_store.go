package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskMediaStore persists uploaded clip payloads on the local filesystem.
// Names are generated by the upload handler; the store never invents or
// rewrites them.
type DiskMediaStore struct {
	basePath string
}

func NewDiskMediaStore(basePath string) (*DiskMediaStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &DiskMediaStore{
		basePath: basePath,
	}, nil
}

// BasePath returns the directory payloads are served from.
func (s *DiskMediaStore) BasePath() string {
	return s.basePath
}

// Save streams the payload to disk. The file must be fully written before
// the clip record is persisted; the upload path relies on that ordering.
func (s *DiskMediaStore) Save(ctx context.Context, name string, data io.Reader) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create media file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}

	return nil
}

// Open returns the payload for reading.
func (s *DiskMediaStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}

	return file, nil
}

// Delete removes the payload.
func (s *DiskMediaStore) Delete(ctx context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// resolve rejects names that would escape the media directory.
func (s *DiskMediaStore) resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	return filepath.Join(s.basePath, name), nil
}
