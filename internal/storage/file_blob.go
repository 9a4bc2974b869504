package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// FileBlobStore keeps model bytes as files under a base directory.
type FileBlobStore struct {
	basePath    string
	currentSize atomic.Int64
	mu          sync.Mutex
	logger      zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewFileBlobStore creates basePath if needed and picks up files already there.
func NewFileBlobStore(basePath string, logger zerolog.Logger) (*FileBlobStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	s := &FileBlobStore{
		basePath: basePath,
		logger:   logger.With().Str("blob", "file").Str("path", basePath).Logger(),
	}
	s.currentSize.Store(s.walkSize())
	return s, nil
}

func (s *FileBlobStore) Name() string {
	return "file"
}

// path maps key to a file inside basePath. Keys are generated by the model
// service, but anything that would escape the directory is rejected anyway.
func (s *FileBlobStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.basePath, key), nil
}

func (s *FileBlobStore) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous int64
	if st, err := os.Stat(p); err == nil {
		previous = st.Size()
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit blob file: %w", err)
	}
	s.currentSize.Add(int64(len(data)) - previous)
	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("Stored blob")
	return nil
}

func (s *FileBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		s.misses.Add(1)
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob file: %w", err)
	}
	s.hits.Add(1)
	return data, nil
}

func (s *FileBlobStore) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *FileBlobStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("remove blob file: %w", err)
	}
	s.currentSize.Add(-st.Size())
	s.logger.Debug().Str("key", key).Msg("Deleted blob")
	return nil
}

func (s *FileBlobStore) Stats() BlobStats {
	hits, misses := s.hits.Load(), s.misses.Load()
	return BlobStats{
		Name:      "file",
		Objects:   s.countFiles(),
		SizeBytes: s.currentSize.Load(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate(hits, misses),
	}
}

func (s *FileBlobStore) walkSize() int64 {
	var total int64
	filepath.Walk(s.basePath, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

func (s *FileBlobStore) countFiles() int {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".glb" {
			count++
		}
	}
	return count
}
