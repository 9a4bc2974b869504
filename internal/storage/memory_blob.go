package storage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// MemoryBlobStore keeps blobs in process memory. It holds at most maxSize
// bytes and refuses writes beyond that; nothing is ever evicted, since
// every blob backs a metadata row.
type MemoryBlobStore struct {
	data        sync.Map // map[string][]byte
	metadata    sync.Map // map[string]*memoryEntry
	maxSize     int64
	currentSize atomic.Int64
	writeMu     sync.Mutex
	logger      zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type memoryEntry struct {
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// NewMemoryBlobStore creates an empty store bounded by maxSizeBytes.
func NewMemoryBlobStore(maxSizeBytes int64, logger zerolog.Logger) *MemoryBlobStore {
	return &MemoryBlobStore{
		maxSize: maxSizeBytes,
		logger:  logger.With().Str("component", "memory_blob").Logger(),
	}
}

func (m *MemoryBlobStore) Name() string {
	return "memory"
}

func (m *MemoryBlobStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	size := int64(len(data))

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	var previous int64
	if meta, ok := m.metadata.Load(key); ok {
		previous = meta.(*memoryEntry).Size
	}
	if used := m.currentSize.Load() - previous; used+size > m.maxSize {
		m.logger.Warn().Str("key", key).Int64("bytes", size).Int64("used", used).Msg("Memory blob store is full")
		return fmt.Errorf("%w: blob of %d bytes, %d of %d bytes in use", ErrStoreFull, size, used, m.maxSize)
	}
	m.deleteLocked(key)

	buf := make([]byte, len(data))
	copy(buf, data)
	m.data.Store(key, buf)
	m.metadata.Store(key, &memoryEntry{Size: size, ContentType: contentType, CreatedAt: time.Now()})
	m.currentSize.Add(size)
	m.logger.Debug().Str("key", key).Int64("bytes", size).Msg("Stored blob")
	return nil
}

func (m *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := m.data.Load(key); ok {
		m.hits.Add(1)
		return value.([]byte), nil
	}
	m.misses.Add(1)
	return nil, ErrBlobNotFound
}

func (m *MemoryBlobStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data.Load(key)
	return ok, nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, key string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.deleteLocked(key)
	return nil
}

func (m *MemoryBlobStore) deleteLocked(key string) bool {
	meta, ok := m.metadata.LoadAndDelete(key)
	if !ok {
		return false
	}
	m.data.Delete(key)
	m.currentSize.Add(-meta.(*memoryEntry).Size)
	return true
}

func (m *MemoryBlobStore) Stats() BlobStats {
	hits, misses := m.hits.Load(), m.misses.Load()
	objects := 0
	m.data.Range(func(_, _ any) bool {
		objects++
		return true
	})
	return BlobStats{
		Name:      "Memory",
		Objects:   objects,
		SizeBytes: m.currentSize.Load(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate(hits, misses),
	}
}
