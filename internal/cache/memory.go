package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"
)

// MemoryConfig sizes the in-process store. Zero values pick defaults.
type MemoryConfig struct {
	NumCounters int64
	MaxCost     int64 // bytes
	BufferItems int64
}

// MemoryStore is a process-local store backed by ristretto. Cost is the
// payload size in bytes.
type MemoryStore struct {
	c *ristretto.Cache
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 100_000
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 64 << 20
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{c: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write buffer to drain so the entry is visible to the
// next Get.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !s.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return errors.New("cache: memory store rejected write")
	}
	s.c.Wait()
	return nil
}

// Flush clears the whole store. Ristretto cannot enumerate keys, and a
// memory store only ever backs the one process that created it.
func (s *MemoryStore) Flush(context.Context, string) error {
	s.c.Clear()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.c.Close()
	return nil
}
