package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStoreUnavailable wraps any store round-trip failure.
var ErrStoreUnavailable = errors.New("cache: store unavailable")

// Store is a byte store with per-key expiry. Get returns (value, true, nil)
// on hit and (nil, false, nil) on miss. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Flush drops every key starting with prefix, or every key when prefix
	// is empty. It is a maintenance action, not part of the request path.
	Flush(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	Close() error
}

// OpenStore picks a store from a connection URL: redis:// and rediss://
// select Redis, memory:// (or an empty URL) selects the in-process store.
func OpenStore(rawURL string) (Store, error) {
	switch {
	case rawURL == "" || strings.HasPrefix(rawURL, "memory://"):
		return NewMemoryStore(MemoryConfig{})
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return NewRedisStoreFromURL(rawURL)
	default:
		return nil, fmt.Errorf("cache: unsupported store url %q", rawURL)
	}
}
