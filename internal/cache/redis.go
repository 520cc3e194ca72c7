package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("cache: nil redis client")

// RedisStore keeps entries in Redis and relies on Redis key expiry.
type RedisStore struct {
	rdb         redis.UniversalClient
	closeClient bool
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. The store closes the client only
// when owns is set.
func NewRedisStore(rdb redis.UniversalClient, owns bool) (*RedisStore, error) {
	if rdb == nil {
		return nil, ErrNilClient
	}
	return &RedisStore{rdb: rdb, closeClient: owns}, nil
}

// NewRedisStoreFromURL dials a single Redis node from a redis:// URL.
func NewRedisStoreFromURL(rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), true)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

const flushScanCount = 500

// Flush deletes the keys matching prefix with SCAN and UNLINK so other
// namespaces in the same database survive. An empty prefix runs FLUSHDB.
func (s *RedisStore) Flush(ctx context.Context, prefix string) error {
	if prefix == "" {
		if err := s.rdb.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, escapeGlob(prefix)+"*", flushScanCount).Result()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the client when the store owns it. Repeated calls are no-ops.
func (s *RedisStore) Close() error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}
