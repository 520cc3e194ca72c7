// Package cache implements the read-through cache in front of the catalog
// API: deterministic fingerprints, per-endpoint TTL classes, pluggable
// stores and codecs, and get-or-fetch with coalesced misses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Options struct {
	Store  Store
	Codec  Codec
	Policy Policy
	// Prefix namespaces every key written by this cache.
	Prefix string
	Logger *zap.Logger
}

// Cache is safe for concurrent use. It holds no lock across a store
// round-trip; concurrent misses on one fingerprint share a single fetch.
type Cache struct {
	store  Store
	codec  Codec
	policy Policy
	prefix string
	flight singleflight.Group
	logger *zap.Logger
}

func New(opts Options) (*Cache, error) {
	if opts.Store == nil {
		return nil, errors.New("cache: store is required")
	}
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPolicy()
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		store:  opts.Store,
		codec:  opts.Codec,
		policy: opts.Policy,
		prefix: opts.Prefix,
		logger: opts.Logger.Named("cache"),
	}, nil
}

// TTL exposes the configured duration for a class.
func (c *Cache) TTL(class TTLClass) time.Duration {
	return c.policy.TTL(class)
}

// Flush drops the entries written under this cache's prefix. Without a
// prefix it drops everything in the store.
func (c *Cache) Flush(ctx context.Context) error {
	prefix := ""
	if c.prefix != "" {
		prefix = c.prefix + ":"
	}
	return c.store.Flush(ctx, prefix)
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) key(fingerprint string) string {
	if c.prefix == "" {
		return fingerprint
	}
	return c.prefix + ":" + fingerprint
}

type flightResult struct {
	value   any
	payload []byte
}

// GetOrFetch returns the value cached under fingerprint, or calls fetch,
// stores its result for the class TTL and returns it.
//
// Errors from fetch are returned unchanged and nothing is cached for them.
// Store failures never fail the call: a failed read falls through to fetch
// and a failed write is logged. The fetch and the write run on a context
// detached from the caller's cancellation, so an abandoned request still
// lands its cache entry.
func GetOrFetch[T any](ctx context.Context, c *Cache, fingerprint string, class TTLClass, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	key := c.key(fingerprint)

	if v, ok := load[T](ctx, c, key); ok {
		return v, nil
	}

	res, err, shared := c.flight.Do(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		payload, encErr := c.codec.Marshal(v)
		if encErr != nil {
			c.logger.Warn("encode failed, not caching", zap.String("key", key), zap.Error(encErr))
			return flightResult{value: v}, nil
		}
		if setErr := c.store.Set(fctx, key, payload, c.policy.TTL(class)); setErr != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(setErr))
		}
		return flightResult{value: v, payload: payload}, nil
	})
	if err != nil {
		return zero, err
	}

	fr, ok := res.(flightResult)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected flight result %T", res)
	}
	// Callers that joined another caller's fetch decode their own copy so no
	// slice or map is shared between them.
	if shared && fr.payload != nil {
		var v T
		if err := c.codec.Unmarshal(fr.payload, &v); err == nil {
			return v, nil
		}
	}
	v, ok := fr.value.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected value type %T", fr.value)
	}
	return v, nil
}

func load[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, fetching upstream", zap.String("key", key), zap.Error(err))
		return v, false
	}
	if !ok {
		c.logger.Debug("cache miss", zap.String("key", key))
		return v, false
	}
	if err := c.codec.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("cache entry undecodable, refetching", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	c.logger.Debug("cache hit", zap.String("key", key))
	return v, true
}
