package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// fetchTimeout bounds a shared store read, which no longer follows any one
// caller's context.
const fetchTimeout = 10 * time.Second

// ReadThrough serves reads from a Cache and falls back to the store on a
// miss. A cache that misbehaves never fails a read.
type ReadThrough struct {
	cache  Cache
	ttl    time.Duration
	sfg    singleflight.Group // collapses concurrent misses on one key
	logger zerolog.Logger

	mu          sync.Mutex
	generations map[string]uint64 // bumped by Invalidate
}

func NewReadThrough(c Cache, ttl time.Duration, logger zerolog.Logger) *ReadThrough {
	return &ReadThrough{
		cache:       c,
		ttl:         ttl,
		logger:      logger.With().Str("component", "cache").Logger(),
		generations: make(map[string]uint64),
	}
}

func (rt *ReadThrough) generation(key string) uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.generations[key]
}

// Load returns the cached value for key or calls fetch and caches its result.
// Fetch errors are returned to every waiting caller and are not cached.
// A fetch that overlaps an Invalidate of key is returned to its callers
// but never left in the cache.
func Load[T any](ctx context.Context, rt *ReadThrough, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err, _ := rt.sfg.Do(key, func() (any, error) {
		// Shared by every waiter, so one caller going away must not cancel it.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		gen := rt.generation(key)

		data, err := rt.cache.Get(shared, key)
		if err == nil {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			rt.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		} else if !errors.Is(err, ErrCacheMiss) {
			rt.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, using store")
		}

		fresh, err := fetch(shared)
		if err != nil {
			return nil, err
		}

		if rt.generation(key) != gen {
			return fresh, nil
		}

		encoded, err := json.Marshal(fresh)
		if err != nil {
			rt.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
			return fresh, nil
		}
		if err := rt.cache.Set(shared, key, encoded, rt.ttl); err != nil {
			rt.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
			return fresh, nil
		}

		// Invalidate bumps before it deletes, so an entry written after a
		// concurrent bump is removed here or by that delete.
		if rt.generation(key) != gen {
			if err := rt.cache.Delete(shared, key); err != nil {
				rt.logger.Warn().Err(err).Str("key", key).Msg("failed to drop superseded cache entry")
			}
		}
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate evicts the given scopes. Reads already in flight for a scope
// are detached so later callers fetch again. Delete failures are logged
// only; a stale entry still expires after the TTL.
func (rt *ReadThrough) Invalidate(ctx context.Context, keys ...string) {
	rt.mu.Lock()
	for _, key := range keys {
		rt.generations[key]++
		rt.sfg.Forget(key)
	}
	rt.mu.Unlock()

	if err := rt.cache.Delete(ctx, keys...); err != nil {
		rt.logger.Error().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
