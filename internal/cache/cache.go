// Package cache provides the staleness-bounded read cache that sits in front
// of the cart and history reads.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores encoded values under scope keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AllHistoryKey is the scope of the administrator's all-users history view.
const AllHistoryKey = "history:all"

// CartKey returns the scope of a user's pending cart.
func CartKey(username string) string {
	return "cart:" + username
}

// HistoryKey returns the scope of a user's submission history. User keys carry
// their own prefix so that no username can collide with AllHistoryKey.
func HistoryKey(username string) string {
	return "history:user:" + username
}
