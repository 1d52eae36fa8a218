package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces a minimum interval between requests per key, backed by
// redis so the limit holds across replicas.
type Limiter struct {
	RDB    *redis.Client
	Prefix string
	Window time.Duration
}

// Allow reports whether key may proceed. The first call inside a window
// claims it; subsequent calls are rejected until it expires. With no redis
// configured the limiter is permissive.
func (l Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.RDB == nil {
		return true, nil
	}
	ok, err := l.RDB.SetNX(ctx, l.Prefix+":"+key, 1, l.Window).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
