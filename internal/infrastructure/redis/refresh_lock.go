package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshLock lets one of several worker replicas claim a symbol for a
// refresh window. Claims expire after TTL and are never released early.
type RefreshLock struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRefreshLock(client *redis.Client, prefix string, ttl time.Duration) *RefreshLock {
	return &RefreshLock{Client: client, Prefix: prefix, TTL: ttl}
}

func (l *RefreshLock) TryAcquire(ctx context.Context, key string) (bool, error) {
	return l.Client.SetNX(ctx, l.Prefix+"lock:"+key, "1", l.TTL).Result()
}

// NoopLock always grants the claim; used when there is a single worker.
type NoopLock struct{}

func (NoopLock) TryAcquire(context.Context, string) (bool, error) { return true, nil }
