package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLocker guards a key so only one worker processes it at a time.
type RunLocker interface {
	// Acquire takes the lock for key. Returns false when another holder
	// owns it.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release drops the lock. Safe to call after expiry.
	Release(ctx context.Context, key string) error
}

// RedisLocker implements RunLocker with SET NX and a TTL so a crashed
// worker cannot wedge a session forever.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if prefix == "" {
		prefix = "qa:run"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (l *RedisLocker) key(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(key), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
