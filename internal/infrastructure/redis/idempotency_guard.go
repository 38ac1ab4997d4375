package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "settlement:idempotency:"

// IdempotencyGuard implements port.IdempotencyGuard with SET NX. A claimed
// key expires after ttl.
type IdempotencyGuard struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewIdempotencyGuard creates a guard. A non-positive ttl defaults to 24h.
func NewIdempotencyGuard(client goredis.UniversalClient, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Claim reserves key within scope. It returns false when the key is taken.
func (g *IdempotencyGuard) Claim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, redisKey(scope, key), time.Now().UTC().Format(time.RFC3339Nano), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release frees key so a failed request can be retried.
func (g *IdempotencyGuard) Release(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func redisKey(scope, key string) string {
	return keyPrefix + scope + ":" + key
}
