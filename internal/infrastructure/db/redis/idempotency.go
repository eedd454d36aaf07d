package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyChecker guards mutation requests against duplicate submission.
// Clients send an Idempotency-Key header; a key seen within the TTL means the
// mutation was already applied and must not run again.
type IdempotencyChecker struct {
	client *redis.Client
}

// NewIdempotencyChecker wraps the given Redis client.
func NewIdempotencyChecker(client *redis.Client) *IdempotencyChecker {
	return &IdempotencyChecker{client: client}
}

// Seen reports whether this key has already been marked.
func (c *IdempotencyChecker) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency check: %w", err)
	}
	return n > 0, nil
}

// Mark records the key as applied (expires after idempotencyTTL).
func (c *IdempotencyChecker) Mark(ctx context.Context, key string) error {
	return c.client.Set(ctx, c.key(key), "1", idempotencyTTL).Err()
}

func (c *IdempotencyChecker) key(key string) string {
	return "idem:" + key
}
