package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medicalassistance/identity-core/internal/core/domain"
)

const keyPrefix = "record_status:"

// StatusCache keeps recently resolved patient record statuses.
// Key format: record_status:<email>
type StatusCache struct {
	client redis.Cmdable
}

// NewStatusCache creates a StatusCache wrapping the given Redis client.
func NewStatusCache(client redis.Cmdable) *StatusCache {
	return &StatusCache{client: client}
}

// Get returns the cached status of email. The bool is false on a miss.
func (c *StatusCache) Get(ctx context.Context, email string) (domain.RecordStatus, bool, error) {
	v, err := c.client.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("status cache get: %w", err)
	}
	return domain.RecordStatus(v), true, nil
}

// Set stores status for email until ttl elapses.
func (c *StatusCache) Set(ctx context.Context, email string, status domain.RecordStatus, ttl time.Duration) error {
	if err := c.client.Set(ctx, key(email), string(status), ttl).Err(); err != nil {
		return fmt.Errorf("status cache set: %w", err)
	}
	return nil
}

func key(email string) string {
	return keyPrefix + domain.CanonicalEmail(email)
}
