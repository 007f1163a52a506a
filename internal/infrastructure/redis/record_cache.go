package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goldprice-service/internal/application"
	"goldprice-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

var _ application.RecordCache = (*RecordCache)(nil)

// RecordCache keeps the last served gold record under a single key, expiring
// with the serving provider's freshness window.
type RecordCache struct {
	Client *redis.Client
	Key    string
}

func New(client *redis.Client, key string) *RecordCache {
	return &RecordCache{Client: client, Key: key}
}

// Get returns the cached record with MaxAge shortened to the key's remaining
// TTL, so downstream caches never hold it past the original freshness window.
func (c *RecordCache) Get(ctx context.Context) (domain.ServedQuote, bool, error) {
	pipe := c.Client.Pipeline()
	getCmd := pipe.Get(ctx, c.Key)
	ttlCmd := pipe.PTTL(ctx, c.Key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return domain.ServedQuote{}, false, err
	}
	b, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ServedQuote{}, false, nil
	}
	if err != nil {
		return domain.ServedQuote{}, false, err
	}
	var q domain.ServedQuote
	if err := json.Unmarshal(b, &q); err != nil {
		return domain.ServedQuote{}, false, fmt.Errorf("decode cached record: %w", err)
	}
	if ttl := ttlCmd.Val(); ttl > 0 && ttl < q.MaxAge {
		q.MaxAge = ttl.Truncate(time.Second)
	}
	return q, true, nil
}

func (c *RecordCache) Set(ctx context.Context, q domain.ServedQuote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.Key, b, ttl).Err()
}

func (c *RecordCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
