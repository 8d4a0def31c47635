package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

// Redis backs the hotspot cache with a shared Redis instance so multiple
// replicas observe the same cached windows. Entry-count bounding is left to
// Redis eviction policy; the TTL is set per key.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedis creates a Redis-backed cache. The client is owned by the caller.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		prefix: "wildfire:hotspots:",
		logger: logger,
	}
}

func (c *Redis) Get(ctx context.Context, key string) (domain.FireQueryResult, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis cache get failed", "key", key, "error", err)
		}
		return domain.FireQueryResult{}, false
	}

	var result domain.FireQueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("redis cache entry corrupt, dropping", "key", key, "error", err)
		c.client.Del(ctx, c.prefix+key)
		return domain.FireQueryResult{}, false
	}
	return result, true
}

func (c *Redis) Set(ctx context.Context, key string, value domain.FireQueryResult) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("redis cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed", "key", key, "error", err)
	}
}
