package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"fixify/models"
	"fixify/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// LocationCache is the short-TTL overlay of professional positions used by
// the matching path. It may be stale or absent; callers fall back to the
// durable record on a miss.
type LocationCache interface {
	Get(ctx context.Context, professionalID string) (*models.LiveLocation, bool)
	Set(ctx context.Context, professionalID string, loc models.LiveLocation)
}

// RedisLocationCache implements LocationCache on a dedicated Redis DB with
// 5-minute entries.
type RedisLocationCache struct {
	Client *redis.Client
}

func NewRedisLocationCache() *RedisLocationCache {
	return &RedisLocationCache{Client: utils.GetLocationCacheClient()}
}

func (c *RedisLocationCache) key(professionalID string) string {
	return utils.LocationCachePrefix + professionalID
}

// Get returns the cached position, or a miss on any error: the cache is a
// performance optimization, never a source of truth.
func (c *RedisLocationCache) Get(ctx context.Context, professionalID string) (*models.LiveLocation, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := c.Client.Get(ctx, c.key(professionalID)).Result()
	if err != nil {
		return nil, false
	}
	var loc models.LiveLocation
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, false
	}
	return &loc, true
}

// Set stores the position best-effort; a write failure is logged and
// otherwise ignored.
func (c *RedisLocationCache) Set(ctx context.Context, professionalID string, loc models.LiveLocation) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, c.key(professionalID), raw, utils.LocationCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("location cache write failed",
			zap.String("professionalId", professionalID), zap.Error(err))
	}
}
