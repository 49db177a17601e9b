// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fixify/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// LocationCacheClient holds short-TTL professional positions for the
	// matching path; it is a performance optimization, not a source of truth.
	LocationCacheClient *redis.Client
	// CodeCacheClient is the dedicated client for one-time-code sessions.
	CodeCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (DB %d): %v", db, err)
	}
	return client
}

// InitRedis initializes every Redis client the service uses.
func InitRedis() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	LocationCacheClient = newRedisClient(config.AppConfig.RedisLocationDB)
	CodeCacheClient = newRedisClient(config.AppConfig.RedisCodeDB)
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	}
	return CacheClient
}

// GetLocationCacheClient returns the client for live-location caching.
func GetLocationCacheClient() *redis.Client {
	if LocationCacheClient == nil {
		LocationCacheClient = newRedisClient(config.AppConfig.RedisLocationDB)
	}
	return LocationCacheClient
}

// GetCodeCacheClient returns the client for one-time-code storage.
func GetCodeCacheClient() *redis.Client {
	if CodeCacheClient == nil {
		CodeCacheClient = newRedisClient(config.AppConfig.RedisCodeDB)
	}
	return CodeCacheClient
}
