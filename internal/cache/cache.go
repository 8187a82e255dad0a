// Package cache is a best-effort read-through cache for tasks and users.
// Failures are logged and otherwise ignored; the repositories stay the
// source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tasktracker/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Cache interface {
	// Get decodes the cached value for key into dst and reports whether it hit.
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
	Delete(ctx context.Context, keys ...string)
}

func TaskKey(id string) string { return "task:" + id }

func UserKey(id string) string { return "user:" + id }

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	cached, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.ErrorLogger.Error("Error reading cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		logger.ErrorLogger.Error("Error decoding cached value", zap.String("key", key), zap.Error(err))
		c.Delete(ctx, key)
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) {
	jsonData, err := json.Marshal(value)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching value", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Nop never hits. It is used when no redis host is configured.
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool { return false }
func (Nop) Set(context.Context, string, any)      {}
func (Nop) Delete(context.Context, ...string)     {}
