package thirdparty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

// MediaCache stores resolved media by Target.CacheKey. Backend errors are
// treated as misses.
type MediaCache interface {
	Get(ctx context.Context, key string) (*models.Media, bool)
	Set(ctx context.Context, key string, media *models.Media)
}

type LRUCache struct {
	lru *expirable.LRU[string, *models.Media]
}

func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = 1024
	}
	return &LRUCache{lru: expirable.NewLRU[string, *models.Media](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, key string) (*models.Media, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Set(_ context.Context, key string, media *models.Media) {
	c.lru.Add(key, media)
}

const redisKeyPrefix = "companion:media:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log.WithField("component", "media-cache")}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Media, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("redis get failed")
		}
		return nil, false
	}
	var media models.Media
	if err := json.Unmarshal(data, &media); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		return nil, false
	}
	return &media, true
}

func (c *RedisCache) Set(ctx context.Context, key string, media *models.Media) {
	data, err := json.Marshal(media)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("redis set failed")
	}
}

// NewCache returns a Redis cache when REDIS_URL is set, else an in-process LRU.
func NewCache(ctx context.Context, cfg config.MediaCache, log logrus.FieldLogger) (MediaCache, error) {
	if cfg.RedisURL == "" {
		return NewLRUCache(cfg.Size, cfg.TTL), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.WithField("addr", opts.Addr).Info("✅ Media cache using redis")
	return NewRedisCache(client, cfg.TTL, log), nil
}
