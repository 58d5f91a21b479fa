package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/danevairena/Bookstore/config"
)

// ErrMiss is returned by Get when the key is absent or the cache is disabled.
var ErrMiss = redis.Nil

// RedisCache is a small key/value cache. A RedisCache without a client is
// disabled: writes are dropped and every read misses.
type RedisCache struct {
	client *redis.Client
	log    *logrus.Logger
}

// New connects to redis using REDIS_URL, or REDIS_HOST and REDIS_PORT. When
// neither is set, or the server does not answer, the cache is disabled.
func New(cfg *config.Config, log *logrus.Logger) *RedisCache {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warnf("Invalid REDIS_URL, cache disabled: %v", err)
			return &RedisCache{log: log}
		}
		opts = parsed
	} else if cfg.RedisHost != "" {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	} else {
		log.Info("Redis not configured, token cache disabled")
		return &RedisCache{log: log}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("Redis connection failed, token cache disabled: %v", err)
		client.Close()
		return &RedisCache{log: log}
	}

	log.Infof("Connected to Redis at %s", opts.Addr)
	return &RedisCache{client: client, log: log}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, log *logrus.Logger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (r *RedisCache) Enabled() bool {
	return r != nil && r.client != nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	if !r.Enabled() {
		return "", ErrMiss
	}
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Close()
}
