package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis and verifies the connection with a PING.
// REDIS_URL may be a bare host:port or a redis:// URL.
func NewClient(ctx context.Context, cfg config.Storage) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if parsed, err := redis.ParseURL(cfg.RedisURL); err == nil {
		opts = parsed
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

var _ repository.Store = (*RedisStore)(nil)

// RedisStore adapts a redis.Client to repository.Store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	return val, err
}

func (r *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
