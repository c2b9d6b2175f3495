package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/merchke/storefront/config"
	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values as plain redis strings.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend constructs a redis backend from config and pings it.
func NewRedisBackend(ctx context.Context, cfg config.StorageConfig) (*RedisBackend, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisBackend{client: client}, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *RedisBackend) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisBackend) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	if err := r.client.SetNX(ctx, key, value, 0).Err(); err != nil {
		return "", err
	}
	return r.Get(ctx, key)
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
