package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "relay:seen:"

// Redis хранит ID обработанных сообщений с TTL, общий для нескольких инстансов
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis подключается и проверяет соединение PING-ом
func NewRedis(ctx context.Context, cfg *config.RedisConfig, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Seen(ctx context.Context, id string) (bool, error) {
	created, err := r.client.SetNX(ctx, keyPrefix+id, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !created, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
