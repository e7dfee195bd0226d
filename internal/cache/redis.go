package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productKeyPrefix = "daigo:product:"
	blockedKeyPrefix = "daigo:blocked:"
)

// Redis is the redis-backed Store implementation
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to redis and verifies the connection
func NewRedis(redisURL string, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: bad redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) GetProduct(ctx context.Context, url string) ([]byte, bool) {
	data, err := r.client.Get(ctx, productKeyPrefix+url).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (r *Redis) SetProduct(ctx context.Context, url string, record []byte, ttl time.Duration) error {
	return r.client.Set(ctx, productKeyPrefix+url, record, ttl).Err()
}

func (r *Redis) MarkBlocked(ctx context.Context, host string, ttl time.Duration) error {
	return r.client.Set(ctx, blockedKeyPrefix+host, "1", ttl).Err()
}

func (r *Redis) IsBlocked(ctx context.Context, host string) bool {
	n, err := r.client.Exists(ctx, blockedKeyPrefix+host).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (r *Redis) Close() error {
	return r.client.Close()
}
