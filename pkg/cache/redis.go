package cache

import (
	"context"
	"fmt"
	"time"

	"eventbook/internal/shared/config"

	"github.com/redis/go-redis/v9"
)

// NewClient opens a Redis client from the application config and verifies the
// connection before returning it.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	address := cfg.Addr
	if address == "" {
		address = cfg.Host + ":" + cfg.Port
	}
	if address == ":" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     10,
		MinIdleConns: 5,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", address, err)
	}

	return client, nil
}
