package redis

import (
	"context"
	"fmt"
	"log"
	"time"
)

// InitRedis initializes the Redis connection and checks it with a ping
func InitRedis(ctx context.Context, addr string, db int, roomTTL, profileTTL time.Duration) (*RedisClient, error) {
	rc, err := NewRedisClient(addr, db, roomTTL, profileTTL)
	if err != nil {
		return nil, err
	}

	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("Successfully connected to Redis")
	return rc, nil
}

func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// CloseRedis gracefully closes the Redis connection
func CloseRedis(rc *RedisClient) error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %w", err)
	}
	return nil
}
