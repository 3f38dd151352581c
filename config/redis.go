package config

import (
	game_constants "Trivium/constants/game"
	"Trivium/services/redis"
	"context"
	"log"
)

// ConnectRedis returns nil without error when no Redis URL is configured.
func ConnectRedis(ctx context.Context, cfg *Config) (*redis.RedisClient, error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, caching disabled")
		return nil, nil
	}

	redisClient, err := redis.InitRedis(ctx, cfg.RedisURL, 0, game_constants.RoomSnapshotTTL, game_constants.ProfileCacheTTL)
	if err != nil {
		return nil, err
	}
	log.Println("Redis connection established")
	return redisClient, nil
}
