package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adampisula/musicdl-server/config"
)

// RedisClient is the shared Redis client. Nil when the cache is disabled.
var RedisClient *redis.Client

// ConnectRedis initializes the Redis connection. A missing REDIS_HOST leaves
// the client nil and the metadata cache disabled.
func ConnectRedis(cfg *config.Config) error {
	if cfg.RedisHost == "" {
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return nil
}

// CloseRedis closes the Redis connection.
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}
