package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ikkim/foodgram-backend/config"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	connectAttempts = 3
	pingTimeout     = 2 * time.Second
)

var (
	client *redis.Client

	// retryDelay is the pause before the second attempt; it doubles after.
	retryDelay = 500 * time.Millisecond
)

// Options builds the client options for the token blacklist and catalog cache.
func Options(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// Init connects to Redis, retrying while the server comes up. On failure the
// package is left without a client.
func Init(cfg *config.RedisConfig) error {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	logger.Info("Connecting to Redis cache", map[string]interface{}{
		"addr": addr,
		"db":   cfg.DB,
	})

	c := redis.NewClient(Options(cfg))
	delay := retryDelay
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = ping(c); err == nil {
			client = c
			logger.Info("Redis cache ready", map[string]interface{}{
				"addr":     addr,
				"attempts": attempt,
			})
			return nil
		}
		if attempt < connectAttempts {
			logger.Warn("Redis not reachable yet, retrying", map[string]interface{}{
				"addr":    addr,
				"attempt": attempt,
				"error":   err.Error(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	_ = c.Close()
	logger.Error("Failed to connect to Redis", err, map[string]interface{}{
		"addr": addr,
	})
	return fmt.Errorf("connect to redis at %s: %w", addr, err)
}

func ping(c *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return c.Ping(ctx).Err()
}

// GetClient returns the shared client, or nil before a successful Init.
func GetClient() *redis.Client {
	return client
}

// Close releases the shared client. It is a no-op when Init never succeeded.
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection")
	err := client.Close()
	client = nil
	return err
}
