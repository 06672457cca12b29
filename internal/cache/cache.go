// Package cache connects the optional Redis read cache.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and pings it. It returns nil when no address is
// configured or the server is unreachable, in which case callers run uncached.
func New(ctx context.Context, opts Options, logger *slog.Logger) *redis.Client {
	if opts.Addr == "" {
		logger.Info("Redis address not configured, caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis connection failed, caching disabled",
			"addr", opts.Addr,
			"error", err.Error(),
		)
		_ = rdb.Close()
		return nil
	}

	logger.Info("Redis cache connected", "addr", opts.Addr)
	return rdb
}

// Health reports the cache status for the health endpoint
func Health(ctx context.Context, rdb *redis.Client) map[string]string {
	if rdb == nil {
		return map[string]string{"status": "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}
