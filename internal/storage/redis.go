package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements storage.Storage with Redis for game states and the
// filesystem for campaigns.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration

	mu        sync.Mutex
	campaigns map[string]*content.Campaign
}

var _ storage.Storage = (*RedisStorage)(nil)

// RedisOptions accepts either a redis:// URL or a bare host:port.
func RedisOptions(redisURL string) (*redis.Options, error) {
	if !strings.Contains(redisURL, "://") {
		return &redis.Options{Addr: redisURL}, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return opt, nil
}

// NewRedisStorage creates a new Redis storage instance. A zero ttl keeps game states
// forever.
func NewRedisStorage(redisURL, dataDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := RedisOptions(redisURL)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	return &RedisStorage{
		client:    redis.NewClient(opt),
		logger:    logger,
		dataDir:   dataDir,
		ttl:       ttl,
		campaigns: make(map[string]*content.Campaign),
	}, nil
}

// Client exposes the underlying connection for the queue, lock and pub/sub services.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	for i := range attempts {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("redis did not become available after %d attempts", attempts)
}
