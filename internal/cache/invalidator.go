package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drukmotors/dealership-backend/config"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// Invalidator drops cached page renderings for a resource after a mutation.
// The page cache itself is an external collaborator; the dispatcher only
// signals which resource changed.
type Invalidator interface {
	InvalidateResource(ctx context.Context, resource string) error
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) InvalidateResource(ctx context.Context, resource string) error {
	return nil
}

// RedisInvalidator removes every cached page keyed under a resource.
type RedisInvalidator struct {
	client *redis.Client
}

// NewRedisInvalidator connects to Redis and verifies the connection.
func NewRedisInvalidator(cfg *config.RedisConfig) (*RedisInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established for page-cache invalidation", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
	})
	return &RedisInvalidator{client: client}, nil
}

// Close closes the underlying Redis connection.
func (r *RedisInvalidator) Close() error {
	return r.client.Close()
}

// InvalidateResource scans and deletes all "page:<resource>:*" keys.
func (r *RedisInvalidator) InvalidateResource(ctx context.Context, resource string) error {
	pattern := fmt.Sprintf("page:%s:*", resource)

	var deleted int64
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			logger.Error("Failed to delete cached page", err, map[string]interface{}{
				"key": iter.Val(),
			})
			return err
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		logger.Error("Failed to scan page cache", err, map[string]interface{}{
			"pattern": pattern,
		})
		return err
	}

	logger.Debug("Page cache invalidated", map[string]interface{}{
		"resource": resource,
		"deleted":  deleted,
	})
	return nil
}
