// Package cache keeps burn job status in Redis so polling clients do
// not hammer the database while the worker grinds through the queue.
// The database row remains authoritative; a miss here falls through to
// the repository.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Cache provides job status caching using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// SetJob caches a burn job snapshot
func (c *Cache) SetJob(ctx context.Context, job *models.BurnJob, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return c.client.Set(ctx, jobKey(job.ID), data, ttl).Err()
}

// GetJob retrieves a burn job snapshot. A cache miss returns (nil, nil).
func (c *Cache) GetJob(ctx context.Context, jobID string) (*models.BurnJob, error) {
	data, err := c.client.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get job from cache: %w", err)
	}

	var job models.BurnJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// DeleteJob removes a job snapshot from the cache
func (c *Cache) DeleteJob(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, jobKey(jobID)).Err()
}

func jobKey(id string) string {
	return fmt.Sprintf("burnjob:%s", id)
}
