// Package cache provides a Redis-backed cache of recently generated
// problem texts, used to build duplication-avoidance hints.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// recentKey namespaces the recent-problem list for one prompt title.
func recentKey(promptTitle string) string {
	return "mathpipe:recent:" + promptTitle
}

// PushRecent records a generated problem text for a prompt title, keeping
// only the newest keep entries.
func (c *Cache) PushRecent(ctx context.Context, promptTitle, text string, keep int) error {
	key := recentKey(promptTitle)
	pipe := c.Client.TxPipeline()
	pipe.LPush(ctx, key, text)
	pipe.LTrim(ctx, key, 0, int64(keep-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording recent problem: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recently recorded problem texts for a
// prompt title, newest first.
func (c *Cache) Recent(ctx context.Context, promptTitle string, n int) ([]string, error) {
	texts, err := c.Client.LRange(ctx, recentKey(promptTitle), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading recent problems: %w", err)
	}
	return texts, nil
}
