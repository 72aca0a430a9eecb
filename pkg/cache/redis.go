// Package cache keeps a Redis copy of the game catalog.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamewish/internal/models"

	"github.com/redis/go-redis/v9"
)

// CatalogKey is the Redis key holding the serialized game list.
const CatalogKey = "gamewish:catalog:all"

// Config holds Redis connection details.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and pings the server.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CatalogCache stores the full game list under a single key.
type CatalogCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCatalogCache returns a cache whose entries expire after ttl.
func NewCatalogCache(client redis.Cmdable, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// Get returns the cached list. ok is false on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]models.Game, bool, error) {
	raw, err := c.client.Get(ctx, CatalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var games []models.Game
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog cache: %w", err)
	}
	return games, true, nil
}

// Set replaces the cached list.
func (c *CatalogCache) Set(ctx context.Context, games []models.Game) error {
	raw, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := c.client.Set(ctx, CatalogKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached list.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, CatalogKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
