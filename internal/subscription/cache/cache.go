// Package cache keeps the module catalog in Redis between admin writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inmo_crm_backend/internal/subscription/repository"

	"github.com/redis/go-redis/v9"
)

const modulesKey = "subscription:modules:v1"

type ModuleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient parses redisURL and checks the connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}
	return client, nil
}

func NewModuleCache(client *redis.Client, ttl time.Duration) *ModuleCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ModuleCache{client: client, ttl: ttl}
}

// GetModules returns ok=false on a miss.
func (c *ModuleCache) GetModules(ctx context.Context) ([]repository.Module, bool, error) {
	raw, err := c.client.Get(ctx, modulesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var modules []repository.Module
	if err := json.Unmarshal(raw, &modules); err != nil {
		// A payload from an older layout is treated as a miss.
		return nil, false, nil
	}
	return modules, true, nil
}

func (c *ModuleCache) SetModules(ctx context.Context, modules []repository.Module) error {
	raw, err := json.Marshal(modules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, modulesKey, raw, c.ttl).Err()
}

func (c *ModuleCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, modulesKey).Err()
}
