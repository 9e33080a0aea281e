package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ScriptCache implements ports.ScriptCache with one JSON value per key.
type ScriptCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewScriptCache creates a cache storing keys under <prefix>cache:.
func NewScriptCache(client *backend.Client, opts ...Option) *ScriptCache {
	s := newSettings(opts)
	return &ScriptCache{
		client: client,
		prefix: s.prefix + "cache:",
		ttl:    s.ttl,
	}
}

// Get loads a cached script.
func (c *ScriptCache) Get(ctx context.Context, key string) (*domain.Script, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get script from redis: %w", err)
	}

	var script domain.Script
	if err := json.Unmarshal(val, &script); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached script: %w", err)
	}
	return &script, true, nil
}

// Set stores script. A zero ttl falls back to the configured default, which may itself be zero.
func (c *ScriptCache) Set(ctx context.Context, key string, script *domain.Script, ttl time.Duration) error {
	data, err := json.Marshal(script)
	if err != nil {
		return fmt.Errorf("failed to marshal script: %w", err)
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save script to redis: %w", err)
	}
	return nil
}
