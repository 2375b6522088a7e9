package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScopeCache stores resolved manager scopes under a generation number.
// Invalidate bumps the generation so every cached scope becomes unreachable
// and expires through its TTL.
type ScopeCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewScopeCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *ScopeCache {
	return &ScopeCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *ScopeCache) generationKey() string {
	return Key(c.prefix, "scope", "gen")
}

func (c *ScopeCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ScopeCache) scopeKey(gen int64, managerID string) string {
	return Key(c.prefix, "scope", strconv.FormatInt(gen, 10), managerID)
}

// Get returns the cached scope together with the generation it was read
// under. Callers pass that generation back to Set.
func (c *ScopeCache) Get(ctx context.Context, managerID string) ([]string, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read scope generation: %w", err)
	}

	raw, err := c.rdb.Get(ctx, c.scopeKey(gen, managerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("read scope: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, gen, false, fmt.Errorf("decode scope: %w", err)
	}
	return ids, gen, true, nil
}

// Set stores a scope under gen. A scope read before an invalidation lands
// under the old generation, where no reader looks, and expires with its TTL.
func (c *ScopeCache) Set(ctx context.Context, gen int64, managerID string, userIDs []string) error {
	raw, err := json.Marshal(userIDs)
	if err != nil {
		return fmt.Errorf("encode scope: %w", err)
	}
	return c.rdb.Set(ctx, c.scopeKey(gen, managerID), raw, c.ttl).Err()
}

func (c *ScopeCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.generationKey()).Err()
}
