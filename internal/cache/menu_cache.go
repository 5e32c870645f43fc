package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faya/preorder-api/internal/domain"
)

const menuKeyPrefix = "menu:list:"

// MenuCache stores serialised menu listings in Redis.
type MenuCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewMenuCache returns a cache writing entries that expire after ttl. A nil client or
// non-positive ttl disables caching.
func NewMenuCache(client redis.UniversalClient, ttl time.Duration) *MenuCache {
	return &MenuCache{client: client, ttl: ttl}
}

func (m *MenuCache) enabled() bool {
	return m != nil && m.client != nil && m.ttl > 0
}

// Key derives the cache key of a listing.
func Key(vendorID string, limit, offset int) string {
	if vendorID == "" {
		vendorID = "all"
	}
	return fmt.Sprintf("%s%s:%d:%d", menuKeyPrefix, vendorID, limit, offset)
}

// Get returns the cached listing under key. A miss reports ok=false with a nil error.
func (m *MenuCache) Get(ctx context.Context, key string) ([]domain.FoodItem, bool, error) {
	if !m.enabled() {
		return nil, false, nil
	}
	raw, err := m.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("menu cache get: %w", err)
	}
	var items []domain.FoodItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("menu cache decode: %w", err)
	}
	return items, true, nil
}

// Set stores items under key.
func (m *MenuCache) Set(ctx context.Context, key string, items []domain.FoodItem) error {
	if !m.enabled() {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("menu cache encode: %w", err)
	}
	if err := m.client.Set(ctx, key, raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("menu cache set: %w", err)
	}
	return nil
}

// Invalidate drops every cached listing.
func (m *MenuCache) Invalidate(ctx context.Context) error {
	if !m.enabled() {
		return nil
	}
	iter := m.client.Scan(ctx, 0, menuKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("menu cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return m.client.Del(ctx, keys...).Err()
}
