package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tastegent/tastegent/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	menuListKey       = "menu:list"
	menuItemKeyPrefix = "menu:item:"
)

var ErrCacheMiss = fmt.Errorf("cache miss")

// RedisCacheRepository implements the catalog cache using Redis
type RedisCacheRepository struct {
	client *redis.Client
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// SetMenuList caches the full catalog listing with TTL
func (r *RedisCacheRepository) SetMenuList(ctx context.Context, items []*domain.MenuItem, ttl time.Duration) error {
	return r.Set(ctx, menuListKey, items, ttl)
}

// GetMenuList retrieves the cached catalog listing
func (r *RedisCacheRepository) GetMenuList(ctx context.Context) ([]*domain.MenuItem, error) {
	var items []*domain.MenuItem
	if err := r.Get(ctx, menuListKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetMenuItem caches a single catalog entry by id with TTL
func (r *RedisCacheRepository) SetMenuItem(ctx context.Context, item *domain.MenuItem, ttl time.Duration) error {
	return r.Set(ctx, menuItemKeyPrefix+item.ID, item, ttl)
}

// GetMenuItem retrieves a cached catalog entry by id
func (r *RedisCacheRepository) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	if err := r.Get(ctx, menuItemKeyPrefix+id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// InvalidateMenu drops the listing plus any cached entries touched by a
// mutation. The next read repopulates from the repository (full re-fetch,
// last fetch wins).
func (r *RedisCacheRepository) InvalidateMenu(ctx context.Context, itemIDs ...string) error {
	keys := []string{menuListKey}
	for _, id := range itemIDs {
		keys = append(keys, menuItemKeyPrefix+id)
	}
	return r.Delete(ctx, keys...)
}

// =============================================================================
// Generic Cache Operations with OpenTelemetry Tracing
// =============================================================================

// Get retrieves a value from cache by key with OTel tracing
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// Set stores a value in cache with TTL and OTel tracing
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// Delete removes keys from cache with OTel tracing
func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}

	return nil
}
