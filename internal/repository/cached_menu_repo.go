package repository

import (
	"context"
	"time"

	"github.com/tastegent/tastegent/internal/domain"
)

const menuCacheTTL = 5 * time.Minute

// CachedMenuRepository wraps MongoMenuRepository with Redis caching. It is
// the catalog store handed to the view layer: reads go through the cache,
// every successful mutation invalidates it so the next read is a full
// re-fetch from Mongo.
type CachedMenuRepository struct {
	mongo *MongoMenuRepository
	cache *RedisCacheRepository
}

// NewCachedMenuRepository creates a new cached menu repository
func NewCachedMenuRepository(mongo *MongoMenuRepository, cache *RedisCacheRepository) *CachedMenuRepository {
	return &CachedMenuRepository{
		mongo: mongo,
		cache: cache,
	}
}

// List retrieves the full catalog with caching
func (r *CachedMenuRepository) List(ctx context.Context) ([]*domain.MenuItem, error) {
	if items, err := r.cache.GetMenuList(ctx); err == nil {
		return items, nil
	}

	// Cache miss - fetch from MongoDB
	items, err := r.mongo.List(ctx)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.SetMenuList(ctx, items, menuCacheTTL)

	return items, nil
}

// GetByID retrieves a catalog entry with caching
func (r *CachedMenuRepository) GetByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	if item, err := r.cache.GetMenuItem(ctx, id); err == nil {
		return item, nil
	}

	item, err := r.mongo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = r.cache.SetMenuItem(ctx, item, menuCacheTTL)

	return item, nil
}

// Create inserts an entry and invalidates the listing
func (r *CachedMenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	if err := r.mongo.Create(ctx, item); err != nil {
		return err
	}
	_ = r.cache.InvalidateMenu(ctx, item.ID)
	return nil
}

// Update replaces an entry and invalidates the listing
func (r *CachedMenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	if err := r.mongo.Update(ctx, item); err != nil {
		return err
	}
	_ = r.cache.InvalidateMenu(ctx, item.ID)
	return nil
}

// UpdateImageURL performs the narrow image-only mutation and invalidates the
// listing. A failed association leaves the cache untouched.
func (r *CachedMenuRepository) UpdateImageURL(ctx context.Context, id string, imageURL string) error {
	if err := r.mongo.UpdateImageURL(ctx, id, imageURL); err != nil {
		return err
	}
	_ = r.cache.InvalidateMenu(ctx, id)
	return nil
}

// Delete removes an entry and invalidates the listing
func (r *CachedMenuRepository) Delete(ctx context.Context, id string) error {
	if err := r.mongo.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.InvalidateMenu(ctx, id)
	return nil
}
