package service

import (
	"context"
	"strings"

	"github.com/tastegent/tastegent/internal/domain"
)

// MenuService owns catalog reads and admin mutations.
type MenuService struct {
	repo domain.MenuRepository
}

// NewMenuService creates a new menu service
func NewMenuService(repo domain.MenuRepository) *MenuService {
	return &MenuService{repo: repo}
}

// List returns the full catalog
func (s *MenuService) List(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.repo.List(ctx)
}

// Get returns a single catalog entry
func (s *MenuService) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and inserts a new catalog entry
func (s *MenuService) Create(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	normalizeTags(item)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update replaces the full entry, imageUrl included: callers of the general
// update endpoint are expected to round-trip the entry they fetched.
func (s *MenuService) Update(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	normalizeTags(item)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, item.ID)
}

// AssociateImage binds an uploaded file's URL to an entry. It touches nothing
// but the image field, so it can never clobber a concurrent edit of name,
// price or tags. Keyed by entry id, it is safe to retry after a failure.
func (s *MenuService) AssociateImage(ctx context.Context, id string, imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return domain.ErrInvalidMenuItem
	}
	return s.repo.UpdateImageURL(ctx, id, imageURL)
}

// Delete removes a catalog entry
func (s *MenuService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func normalizeTags(item *domain.MenuItem) {
	if item.Tags == nil {
		item.Tags = []string{}
		return
	}
	// Tags behave as a set: drop blanks and duplicates, keep first-seen order.
	seen := make(map[string]struct{}, len(item.Tags))
	out := item.Tags[:0]
	for _, tag := range item.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	item.Tags = out
}
