package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, matching the existing
	// frontend contract.
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrDuplicateMenuItem = errors.New("menu item name already exists")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidMenuItem   = errors.New("invalid menu item")
)

// MenuItem is a catalog entry on the restaurant menu.
// ImageURL is optional and only ever mutated through the dedicated
// image association operation, never through general updates from
// clients that don't know about it.
type MenuItem struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`
	Price       decimal.Decimal `json:"price" bson:"-"`
	Tags        []string        `json:"tags" bson:"tags"`
	ImageURL    string          `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

// Validate checks the item invariants before persistence.
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("name is required")
	}
	if m.Price.IsNegative() {
		return errors.New("price must be non-negative")
	}
	return nil
}

// MenuRepository defines persistence operations for the catalog
type MenuRepository interface {
	Create(ctx context.Context, item *MenuItem) error
	GetByID(ctx context.Context, id string) (*MenuItem, error)
	List(ctx context.Context) ([]*MenuItem, error)
	Update(ctx context.Context, item *MenuItem) error
	UpdateImageURL(ctx context.Context, id string, imageURL string) error
	Delete(ctx context.Context, id string) error
}
