package cache

import (
	"context"
	"errors"

	"github.com/shopwave/storefront/internal/models"
)

// CartCache is a versioned read-through cache. Writers bump the user's
// version with Invalidate; readers take Version before loading from the
// database and hand it back to SetIfVersion, which refuses to store a cart
// loaded before a later invalidation.
type CartCache interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Version(ctx context.Context, userID string) (int64, error)
	SetIfVersion(ctx context.Context, userID string, version int64, cart *models.Cart) error
	Invalidate(ctx context.Context, userID string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStale means the cart was not stored because the user's version moved.
	ErrStale = errors.New("cache version changed")
)
