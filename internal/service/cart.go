package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shopwave/storefront/internal/cache"
	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/repo"
	"github.com/shopwave/storefront/pkg/logging"
)

const loadTimeout = 5 * time.Second

type CartStore interface {
	EnsureCart(ctx context.Context, userID string) error
	LoadCart(ctx context.Context, userID string) (*models.Cart, error)
	IncrementItem(ctx context.Context, userID, productID string, quantity int) error
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) error
	DeleteItem(ctx context.Context, userID, productID string) error
	ClearItems(ctx context.Context, userID string) error
}

type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// CartService owns the user's single cart. Each mutation is one conditional
// write in the store, so concurrent requests never lose each other's
// changes. Cache is optional.
type CartService struct {
	Repo     CartStore
	Products ProductGetter
	Cache    cache.CartCache

	loads singleflight.Group
}

func NewCartService(store CartStore, products ProductGetter, c cache.CartCache) *CartService {
	return &CartService{Repo: store, Products: products, Cache: c}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first
// access.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	if s.Cache != nil {
		cart, err := s.Cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logging.FromContext(ctx).With("svc", "cart.get").Warn("cart_cache_get_error", "error", err)
		}
	}

	v, err, _ := s.loads.Do(userID, func() (any, error) {
		// Every waiter shares this load, so it must not end with the first
		// caller's request.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		if err := s.Repo.EnsureCart(lctx, userID); err != nil {
			return nil, fmt.Errorf("ensure cart: %w", err)
		}
		return s.reload(lctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if err := s.checkLine(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	if err := s.Repo.EnsureCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}
	if err := s.Repo.IncrementItem(ctx, userID, productID, quantity); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return s.afterWrite(ctx, userID)
}

// SetQuantity makes the product's line hold exactly quantity units, adding
// the line if needed.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if err := s.checkLine(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	if err := s.Repo.EnsureCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}
	if err := s.Repo.SetItemQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}
	return s.afterWrite(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(productID) == "" {
		ve := &ValidationError{}
		ve.add("productId", "Product ID is required")
		return nil, ve
	}
	if err := s.Repo.EnsureCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}
	if err := s.Repo.DeleteItem(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrItemNotFound)
		}
		return nil, fmt.Errorf("remove item: %w", err)
	}
	return s.afterWrite(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := s.Repo.EnsureCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure cart: %w", err)
	}
	if err := s.Repo.ClearItems(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return s.afterWrite(ctx, userID)
}

func (s *CartService) checkLine(ctx context.Context, userID, productID string, quantity int) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	ve := &ValidationError{}
	if strings.TrimSpace(productID) == "" {
		ve.add("productId", "Product ID is required")
	}
	if quantity < 1 {
		ve.add("quantity", "Quantity must be at least 1")
	}
	if err := ve.orNil(); err != nil {
		return err
	}

	if _, err := s.Products.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
		}
		return fmt.Errorf("get product: %w", err)
	}
	return nil
}

func (s *CartService) afterWrite(ctx context.Context, userID string) (*models.Cart, error) {
	s.invalidate(ctx, userID)
	return s.reload(ctx, userID)
}

// reload reads the cart from the store. The cache version is taken first, so
// a write that lands while the cart is being read makes the store-back fail
// instead of caching the older cart.
func (s *CartService) reload(ctx context.Context, userID string) (*models.Cart, error) {
	version, cacheable := s.cacheVersion(ctx, userID)

	cart, err := s.Repo.LoadCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !cacheable {
		return cart, nil
	}

	l := logging.FromContext(ctx).With("svc", "cart.reload")
	switch err := s.Cache.SetIfVersion(ctx, userID, version, cart); {
	case errors.Is(err, cache.ErrStale):
		l.Debug("cart_cache_set_skipped", "version", version)
	case err != nil:
		l.Warn("cart_cache_set_error", "error", err)
	}
	return cart, nil
}

func (s *CartService) cacheVersion(ctx context.Context, userID string) (int64, bool) {
	if s.Cache == nil {
		return 0, false
	}
	v, err := s.Cache.Version(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).With("svc", "cart.reload").Warn("cart_cache_version_error", "error", err)
		return 0, false
	}
	return v, true
}

func (s *CartService) invalidate(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		logging.FromContext(ctx).With("svc", "cart.invalidate").Warn("cart_cache_invalidate_error", "error", err)
	}
}
