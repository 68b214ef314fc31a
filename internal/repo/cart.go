package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopwave/storefront/internal/models"
)

// EnsureCart inserts an empty cart for userID unless one exists. Concurrent
// callers race on the unique user_id index and all of them succeed.
func (r *GormRepo) EnsureCart(ctx context.Context, userID string) error {
	cart := models.Cart{UserID: userID}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(&cart).Error
}

func (r *GormRepo) LoadCart(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, notFound(err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (r *GormRepo) cartID(ctx context.Context, userID string) (string, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return "", notFound(err)
	}
	return cart.ID, nil
}

func (r *GormRepo) upsertItem(ctx context.Context, userID, productID string, quantity int, set clause.Expr) error {
	cartID, err := r.cartID(ctx, userID)
	if err != nil {
		return err
	}
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   set,
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Omit(clause.Associations).
		Create(&item).Error
}

// IncrementItem adds quantity to the product's line, creating it if absent,
// in a single statement.
func (r *GormRepo) IncrementItem(ctx context.Context, userID, productID string, quantity int) error {
	return r.upsertItem(ctx, userID, productID, quantity, gorm.Expr("cart_items.quantity + excluded.quantity"))
}

// SetItemQuantity overwrites the line's quantity, creating it if absent.
func (r *GormRepo) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	return r.upsertItem(ctx, userID, productID, quantity, gorm.Expr("excluded.quantity"))
}

func (r *GormRepo) DeleteItem(ctx context.Context, userID, productID string) error {
	cartID, err := r.cartID(ctx, userID)
	if err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearItems(ctx context.Context, userID string) error {
	cartID, err := r.cartID(ctx, userID)
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
