package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"        json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash *string   `                                 json:"-"`
	Image        string    `                                 json:"image"`
	CreatedAt    time.Time `                                 json:"createdAt"`
	UpdatedAt    time.Time `                                 json:"updatedAt"`
}

type Product struct {
	ID          string          `gorm:"primaryKey;size:36"                 json:"id"`
	Name        string          `gorm:"not null"                           json:"name"`
	Description string          `gorm:"not null"                           json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"        json:"price"`
	ImageURL    string          `gorm:"not null"                           json:"imageUrl"`
	CreatedAt   time.Time       `gorm:"index"                              json:"createdAt"`
	UpdatedAt   time.Time       `                                          json:"updatedAt"`
}

type Cart struct {
	ID        string     `gorm:"primaryKey;size:36"         json:"id"`
	UserID    string     `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID"          json:"items"`
	CreatedAt time.Time  `                                  json:"createdAt"`
	UpdatedAt time.Time  `                                  json:"updatedAt"`
}

type CartItem struct {
	ID        string    `gorm:"primaryKey;size:36"                           json:"id"`
	CartID    string    `gorm:"uniqueIndex:idx_cart_product;size:36;not null" json:"cartId"`
	ProductID string    `gorm:"uniqueIndex:idx_cart_product;size:36;not null" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID"                         json:"product"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                  json:"quantity"`
	CreatedAt time.Time `                                                    json:"createdAt"`
	UpdatedAt time.Time `                                                    json:"updatedAt"`
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

// TotalQuantity is the number of units across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// All lists the models in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &Cart{}, &CartItem{}}
}
