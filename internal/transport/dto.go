package transport

import (
	"time"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/notify"
	"github.com/shopwave/storefront/internal/service"
)

// AddItemRequest leaves Quantity nil when the client omits it.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (r AddItemRequest) QuantityOrDefault() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type SetQuantityRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID string `json:"productId"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details,omitempty"`
}

type ProductSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

type CartItemResponse struct {
	ID       string         `json:"id"`
	Quantity int            `json:"quantity"`
	Product  ProductSummary `json:"product"`
}

type CartResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalPrice    float64            `json:"totalPrice"`
}

func NewCartResponse(c *models.Cart) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemResponse{
			ID:       it.ID,
			Quantity: it.Quantity,
			Product: ProductSummary{
				ID:       it.Product.ID,
				Name:     it.Product.Name,
				Price:    it.Product.Price.InexactFloat64(),
				ImageURL: it.Product.ImageURL,
			},
		}
	}
	return CartResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		TotalPrice:    c.TotalPrice().Round(2).InexactFloat64(),
	}
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

type PageMeta struct {
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"total_pages"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	Query      string `json:"query,omitempty"`
}

type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
	Meta PageMeta          `json:"meta"`
}

func NewProductListResponse(p *service.ProductPage) ProductListResponse {
	data := make([]ProductResponse, len(p.Items))
	for i := range p.Items {
		data[i] = NewProductResponse(&p.Items[i])
	}
	return ProductListResponse{
		Data: data,
		Meta: PageMeta{
			Page:       p.Page,
			Size:       p.Size,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			HasPrev:    p.HasPrev(),
			HasNext:    p.HasNext(),
			Query:      p.Query,
		},
	}
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}

type SignInResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}
