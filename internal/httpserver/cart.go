package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/notify"
	"github.com/shopwave/storefront/internal/service"
	"github.com/shopwave/storefront/internal/transport"
	"github.com/shopwave/storefront/pkg/kafka"
	"github.com/shopwave/storefront/pkg/logging"
	middleware "github.com/shopwave/storefront/pkg/middleware/auth"
)

const (
	msgUnauthorized    = "Unauthorized. Please sign in."
	msgValidation      = "Validation failed"
	msgProductNotFound = "Product not found"
	msgItemNotFound    = "Item not in cart"

	publishTimeout = 2 * time.Second
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type CartEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userID"`
	CartID    string    `json:"cartID"`
	ProductID string    `json:"productID,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	At        time.Time `json:"at"`
}

// CartHTTP serves /api/cart. Notify and Events may be nil.
type CartHTTP struct {
	Svc    *service.CartService
	Notify *notify.Manager
	Events EventPublisher
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, _ := middleware.UserID(c)
	cart, err := h.Svc.GetOrCreateCart(ctx, userID)
	if err != nil {
		return cartError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(cart))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return bindError(l, "add_to_cart_error", err)
	}

	userID, _ := middleware.UserID(c)
	quantity := req.QuantityOrDefault()
	cart, err := h.Svc.AddItem(ctx, userID, req.ProductID, quantity)
	if err != nil {
		return cartError(l, "add_to_cart_error", err)
	}

	l.Info("item_added_to_cart", "product_id", req.ProductID, "quantity", quantity)
	h.after(ctx, l, cart, "cart_item_added", req.ProductID, quantity, "Added to cart")
	return c.JSON(http.StatusOK, transport.NewCartResponse(cart))
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	var req transport.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return bindError(l, "set_quantity_error", err)
	}

	userID, _ := middleware.UserID(c)
	cart, err := h.Svc.SetQuantity(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return cartError(l, "set_quantity_error", err)
	}

	l.Info("cart_quantity_set", "product_id", req.ProductID, "quantity", req.Quantity)
	h.after(ctx, l, cart, "cart_item_quantity_set", req.ProductID, req.Quantity, "Cart updated")
	return c.JSON(http.StatusOK, transport.NewCartResponse(cart))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	var req transport.RemoveItemRequest
	if err := c.Bind(&req); err != nil {
		return bindError(l, "remove_from_cart_error", err)
	}

	userID, _ := middleware.UserID(c)
	cart, err := h.Svc.RemoveItem(ctx, userID, req.ProductID)
	if err != nil {
		return cartError(l, "remove_from_cart_error", err)
	}

	l.Info("item_removed_from_cart", "product_id", req.ProductID)
	h.after(ctx, l, cart, "cart_item_removed", req.ProductID, 0, "Removed from cart")
	return c.JSON(http.StatusOK, transport.NewCartResponse(cart))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, _ := middleware.UserID(c)
	cart, err := h.Svc.ClearCart(ctx, userID)
	if err != nil {
		return cartError(l, "clear_cart_error", err)
	}

	l.Info("cart_cleared")
	h.after(ctx, l, cart, "cart_cleared", "", 0, "Cart cleared")
	return c.JSON(http.StatusOK, transport.NewCartResponse(cart))
}

// after runs the side effects of a successful mutation. Their failures are
// logged and never change the response.
func (h *CartHTTP) after(ctx context.Context, l *slog.Logger, cart *models.Cart, event, productID string, quantity int, message string) {
	if h.Notify != nil {
		h.Notify.Push(cart.UserID, message, notify.TypeSuccess)
	}
	if h.Events == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := CartEvent{
		Type:      event,
		UserID:    cart.UserID,
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		At:        time.Now().UTC(),
	}
	if err := h.Events.PublishEvent(pubCtx, kafka.TopicCartEvents, cart.UserID, ev); err != nil {
		l.Warn("cart_event_publish_error", "event", event, "error", err)
	}
}

func bindError(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{
		Error:   msgValidation,
		Details: []service.FieldError{{Field: "body", Message: "invalid request body"}},
	})
}

func cartError(l *slog.Logger, event string, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		l.Warn(event, "status", http.StatusUnauthorized, "error", err)
		return httpError(http.StatusUnauthorized, msgUnauthorized)
	case errors.As(err, &ve):
		l.Warn(event, "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Error: msgValidation, Details: ve.Issues})
	case errors.Is(err, service.ErrProductNotFound):
		l.Warn(event, "status", http.StatusNotFound, "error", err)
		return httpError(http.StatusNotFound, msgProductNotFound)
	case errors.Is(err, service.ErrItemNotFound):
		l.Warn(event, "status", http.StatusNotFound, "error", err)
		return httpError(http.StatusNotFound, msgItemNotFound)
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return httpError(http.StatusInternalServerError, msgInternal)
	}
}
