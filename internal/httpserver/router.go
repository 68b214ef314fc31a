package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/shopwave/storefront/pkg/middleware/auth"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	CartHandler          *CartHTTP
	CatalogHandler       *CatalogHTTP
	AuthHandler          *AuthHTTP
	NotificationsHandler *NotificationsHTTP
	JWTSecret            []byte
	DB                   Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB != nil {
			if err := d.DB.Ping(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	requireAuth := middleware.RequireAuth(d.JWTSecret)
	api := e.Group("/api")

	api.GET("/products", d.CatalogHandler.GetProducts)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)

	api.POST("/auth/signup", d.AuthHandler.Signup)
	api.POST("/auth/signin", d.AuthHandler.SignIn)
	api.POST("/auth/signout", d.AuthHandler.SignOut)
	api.GET("/auth/session", d.AuthHandler.Session, requireAuth)

	cart := api.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddItem)
	cart.PUT("", d.CartHandler.SetQuantity)
	cart.DELETE("", d.CartHandler.RemoveItem)
	cart.DELETE("/items", d.CartHandler.ClearCart)

	if d.NotificationsHandler != nil {
		api.GET("/notifications", d.NotificationsHandler.Drain, requireAuth)
	}
}
