package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopwave/storefront/internal/notify"
	"github.com/shopwave/storefront/internal/transport"
	middleware "github.com/shopwave/storefront/pkg/middleware/auth"
)

type NotificationsHTTP struct {
	Manager *notify.Manager
}

func (h *NotificationsHTTP) Drain(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return httpError(http.StatusUnauthorized, msgUnauthorized)
	}
	return c.JSON(http.StatusOK, transport.NotificationsResponse{
		Notifications: h.Manager.Drain(userID),
	})
}
