package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/shopwave/storefront/pkg/middleware/logging"
)

const bodyLimit = "1M"

// Common is the middleware chain every route runs behind. RequestID must come
// before the logger so the id is on every log line.
func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.RequestID(),
		loggingmw.RequestLogger(logger),
		ecM.Recover(),
		ecM.Secure(),
		ecM.BodyLimit(bodyLimit),
	}
}
