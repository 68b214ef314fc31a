package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopwave/storefront/internal/transport"
)

const msgInternal = "Internal server error"

// ErrorHandler renders every error as {"error": ...}. Messages that are
// already an ErrorResponse are sent unchanged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := transport.ErrorResponse{Error: msgInternal}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case transport.ErrorResponse:
			body = m
		case string:
			body = transport.ErrorResponse{Error: m}
		default:
			body = transport.ErrorResponse{Error: http.StatusText(code)}
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		c.Logger().Error(werr)
	}
}

func httpError(code int, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, msg)
}
