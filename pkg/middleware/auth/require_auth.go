package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/shopwave/storefront/pkg/logging"
	"github.com/shopwave/storefront/pkg/tokens"
)

const (
	AccessCookie = "accessToken"
	claimsKey    = "claims"
	userIDKey    = "user_id"
	tokenLookup  = "cookie:" + AccessCookie + ",header:Authorization:Bearer "
	unauthorized = "Unauthorized. Please sign in."
)

// RequireAuth accepts an HS256 access token from the accessToken cookie or a
// bearer header and exposes its subject as "user_id" in the echo context and
// on the request logger.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: tokenLookup,
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			return tokens.AccessClaimsFromToken(auth, secret)
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := c.Get(claimsKey).(*tokens.AccessClaims); ok {
				c.Set(userIDKey, claims.Subject)
				req := c.Request()
				c.SetRequest(req.WithContext(logging.With(req.Context(), "user_id", claims.Subject)))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, unauthorized).SetInternal(err)
		},
	})
}

func UserID(c echo.Context) (string, bool) {
	s, ok := c.Get(userIDKey).(string)
	return s, ok && s != ""
}

// SetUserID is used by handlers' tests and by callers that authenticate by
// other means.
func SetUserID(c echo.Context, userID string) {
	c.Set(userIDKey, userID)
}
