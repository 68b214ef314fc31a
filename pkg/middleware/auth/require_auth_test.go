package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopwave/storefront/pkg/logging"
	"github.com/shopwave/storefront/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func newProtectedEcho() *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, id)
	}, RequireAuth(secret))
	return e
}

func TestRequireAuth_Cookie(t *testing.T) {
	e := newProtectedEcho()
	token, err := tokens.NewAccessToken(secret, "user-42", "a@b.c", "A", time.Now().Add(time.Minute))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", rec.Body.String())
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	e := newProtectedEcho()
	token, err := tokens.NewAccessToken(secret, "user-7", "", "", time.Now().Add(time.Minute))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", rec.Body.String())
}

func TestRequireAuth_TagsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logging.NewWithWriter(&buf, "info"))))
			return next(c)
		}
	})
	e.GET("/me", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("cart_viewed")
		return c.NoContent(http.StatusOK)
	}, RequireAuth(secret))

	token, err := tokens.NewAccessToken(secret, "user-42", "", "", time.Now().Add(time.Minute))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cart_viewed", entry["msg"])
	assert.Equal(t, "user-42", entry["user_id"])
}

func TestRequireAuth_Rejects(t *testing.T) {
	e := newProtectedEcho()
	expired, err := tokens.NewAccessToken(secret, "user-1", "", "", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "missing token"},
		{name: "garbage token", cookie: &http.Cookie{Name: AccessCookie, Value: "garbage"}},
		{name: "expired token", cookie: &http.Cookie{Name: AccessCookie, Value: expired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
