package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/notify"
	"github.com/shopwave/storefront/internal/repo"
	"github.com/shopwave/storefront/internal/service"
	"github.com/shopwave/storefront/internal/testutil"
	"github.com/shopwave/storefront/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

type published struct {
	topic string
	key   string
	event any
}

type stubPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *stubPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return p.err
}

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Events *stubPublisher
	Notify *notify.Manager
	Cart   *CartHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	r := repo.New(testutil.InitTestDB(t))
	events := &stubPublisher{}
	manager := notify.NewManager(time.Minute)

	cartHandler := &CartHTTP{
		Svc:    service.NewCartService(r, r, nil),
		Notify: manager,
		Events: events,
	}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	Register(e, &Deps{
		CartHandler:          cartHandler,
		CatalogHandler:       &CatalogHTTP{Svc: service.NewCatalogService(r, nil)},
		AuthHandler:          &AuthHTTP{Svc: service.NewAuthService(r, testSecret, time.Hour), Events: events},
		NotificationsHandler: &NotificationsHTTP{Manager: manager},
		JWTSecret:            testSecret,
		DB:                   r,
	})

	return &testEnv{T: t, E: e, Repo: r, Events: events, Notify: manager, Cart: cartHandler}
}

func (env *testEnv) token(userID string) string {
	tok, err := tokens.NewAccessToken(testSecret, userID, userID+"@example.com", userID, time.Now().Add(time.Hour))
	require.NoError(env.T, err)
	return tok
}

func (env *testEnv) newJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// do sends the request through the router. An empty userID sends it without
// credentials.
func (env *testEnv) do(method, path string, body any, userID string) *httptest.ResponseRecorder {
	req := env.newJSONRequest(method, path, body)
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: env.token(userID)})
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (env *testEnv) product(name, price string) models.Product {
	return testutil.CreateProduct(env.T, env.Repo.DB, name, name+" description", price)
}

var errBroker = errors.New("broker unavailable")

func doRequest(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}
