package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopwave/storefront/internal/service"
	"github.com/shopwave/storefront/internal/transport"
	"github.com/shopwave/storefront/pkg/kafka"
	"github.com/shopwave/storefront/pkg/logging"
	middleware "github.com/shopwave/storefront/pkg/middleware/auth"
	"github.com/shopwave/storefront/pkg/tokens"
)

const (
	msgEmailTaken         = "An account with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
)

type UserEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"userID"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// AuthHTTP serves account endpoints. Events may be nil.
type AuthHTTP struct {
	Svc           *service.AuthService
	Events        EventPublisher
	SecureCookies bool
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return httpError(http.StatusBadRequest, msgValidation)
	}

	user, err := h.Svc.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			l.Warn("signup_error", "status", 400, "error", err)
			return httpError(http.StatusBadRequest, ve.First())
		case errors.Is(err, service.ErrConflict):
			l.Warn("signup_error", "status", 409, "error", err)
			return httpError(http.StatusConflict, msgEmailTaken)
		default:
			l.Error("signup_error", "status", 500, "error", err)
			return httpError(http.StatusInternalServerError, msgInternal)
		}
	}

	h.publish(ctx, UserEvent{Type: "user_registered", UserID: user.ID, Email: user.Email, At: time.Now().UTC()})
	return c.JSON(http.StatusCreated, transport.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req transport.SignInRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signin_error", "status", 400, "error", err)
		return httpError(http.StatusBadRequest, msgValidation)
	}

	res, err := h.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("signin_failed", "status", 401, "error", err)
			return httpError(http.StatusUnauthorized, msgInvalidCredentials)
		}
		l.Error("signin_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, msgInternal)
	}

	c.SetCookie(tokens.CreateCookie(middleware.AccessCookie, res.AccessToken, "/", res.AccessExp, h.SecureCookies))
	l.Info("signin_successful", "user_id", res.User.ID)

	h.publish(ctx, UserEvent{Type: "user_signed_in", UserID: res.User.ID, Email: res.User.Email, At: time.Now().UTC()})
	return c.JSON(http.StatusOK, transport.SignInResponse{
		User:      transport.NewUserResponse(res.User),
		ExpiresAt: res.AccessExp,
	})
}

func (h *AuthHTTP) SignOut(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(middleware.AccessCookie, "/", h.SecureCookies))
	return c.JSON(http.StatusOK, echo.Map{"message": "signed out"})
}

func (h *AuthHTTP) Session(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.session")

	userID, _ := middleware.UserID(c)
	user, err := h.Svc.Session(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			l.Warn("session_error", "status", 401, "error", err)
			return httpError(http.StatusUnauthorized, msgUnauthorized)
		}
		l.Error("session_error", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, msgInternal)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(user))
}

func (h *AuthHTTP) publish(ctx context.Context, ev UserEvent) {
	if h.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := h.Events.PublishEvent(pubCtx, kafka.TopicUserEvents, ev.UserID, ev); err != nil {
		logging.FromContext(ctx).Warn("user_event_publish_error", "event", ev.Type, "error", err)
	}
}
