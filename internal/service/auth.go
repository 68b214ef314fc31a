package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopwave/storefront/internal/models"
	"github.com/shopwave/storefront/internal/repo"
	pkg_hash "github.com/shopwave/storefront/pkg/hash"
	"github.com/shopwave/storefront/pkg/logging"
	"github.com/shopwave/storefront/pkg/tokens"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type AuthService struct {
	Repo      UserStore
	JWTSecret []byte
	AccessTTL time.Duration

	now func() time.Time
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	AccessExp   time.Time
}

func NewAuthService(store UserStore, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{Repo: store, JWTSecret: secret, AccessTTL: ttl, now: time.Now}
}

func AvatarURL(name string) string {
	return avatarBaseURL + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return strings.Contains(email[at+1:], ".")
}

func validateSignup(name, email, password string) error {
	ve := &ValidationError{}
	if utf8.RuneCountInString(name) < 2 {
		ve.add("name", "Name must be at least 2 characters")
	}
	if !validEmail(email) {
		ve.add("email", "Invalid email address")
	}
	if utf8.RuneCountInString(password) < 6 {
		ve.add("password", "Password must be at least 6 characters")
	} else if len(password) > pkg_hash.MaxPasswordBytes {
		ve.add("password", "Password must be at most 72 bytes")
	}
	return ve.orNil()
}

// Signup registers a credentials account. The email must not be taken.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if err := validateSignup(name, email, password); err != nil {
		return nil, err
	}

	if _, err := s.Repo.FindUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: &pwHash,
		Image:        AvatarURL(name),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == nil || !pkg_hash.CheckPassword(*user.PasswordHash, password) {
		l.Warn("signin_failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	exp := s.clock().Add(s.AccessTTL)
	token, err := tokens.NewAccessToken(s.JWTSecret, user.ID, user.Email, user.Name, exp)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{User: user, AccessToken: token, AccessExp: exp}, nil
}

// Session resolves the authenticated user id to its account.
func (s *AuthService) Session(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
