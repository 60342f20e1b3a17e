package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamnote/auth-service/internal/auth"
	"github.com/teamnote/auth-service/internal/model"
	"github.com/teamnote/auth-service/internal/queue"
	queue_publisher "github.com/teamnote/auth-service/internal/service"
)

// storeTimeout bounds every database round trip triggered by a request.
const storeTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints. PublishEvents
// toggles the user.registered broker notification; tests leave it off.
type AuthHandler struct {
	Svc           *auth.Service
	PublishEvents bool
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Svc: svc, PublishEvents: true}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResp mirrors the OAuth2 bearer token response shape.
type TokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserResp is the public representation of a user. It never carries
// the password hash.
type UserResp struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name,omitempty"`
	Role      model.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toUserResp(u model.User) UserResp {
	return UserResp{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// unauthorized writes a 401 with the bearer challenge header the
// OAuth2 flow expects.
func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}

// Login verifies form-encoded credentials and returns a token pair.
// The form field is named "username" but carries the email, matching
// the OAuth2 password-grant form convention.
func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	pair, _, err := h.Svc.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return unauthorized(c, "incorrect username or password")
		}
		log.Printf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication service error"})
	}

	return c.JSON(http.StatusOK, TokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Register creates a new user account. Field validation failures come
// back as a 400 with one entry per bad field; duplicate email or
// username is a 409. Newly registered users start at the lowest tier.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	u, err := h.Svc.Register(ctx, auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		var verrs auth.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verrs})
		case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrUsernameTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		default:
			log.Printf("register: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	}

	if h.PublishEvents {
		// Broker notification is best effort and must not delay or fail
		// the request.
		evt := queue.UserRegisteredEvent{
			UserID:       u.ID,
			Email:        u.Email,
			Username:     u.Username,
			Role:         string(u.Role),
			RegisteredAt: u.CreatedAt.UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queue_publisher.PublishUserRegistered(ctx, evt)
		}()
	}

	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Refresh exchanges a refresh token for a new access token. The
// refresh token itself is not rotated. Every failure mode, including a
// deactivated or vanished user, is a 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	access, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			return unauthorized(c, "invalid refresh token")
		case errors.Is(err, auth.ErrInactiveUser):
			return unauthorized(c, "user not found or inactive")
		default:
			log.Printf("refresh: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
		}
	}

	return c.JSON(http.StatusOK, TokenResp{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.Svc.AccessTTL().Seconds()),
	})
}
