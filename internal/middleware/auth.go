package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teamnote/auth-service/internal/auth"
	"github.com/teamnote/auth-service/internal/model"
)

// userContextKey is where Authenticate stores the resolved user on the
// Echo context.
const userContextKey = "user"

// UserFromContext returns the authenticated user placed on the context
// by Authenticate.
func UserFromContext(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}

// Authenticate returns an Echo middleware that validates a Bearer
// access token through the auth service and injects the resolved user
// into the request context. The full gate for a protected route is
// resolve-current-user, then require-active, then (optionally) a
// RequireRole threshold; the first two live here so every protected
// handler sees only active identities.
func Authenticate(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := svc.CurrentUser(ctx, raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication service error"})
			}
			if _, err := svc.RequireActive(u); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "inactive user"})
			}

			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// RequireRole returns a middleware enforcing a minimum role tier on an
// already-authenticated request. It assumes Authenticate ran earlier
// in the chain; a missing user is treated as unauthenticated rather
// than forbidden.
func RequireRole(svc *auth.Service, min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := UserFromContext(c)
			if !ok {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if _, err := svc.RequireRole(u, min); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not enough permissions"})
			}
			return next(c)
		}
	}
}
