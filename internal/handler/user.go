package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamnote/auth-service/internal/auth"
	"github.com/teamnote/auth-service/internal/middleware"
)

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		return unauthorized(c, "could not validate credentials")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

type updateReq struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// UpdateMe applies a partial update to the authenticated user's own
// profile. A password in the body is re-hashed before storage.
// Deactivating the account here (is_active=false) is the supported
// soft-delete path.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		return unauthorized(c, "could not validate credentials")
	}
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	updated, err := h.Svc.UpdateProfile(ctx, u.ID, auth.UpdateInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		var verrs auth.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": verrs})
		case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrUsernameTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		default:
			log.Printf("update profile: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, toUserResp(updated))
}

// AdminOnly is the demonstration endpoint for the admin tier; it
// admits admins and superusers.
func (h *AuthHandler) AdminOnly(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "admin access granted"})
}

// SuperuserOnly admits only the top tier.
func (h *AuthHandler) SuperuserOnly(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "superuser access granted"})
}
