package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/teamnote/auth-service/internal/auth"
	"github.com/teamnote/auth-service/internal/handler"
	"github.com/teamnote/auth-service/internal/middleware"
	"github.com/teamnote/auth-service/internal/model"
)

// Register wires every route of the service onto the Echo instance.
//
// The public surface is the health check, the credential endpoints
// (login, registration, refresh) guarded by the rate limiter, and the
// protected endpoints behind the Authenticate middleware. Role-gated
// endpoints stack RequireRole on top: the admin gate admits admin and
// superuser, the superuser gate admits only superuser.
func Register(e *echo.Echo, a *handler.AuthHandler, svc *auth.Service, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	e.POST("/login", a.Login, limiter)
	e.POST("/register/user", a.Register, limiter)
	e.POST("/refresh", a.Refresh)

	authed := e.Group("", middleware.Authenticate(svc))
	authed.GET("/me", a.Me)
	authed.PATCH("/me", a.UpdateMe)
	authed.GET("/admin-only", a.AdminOnly, middleware.RequireRole(svc, model.RoleAdmin))
	authed.GET("/superuser-only", a.SuperuserOnly, middleware.RequireRole(svc, model.RoleSuperuser))
}
