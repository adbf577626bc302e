package router

import (
	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/handler"
	"github.com/soundrop/soundrop/internal/middleware"
)

// RegisterUserAdmin wires the admin-only user management endpoints.  Every
// route runs Auth first (principal loaded from storage) and then the admin
// gate, so a freshly demoted admin is locked out on their next request.
func RegisterUserAdmin(e *echo.Echo, h *handler.UserAdminHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/v1/users", auth, middleware.RequireAdmin())
	g.GET("", h.List)
	g.GET("/guests", h.ListGuests)
	g.GET("/unvalidated", h.ListUnvalidated)
	g.PUT("/:id/rank", h.UpdateRank)
	g.PUT("/:id/validate", h.Validate)
}
