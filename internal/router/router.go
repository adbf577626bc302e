// Package router defines how HTTP routes are registered for the API.
// Route groups mirror the authorization model: public browse endpoints,
// authenticated endpoints behind the Auth middleware, and admin endpoints
// behind Auth + RequireAdmin.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/handler"
)

// RegisterRoutes registers routes that require no authentication or
// handler state.  Currently that is only the health check used by load
// balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
