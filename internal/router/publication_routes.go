package router

import (
	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/handler"
	"github.com/soundrop/soundrop/internal/middleware"
)

// RegisterPublications wires the publication workflow and read endpoints.
// Browsing is public (and cached); publishing requires an authenticated,
// validated account; deletion is admin-only.
func RegisterPublications(e *echo.Echo, h *handler.PublicationHandler, auth, cache echo.MiddlewareFunc) {
	// Public browse endpoints.
	e.GET("/v1/publications", h.List, cache)
	e.GET("/v1/publications/last", h.Last, cache)
	e.GET("/v1/publications/getbygenreid/:id", h.ByGenre, cache)

	// The validation gate is the server-side publish barrier: guests can
	// read everything but cannot submit until an admin validates them.
	e.POST("/v1/publications", h.Create, auth, middleware.RequireValidated())
	e.GET("/v1/publications/my", h.My, auth)
	e.PUT("/v1/publications/:id/genres", h.ReplaceGenres, auth, middleware.RequireValidated())

	e.DELETE("/v1/publications/:id", h.Delete, auth, middleware.RequireAdmin())
}
