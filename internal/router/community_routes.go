package router

import (
	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/handler"
	"github.com/soundrop/soundrop/internal/middleware"
)

// RegisterGenres wires genre browsing (public, cached) and the admin-only
// genre management endpoints.
func RegisterGenres(e *echo.Echo, h *handler.GenreHandler, auth, cache echo.MiddlewareFunc) {
	e.GET("/v1/genres", h.List, cache)
	e.GET("/v1/genres/top", h.Top, cache)

	e.POST("/v1/genres", h.Create, auth, middleware.RequireAdmin())
	e.DELETE("/v1/genres/:id", h.Delete, auth, middleware.RequireAdmin())
}

// RegisterComments wires comment posting (authenticated) and per-track
// listing (public, cached like the other browse reads).
func RegisterComments(e *echo.Echo, h *handler.CommentHandler, auth, cache echo.MiddlewareFunc) {
	e.POST("/v1/comments", h.Create, auth)
	e.GET("/v1/comments/:trackId", h.ListByPublication, cache)
}

// RegisterLikes wires like toggling (authenticated) and public cached
// counts.
func RegisterLikes(e *echo.Echo, h *handler.LikeHandler, auth, cache echo.MiddlewareFunc) {
	e.POST("/v1/likes", h.Add, auth)
	e.DELETE("/v1/likes", h.Remove, auth)
	e.GET("/v1/likes/:trackId", h.Count, cache)
}
