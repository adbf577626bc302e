package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/middleware"
	"github.com/soundrop/soundrop/internal/repository"
)

// LikeHandler serves like/unlike toggles and per-publication counts.
type LikeHandler struct {
	Likes *repository.LikeRepo
}

func NewLikeHandler(r *repository.LikeRepo) *LikeHandler {
	if r == nil {
		panic("nil repository passed to NewLikeHandler")
	}
	return &LikeHandler{Likes: r}
}

type likeReq struct {
	PublicationID uint64 `json:"publication_id"`
}

// Add handles POST /v1/likes.  Liking twice is a no-op, not an error.
func (h *LikeHandler) Add(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body likeReq
	if err := c.Bind(&body); err != nil || body.PublicationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publication_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Likes.Add(ctx, p.ID, body.PublicationID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add like failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// Remove handles DELETE /v1/likes by the caller's composite key.
func (h *LikeHandler) Remove(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body likeReq
	if err := c.Bind(&body); err != nil || body.PublicationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publication_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Likes.Remove(ctx, p.ID, body.PublicationID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove like failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Count handles GET /v1/likes/:trackId.
func (h *LikeHandler) Count(c echo.Context) error {
	pubID, ok := pathID(c, "trackId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publication id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Likes.Count(ctx, pubID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"likes": n})
}
