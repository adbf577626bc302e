package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/middleware"
	"github.com/soundrop/soundrop/internal/repository"
)

// CommentHandler serves comment creation and per-publication listing.
type CommentHandler struct {
	Comments *repository.CommentRepo
}

func NewCommentHandler(r *repository.CommentRepo) *CommentHandler {
	if r == nil {
		panic("nil repository passed to NewCommentHandler")
	}
	return &CommentHandler{Comments: r}
}

// Create handles POST /v1/comments.  The author is always the
// authenticated caller; the body cannot speak for another user.
func (h *CommentHandler) Create(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		PublicationID uint64 `json:"publication_id"`
		Content       string `json:"content"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.PublicationID == 0 || strings.TrimSpace(body.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "publication_id and content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	created, err := h.Comments.Create(ctx, p.ID, body.PublicationID, body.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// ListByPublication handles GET /v1/comments/:trackId, oldest first.
func (h *CommentHandler) ListByPublication(c echo.Context) error {
	pubID, ok := pathID(c, "trackId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publication id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Comments.ListForPublication(ctx, pubID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, comments)
}
