package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/repository"
)

// topGenresLimit caps the popularity listing used by the browse sidebar.
const topGenresLimit = 5

// GenreHandler serves genre listing and the admin-only genre management
// endpoints.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

func NewGenreHandler(g *repository.GenreRepo) *GenreHandler {
	if g == nil {
		panic("nil repository passed to NewGenreHandler")
	}
	return &GenreHandler{Genres: g}
}

// List handles GET /v1/genres.
func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, genres)
}

// Top handles GET /v1/genres/top: genres ordered by publication count.
func (h *GenreHandler) Top(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.Top(ctx, topGenresLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, genres)
}

// Create handles POST /v1/genres (admin only).
func (h *GenreHandler) Create(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.Create(ctx, body.Name)
	if err != nil {
		if err == repository.ErrGenreExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create genre failed"})
	}
	return c.JSON(http.StatusCreated, g)
}

// Delete handles DELETE /v1/genres/:id (admin only).  The genre and its
// join rows are removed atomically; affected publications simply lose the
// genre from their lists.
func (h *GenreHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.Delete(ctx, id)
	if err != nil {
		if err == repository.ErrGenreNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "deleted": g})
}
