package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/middleware"
	"github.com/soundrop/soundrop/internal/model"
	"github.com/soundrop/soundrop/internal/queue"
	"github.com/soundrop/soundrop/internal/repository"
	queuepublisher "github.com/soundrop/soundrop/internal/service"
)

// PublicationHandler serves the publication workflow and the read
// projections consumed by the client.
type PublicationHandler struct {
	Publications *repository.PublicationRepo
	Genres       *repository.GenreRepo
}

func NewPublicationHandler(p *repository.PublicationRepo, g *repository.GenreRepo) *PublicationHandler {
	if p == nil || g == nil {
		panic("nil repository passed to NewPublicationHandler")
	}
	return &PublicationHandler{Publications: p, Genres: g}
}

type createPublicationReq struct {
	URL      string   `json:"url"`
	Platform string   `json:"platform"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	CoverUrl string   `json:"cover_url"`
	EmbedUrl string   `json:"embed_url"`
	Tags     string   `json:"tags"`
	GenreIDs []uint64 `json:"genre_ids"`
}

// Create handles POST /v1/publications.  The caller must be authenticated
// and validated (enforced by middleware).  The publication row and its
// genre links are written in one transaction; on any failure nothing is
// persisted.
func (h *PublicationHandler) Create(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPublicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.URL == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url and title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pub := &model.Publication{
		UserID:   p.ID,
		URL:      req.URL,
		Platform: req.Platform,
		Title:    req.Title,
		Artist:   req.Artist,
		CoverUrl: req.CoverUrl,
		EmbedUrl: req.EmbedUrl,
		Tags:     req.Tags,
	}
	pubID, err := h.Publications.Create(ctx, pub, req.GenreIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create publication failed"})
	}

	// Best-effort domain event; publish failures are logged by the
	// publisher and never surface to the client.
	ev := queue.PublicationCreatedEvent{
		PublicationID: pubID,
		UserID:        p.ID,
		Title:         req.Title,
		Artist:        req.Artist,
		Platform:      req.Platform,
		GenreIDs:      req.GenreIDs,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = queuepublisher.PublishPublicationCreated(pctx, ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"publication_id": pubID})
}

// List handles GET /v1/publications with limit/offset pagination.
func (h *PublicationHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pubs, err := h.Publications.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pubs)
}

// Last handles GET /v1/publications/last: the ten most recent submissions
// for the landing page.
func (h *PublicationHandler) Last(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pubs, err := h.Publications.ListLast(ctx, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pubs)
}

// My handles GET /v1/publications/my: the caller's own submissions.
func (h *PublicationHandler) My(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pubs, err := h.Publications.ListByUser(ctx, p.ID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pubs)
}

// ByGenre handles GET /v1/publications/getbygenreid/:id.  Each returned
// publication carries its complete genre set, not just the matched genre.
func (h *PublicationHandler) ByGenre(c echo.Context) error {
	genreID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid genre id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pubs, err := h.Publications.ListByGenre(ctx, genreID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, pubs)
}

// Delete handles DELETE /v1/publications/:id (admin only).  The join rows
// and the publication row go in one transaction.
func (h *PublicationHandler) Delete(c echo.Context) error {
	pubID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publication id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Publications.Delete(ctx, pubID); err != nil {
		if err == repository.ErrPublicationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "publication not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ReplaceGenres handles PUT /v1/publications/:id/genres, swapping the
// publication's entire genre link set atomically.
func (h *PublicationHandler) ReplaceGenres(c echo.Context) error {
	pubID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid publication id"})
	}
	var body struct {
		GenreIDs *[]uint64 `json:"genre_ids"`
	}
	if err := c.Bind(&body); err != nil || body.GenreIDs == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "genre_ids must be an array"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Publications.ReplaceGenres(ctx, pubID, *body.GenreIDs); err != nil {
		if err == repository.ErrPublicationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "publication not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update genres failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
