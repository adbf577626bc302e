package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundrop/soundrop/internal/handler"
	"github.com/soundrop/soundrop/internal/repository"
)

// markerMiddleware stamps a header so tests can observe which routes a
// middleware was applied to.
func markerMiddleware(header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(header, "applied")
			return next(c)
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// The public comment and like reads sit behind the response cache like the
// other browse endpoints; the write endpoints stay uncached.
func TestCommunityReadsRunCacheMiddleware(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	cache := markerMiddleware("X-Test-Cache")
	RegisterComments(e, handler.NewCommentHandler(repository.NewCommentRepo(db)), passThrough, cache)
	RegisterLikes(e, handler.NewLikeHandler(repository.NewLikeRepo(db)), passThrough, cache)

	for _, target := range []string{"/v1/comments/3", "/v1/likes/3"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, "applied", rec.Header().Get("X-Test-Cache"), target)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/comments", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("X-Test-Cache"))
}
