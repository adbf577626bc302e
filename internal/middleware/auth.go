package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/model"
	"github.com/soundrop/soundrop/internal/utils"
)

// principalKey is the echo context key under which Auth stores the caller's
// Principal.
const principalKey = "principal"

// Principal is the caller's identity for the duration of one request.  It
// is loaded fresh from storage on every request — the token carries only
// the user id, never rank or validation state — so an admin-driven rank or
// validation change takes effect on the caller's very next request rather
// than after re-login.
type Principal struct {
	ID          uint64
	Name        string
	Rank        string
	IsValidated bool
}

// UserSource loads the current user row for a verified token subject.  It
// is satisfied by *repository.UserRepo and by fakes in tests.
type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Auth returns middleware that authenticates the request from its Bearer
// token and resolves the caller's Principal against storage.
//
// Failure modes are deliberately distinct:
//   - missing/invalid/expired token        -> 401
//   - token verifies but user row is gone  -> 404 (the signing key may
//     outlive a deleted account)
func Auth(secret string, users UserSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}

			SetPrincipal(c, Principal{
				ID:          u.ID,
				Name:        u.Name,
				Rank:        u.Rank,
				IsValidated: u.IsValidated,
			})
			return next(c)
		}
	}
}

// SetPrincipal stores p in the request context.  Auth calls it after
// resolving the caller; tests call it to simulate an authenticated request.
func SetPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the Principal stored by Auth, if any.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// RequireAdmin aborts with 403 unless the authenticated caller's rank is
// admin.  It must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if p.Rank != model.RankAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
			}
			return next(c)
		}
	}
}

// RequireValidated aborts with 403 unless the caller's account has been
// validated.  Publish actions sit behind this gate; mods and admins always
// pass because raising a rank forces validation.
func RequireValidated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if !p.IsValidated {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account not validated"})
			}
			return next(c)
		}
	}
}
