package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/model"
	"github.com/soundrop/soundrop/internal/repository"
)

// UserAdminHandler exposes the admin-only user management endpoints.  All
// routes are registered behind Auth + RequireAdmin, so handlers here assume
// an admin principal.
type UserAdminHandler struct {
	Users *repository.UserRepo
}

func NewUserAdminHandler(u *repository.UserRepo) *UserAdminHandler {
	if u == nil {
		panic("nil repository passed to NewUserAdminHandler")
	}
	return &UserAdminHandler{Users: u}
}

func toUserParts(users []model.User) []userPart {
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return out
}

// List handles GET /v1/users with limit/offset pagination.
func (h *UserAdminHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserParts(users))
}

// ListGuests handles GET /v1/users/guests.
func (h *UserAdminHandler) ListGuests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListGuests(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserParts(users))
}

// ListUnvalidated handles GET /v1/users/unvalidated.
func (h *UserAdminHandler) ListUnvalidated(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListUnvalidated(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserParts(users))
}

// UpdateRank handles PUT /v1/users/:id/rank.  Raising a user to mod or
// admin also validates the account; demoting to guest never un-validates.
func (h *UserAdminHandler) UpdateRank(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Rank string `json:"rank"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidRank(body.Rank) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rank"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateRank(ctx, id, body.Rank)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Validate handles PUT /v1/users/:id/validate, marking the account as
// fully onboarded so it may publish.
func (h *UserAdminHandler) Validate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Validate(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
