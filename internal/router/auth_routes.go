package router

import (
	"github.com/labstack/echo/v4"

	"github.com/soundrop/soundrop/internal/handler"
)

// RegisterAuth wires registration, login and the current-user endpoint.
// Register and login live under /v1/auth and need no session; /v1/me runs
// behind the Auth middleware so the principal is loaded fresh from storage.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, auth)
}
