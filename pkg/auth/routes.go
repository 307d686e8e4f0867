package auth

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, authService *Service, authMiddleware *Middleware) {
	h := &handler{authService}

	g := e.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, authMiddleware.Authenticate)
}
