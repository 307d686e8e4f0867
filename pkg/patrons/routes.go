package patrons

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the public signup route.
func RegisterRoutes(e *echo.Echo, patronService *Service) {
	h := &handler{patronService}

	e.POST("/signup/patron", h.signup)
}

func RegisterPatronRoutes(g *echo.Group, patronService *Service) {
	h := &handler{patronService}

	g.GET("", h.dashboard)
}

func RegisterLibrarianRoutes(g *echo.Group, patronService *Service) {
	h := &handler{patronService}

	g.GET("/patrons", h.list)
	g.POST("/patrons/delete/:patronId", h.delete)
}
