package catalog

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, catalogService *Service) {
	h := &handler{catalogService}

	e.GET("/catalog", h.featured)
}

func RegisterPatronRoutes(g *echo.Group, catalogService *Service) {
	h := &handler{catalogService}

	g.GET("/search", h.search)
}

func RegisterLibrarianRoutes(g *echo.Group, catalogService *Service) {
	h := &handler{catalogService}

	g.GET("/catalog", h.list)
	g.POST("/catalog/add", h.create)
	g.POST("/catalog/delete/:itemId", h.delete)
}
