package holds

import (
	"github.com/labstack/echo/v4"
)

func RegisterPatronRoutes(g *echo.Group, holdService *Service) {
	h := &handler{holdService}

	g.GET("/holds", h.list)
	g.POST("/hold/:itemId", h.place)
	g.POST("/hold/cancel/:holdId", h.cancel)
}
