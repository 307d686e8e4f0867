package fines

import (
	"github.com/labstack/echo/v4"
)

func RegisterPatronRoutes(g *echo.Group, fineService *Service) {
	h := &handler{fineService}

	g.GET("/fines", h.listOwn)
}

func RegisterLibrarianRoutes(g *echo.Group, fineService *Service) {
	h := &handler{fineService}

	g.POST("/fines/pay/:fineId", h.pay)
}
