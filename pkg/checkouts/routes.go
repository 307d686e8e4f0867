package checkouts

import (
	"github.com/labstack/echo/v4"
)

func RegisterPatronRoutes(g *echo.Group, checkoutService *Service) {
	h := &handler{checkoutService}

	g.GET("/checked-out", h.checkedOut)
	g.POST("/renew/:checkoutId", h.renew)
}

func RegisterLibrarianRoutes(g *echo.Group, checkoutService *Service) {
	h := &handler{checkoutService}

	g.GET("/checkout", h.form)
	g.POST("/checkout", h.create)
	g.GET("/checkin", h.recentCheckins)
	g.POST("/checkin", h.checkin)
}
