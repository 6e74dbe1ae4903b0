package router

import (
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/handler"
	"github.com/restaurant-eugene/booking-api/internal/middleware"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

// RegisterStaff registers the scanner and back-office endpoints.  All
// routes require the STAFF role.
func RegisterStaff(e *echo.Echo, scan *handler.ScanHandler, menu *handler.MenuHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)

	// Scanner. Verify is read-only; serve consumes the ticket.
	g.POST("/scan/verify", scan.Verify)
	g.POST("/scan/serve", scan.Serve)
	g.GET("/staff/served-clients", scan.ServedClients)
	g.GET("/staff/slots", scan.SlotStatus)

	// Menu back office.
	g.GET("/staff/menu/items", menu.ListAllItems)
	g.POST("/staff/menu/items", menu.CreateItem)
	g.PUT("/staff/menu/items/:id", menu.UpdateItem)
	g.DELETE("/staff/menu/items/:id", menu.DeleteItem)
	g.POST("/staff/menu/categories", menu.CreateCategory)
	g.DELETE("/staff/menu/categories/:id", menu.DeleteCategory)
}
