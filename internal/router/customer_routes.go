package router

import (
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/handler"
	"github.com/restaurant-eugene/booking-api/internal/middleware"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

// RegisterCustomer registers the customer reservation views.  All
// routes require a CUSTOMER access token; ownership of individual
// reservations is enforced in the handler.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)
	g.GET("/my-reservations", h.ListMine)
	g.GET("/reservations/:id", h.Get)
	g.DELETE("/reservations/:id", h.Cancel)
	g.GET("/reservations/:id/ticket", h.Ticket)
}
