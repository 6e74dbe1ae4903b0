// Package router maps the HTTP surface onto handlers and wires the
// auth middleware per route group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/handler"
	"github.com/restaurant-eugene/booking-api/internal/middleware"
)

// RegisterRoutes registers unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints.  Register, login and
// refresh are open; logout accepts either a refresh token in the body
// or a bearer token; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTOptional(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest-readable menu.  cacheMW is the
// Redis response cache; pass nil to serve uncached.
func RegisterPublic(e *echo.Echo, m *handler.MenuHandler, cacheMW echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{}
	if cacheMW != nil {
		mw = append(mw, cacheMW)
	}
	e.GET("/v1/menu", m.ListMenu, mw...)
	e.GET("/v1/menu/categories", m.ListCategories, mw...)
}

// RegisterCheckout registers the cart and the two checkout paths.
// They run behind optional auth: signed-in customers are scoped by
// their client id, guests by cart session and contact details.
func RegisterCheckout(e *echo.Echo, cart *handler.CartHandler, res *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTOptional(jwtSecret))
	g.POST("/cart/items", cart.AddItem)
	g.GET("/cart", cart.Get)
	g.PUT("/cart", cart.Replace)
	g.DELETE("/cart", cart.Clear)

	g.POST("/orders", res.CreateOrder)
	g.POST("/bookings", res.CreateBooking)
}
