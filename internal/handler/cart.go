package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
	"github.com/restaurant-eugene/booking-api/internal/session"
)

// cartSessionHeader carries the anonymous cart key.  Authenticated
// customers are keyed by client id instead and never need it.
const cartSessionHeader = "X-Cart-Session"

// CartHandler exposes the session cart.  Mutations go through the
// engine's pure cart operations; the handler only resolves prices and
// persists the result in the session store.
type CartHandler struct {
	Carts session.CartStore
	Menu  booking.PriceCatalog
}

func NewCartHandler(carts session.CartStore, menu booking.PriceCatalog) *CartHandler {
	return &CartHandler{Carts: carts, Menu: menu}
}

type addCartItemReq struct {
	ItemID   uint64 `json:"item_id"`
	Quantity uint32 `json:"quantity"`
}

type cartResp struct {
	Lines         []model.CartLine `json:"items"`
	SubtotalCents uint32           `json:"subtotal_cents"`
}

// cartKey resolves the storage key for this request.  When a guest has
// no session yet one is minted and echoed back in the response header.
func (h *CartHandler) cartKey(c echo.Context) string {
	if key, ok := existingCartKey(c); ok {
		if s := c.Request().Header.Get(cartSessionHeader); s != "" {
			c.Response().Header().Set(cartSessionHeader, s)
		}
		return key
	}
	s := uuid.NewString()
	c.Response().Header().Set(cartSessionHeader, s)
	return "anon:" + s
}

// AddItem merges one dish into the cart.  The price is resolved from
// the live catalog at add time; checkout re-resolves, so a menu edit
// between the two is reflected in the final snapshot.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addCartItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	price, name, err := h.Menu.PriceOf(ctx, req.ItemID)
	if err != nil {
		return bookingError(c, err)
	}

	key := h.cartKey(c)
	cart, err := h.Carts.Load(ctx, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}
	cart, err = booking.AddToCart(cart, req.ItemID, name, price, req.Quantity)
	if err != nil {
		return bookingError(c, err)
	}
	if err := h.Carts.Save(ctx, key, cart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
	}
	return c.JSON(http.StatusOK, cartResp{Lines: cart.Lines, SubtotalCents: cart.SubtotalCents()})
}

// Get returns the current cart.
func (h *CartHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cart, err := h.Carts.Load(ctx, h.cartKey(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}
	return c.JSON(http.StatusOK, cartResp{Lines: cart.Lines, SubtotalCents: cart.SubtotalCents()})
}

type putCartReq struct {
	Items []addCartItemReq `json:"items"`
}

// Replace rebuilds the cart from scratch out of the submitted lines.
func (h *CartHandler) Replace(c echo.Context) error {
	var req putCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cart := model.Cart{}
	for _, line := range req.Items {
		price, name, err := h.Menu.PriceOf(ctx, line.ItemID)
		if err != nil {
			return bookingError(c, err)
		}
		cart, err = booking.AddToCart(cart, line.ItemID, name, price, line.Quantity)
		if err != nil {
			return bookingError(c, err)
		}
	}

	key := h.cartKey(c)
	if err := h.Carts.Save(ctx, key, cart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
	}
	return c.JSON(http.StatusOK, cartResp{Lines: cart.Lines, SubtotalCents: cart.SubtotalCents()})
}

// Clear empties the cart, or drops a single dish when ?item_id= is
// present.
func (h *CartHandler) Clear(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	key := h.cartKey(c)
	if raw := c.QueryParam("item_id"); raw != "" {
		itemID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item_id"})
		}
		cart, err := h.Carts.Load(ctx, key)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
		}
		cart = booking.RemoveFromCart(cart, itemID)
		if err := h.Carts.Save(ctx, key, cart); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
		}
		return c.JSON(http.StatusOK, cartResp{Lines: cart.Lines, SubtotalCents: cart.SubtotalCents()})
	}

	if err := h.Carts.Clear(ctx, key); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear cart failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
