package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/booking"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

// bookingError maps engine errors onto HTTP responses.  The precise
// business reason is returned whenever the engine could determine one.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidQuantity),
		errors.Is(err, booking.ErrEmptyOrder),
		errors.Is(err, booking.ErrUnknownItem):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotFull),
		errors.Is(err, booking.ErrAlreadyServed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrTokenNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrCancelled):
		return c.JSON(http.StatusGone, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrPersistenceConflict):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// claimUint64 reads a numeric JWT claim stored in context.  Claims
// decode as float64 from JSON; string forms are tolerated.
func claimUint64(c echo.Context, key string) (uint64, bool) {
	switch v := c.Get(key).(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// existingCartKey resolves the session-cart key for this request
// without minting a new one.  Authenticated customers key on their
// client id; guests on the X-Cart-Session header.
func existingCartKey(c echo.Context) (string, bool) {
	if cid, ok := claimUint64(c, "client_id"); ok {
		return "client:" + strconv.FormatUint(cid, 10), true
	}
	if s := c.Request().Header.Get(cartSessionHeader); s != "" {
		return "anon:" + s, true
	}
	return "", false
}
