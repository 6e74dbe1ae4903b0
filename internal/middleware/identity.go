package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// requestIdentity returns a stable string identifying the caller for
// rate-limit keying.  Authenticated requests key on the JWT subject set
// by JWTAuth; everything else collapses to "anon".  Numeric claims
// arrive as float64 from JSON decoding.
func requestIdentity(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	}
	return "anon"
}
