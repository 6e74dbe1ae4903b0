package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects its claims into the request context.  The secret must match
// the one used at issue time.  Handlers behind this middleware read the
// authenticated identity via c.Get("user_id"), c.Get("role") and, for
// customer accounts, c.Get("client_id").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Only HS256 tokens are issued; reject anything else before
			// touching the secret.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set("user_id", claims["sub"])
			c.Set("role", claims["role"])
			if v, ok := claims["client_id"]; ok {
				c.Set("client_id", v)
			}
			return next(c)
		}
	}
}

// JWTOptional parses a Bearer token when one is present and otherwise
// lets the request through anonymously.  Checkout endpoints use it so
// guests and signed-in customers share one route.
func JWTOptional(secret string) echo.MiddlewareFunc {
	authed := JWTAuth(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := authed(next)
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().Header.Get("Authorization"), "Bearer ") {
				return withAuth(c)
			}
			return next(c)
		}
	}
}
