package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderAdminKey carries the shared admin secret on gated routes.
const HeaderAdminKey = "X-Admin-Key"

// Gate decides whether a shared secret opens the admin routes.
type Gate interface {
	Open() bool
	Authorize(secret string) error
}

// RequireAdmin lets a request through when the gate is open, when
// AdminSession accepted an admin token, or when the X-Admin-Key header
// matches the configured secret.  Anything else gets 401.
func RequireAdmin(gate Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if gate.Open() || IsAdmin(c) {
				return next(c)
			}
			if key := c.Request().Header.Get(HeaderAdminKey); key != "" && gate.Authorize(key) == nil {
				return next(c)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Clave administrativa incorrecta"})
		}
	}
}
