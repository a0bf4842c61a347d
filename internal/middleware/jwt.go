package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/utils"
)

// AdminSession inspects an optional Bearer token.  Requests without one,
// with another Authorization scheme, or arriving while no secret is set pass
// through without a session; public routes never depend on the header.  A
// Bearer token that fails verification or lacks the admin role is rejected
// with 401.  On success the subject and admin flag are stored in the context
// for RequireAdmin and handlers.
func AdminSession(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if secret == "" || !strings.HasPrefix(auth, "Bearer ") {
				return next(c)
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if role, _ := claims["role"].(string); role != RoleAdmin {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			sub, _ := claims["sub"].(string)
			c.Set(ctxSubject, sub)
			c.Set(ctxAdmin, true)
			return next(c)
		}
	}
}
