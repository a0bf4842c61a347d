package middleware

import "github.com/labstack/echo/v4"

// Context keys set by AdminSession.
const (
	ctxAdmin   = "admin"
	ctxSubject = "user_id"
)

// RoleAdmin is the role claim carried by admin session tokens.
const RoleAdmin = "ADMIN"

// IsAdmin reports whether the request carried a valid admin session token.
func IsAdmin(c echo.Context) bool {
	v, _ := c.Get(ctxAdmin).(bool)
	return v
}

// subject returns the authenticated subject, or "guest".
func subject(c echo.Context) string {
	if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
		return s
	}
	return "guest"
}
