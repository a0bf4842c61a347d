package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness and the active storage backend.
func Health(backend string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "store": backend})
	}
}
