package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

// AdminHandler serves admin sessions and the maintenance endpoint.
type AdminHandler struct {
	Cfg   config.AdminConfig
	Admin *service.AdminService
}

func NewAdminHandler(cfg config.AdminConfig, a *service.AdminService) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Admin: a}
}

// Session exchanges the shared admin key for a short-lived token.
// POST /api/admin/session
func (h *AdminHandler) Session(c echo.Context) error {
	var req model.AdminRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if h.Admin.Open() || h.Cfg.JWTSecret == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "admin sessions are disabled"})
	}
	if err := h.Admin.Authorize(req.AdminKey); err != nil {
		return writeError(c, err)
	}
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, "admin", middleware.RoleAdmin, h.Cfg.TokenTTL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": at.Token, "expires": at.Exp})
}

// ClearData runs a maintenance action.  The key comes from the body unless
// the request already carries an admin session.  POST /api/admin/clear-data
func (h *AdminHandler) ClearData(c echo.Context) error {
	var req model.AdminRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	var (
		res *service.ActionResult
		err error
	)
	if middleware.IsAdmin(c) {
		res, err = h.Admin.Run(ctx, req.Action)
	} else {
		res, err = h.Admin.Execute(ctx, req.Action, req.AdminKey)
	}
	if err != nil {
		return writeError(c, err)
	}

	switch res.Action {
	case service.ActionListKeys:
		return c.JSON(http.StatusOK, echo.Map{
			"success":          true,
			"registrationKeys": res.Listing.RegistrationKeys,
			"purchaseKeys":     res.Listing.PurchaseKeys,
			"total":            res.Listing.Total,
		})
	case service.ActionClearRegistrations:
		return c.JSON(http.StatusOK, echo.Map{
			"success":     true,
			"message":     "registrations cleared",
			"deletedKeys": res.Deleted,
		})
	default:
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "all data cleared"})
	}
}
