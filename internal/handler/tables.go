package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// TableHandler serves the table administration endpoints.
type TableHandler struct {
	Tables *service.TableService
}

func NewTableHandler(ts *service.TableService) *TableHandler { return &TableHandler{Tables: ts} }

// List returns every registration.  GET /api/assign-table?action=list-all
func (h *TableHandler) List(c echo.Context) error {
	if c.QueryParam("action") != "list-all" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid action"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	regs, err := h.Tables.ListAll(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "registrations": regs})
}

// Assign sets the table of one registration.  POST /api/assign-table
func (h *TableHandler) Assign(c echo.Context) error {
	var req model.AssignTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	reg, err := h.Tables.AssignIndividual(ctx, req.RegistrationID, req.Table)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      fmt.Sprintf("%s asignada exitosamente", reg.Table),
		"registration": reg,
	})
}

// AssignGroup sets the table of every registration of a buyer.
// POST /api/assign-table/group
func (h *TableHandler) AssignGroup(c echo.Context) error {
	var req model.AssignGroupTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	regs, err := h.Tables.AssignToGroup(ctx, req.BuyerName, req.Table)
	if err != nil {
		if len(regs) > 0 {
			// Partial success: the applied writes stay, report both sides.
			c.Logger().Errorf("group table assignment for %q: %v", req.BuyerName, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":   "some registrations could not be updated",
				"updated": len(regs),
			})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"message":       fmt.Sprintf("%s asignada a %d invitados", service.NormalizeTable(req.Table), len(regs)),
		"updated":       len(regs),
		"registrations": regs,
	})
}
