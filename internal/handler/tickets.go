package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

// TicketHandler serves issuance, validation and QR images.
type TicketHandler struct {
	Issuance   *service.IssuanceService
	Validation *service.ValidationService
	Codec      *ticket.Codec
}

func NewTicketHandler(is *service.IssuanceService, vs *service.ValidationService, codec *ticket.Codec) *TicketHandler {
	return &TicketHandler{Issuance: is, Validation: vs, Codec: codec}
}

type issuedGuest struct {
	ID          string `json:"id"`
	Name        string `json:"nombre"`
	GuestNumber int    `json:"numeroInvitado"`
	QRData      string `json:"qrData"`
}

// Register issues a single-guest ticket.  POST /api/register
func (h *TicketHandler) Register(c echo.Context) error {
	var req model.SingleRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	issued, err := h.Issuance.RegisterSingle(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"message":        "Registro exitoso",
		"registrationId": issued.Registration.ID,
		"qrCode":         base64.StdEncoding.EncodeToString(issued.QRPNG),
	})
}

// Lookup validates a ticket by registration id.  GET /api/register?id=
func (h *TicketHandler) Lookup(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Validation.ValidateID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(validationStatus(res), res)
}

// Purchase issues one ticket per guest.  POST /api/purchases
func (h *TicketHandler) Purchase(c echo.Context) error {
	var req model.GroupRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Issuance.RegisterGroup(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	guests := make([]issuedGuest, 0, len(res.Tickets))
	for _, t := range res.Tickets {
		guests = append(guests, issuedGuest{
			ID:          t.Registration.ID,
			Name:        t.Registration.Name,
			GuestNumber: t.Registration.GuestNumber,
			QRData:      t.QRPayload,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"purchaseId":     res.Purchase.ID,
		"totalInvitados": res.Purchase.TotalGuests,
		"registrations":  guests,
		"emailSent":      res.EmailSent,
	})
}

// Validate resolves a raw scanned payload.  POST /api/validate
func (h *TicketHandler) Validate(c echo.Context) error {
	var req model.ValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Validation.ValidatePayload(ctx, req.QRData)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(validationStatus(res), res)
}

// QR renders the ticket QR of an existing registration.  GET /api/qr/:id
func (h *TicketHandler) QR(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Validation.ValidateID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if !res.Valid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": res.Error})
	}
	png, err := ticket.PNG(h.Codec.Payload(id))
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", png)
}

// QRIssued reports whether the registration behind a QR request still
// exists.  Store errors count as not issued so the handler reports them.
func (h *TicketHandler) QRIssued(c echo.Context) bool {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	res, err := h.Validation.ValidateID(ctx, strings.TrimSpace(c.Param("id")))
	return err == nil && res.Valid
}

func validationStatus(res *model.ValidationResult) int {
	switch {
	case res.Valid:
		return http.StatusOK
	case res.Error == service.MsgInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusNotFound
	}
}
