package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/mailer"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// maxFlyerBytes caps a single uploaded flyer.
const maxFlyerBytes = 10 << 20

// FlyerHandler accepts flyers rendered in the browser.
type FlyerHandler struct {
	Flyers *service.FlyerService
}

func NewFlyerHandler(fs *service.FlyerService) *FlyerHandler { return &FlyerHandler{Flyers: fs} }

type flyerData struct {
	Name string `json:"nombre"`
}

// Send counts the uploaded flyers and forwards them to the operator.
// Multipart fields: registrationIds (JSON array), purchaseId, and flyer_N /
// flyerData_N pairs numbered from 0 without gaps.  POST /api/send-flyers
func (h *FlyerHandler) Send(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	var ids []string
	if raw := c.FormValue("registrationIds"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "registrationIds must be a JSON array"})
		}
	}
	purchaseID := c.FormValue("purchaseId")

	var flyers []mailer.Flyer
	for i := 0; ; i++ {
		files := form.File[fmt.Sprintf("flyer_%d", i)]
		if len(files) == 0 {
			break
		}
		meta := c.FormValue(fmt.Sprintf("flyerData_%d", i))
		if meta == "" {
			continue
		}
		var fd flyerData
		if err := json.Unmarshal([]byte(meta), &fd); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("flyerData_%d is not valid JSON", i)})
		}
		f, err := files[0].Open()
		if err != nil {
			return writeError(c, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxFlyerBytes+1))
		_ = f.Close()
		if err != nil {
			return writeError(c, err)
		}
		if len(data) > maxFlyerBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": fmt.Sprintf("flyer_%d is too large", i)})
		}
		flyers = append(flyers, mailer.Flyer{Name: flyerName(i, fd.Name, files[0].Filename), Data: data})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()
	sent := h.Flyers.Forward(ctx, purchaseID, flyers)

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"message":         "Flyers procesados exitosamente",
		"emailSent":       sent,
		"totalFlyers":     len(flyers),
		"registrationIds": len(ids),
	})
}

func flyerName(i int, guest, upload string) string {
	ext := strings.ToLower(filepath.Ext(upload))
	if ext == "" {
		ext = ".png"
	}
	guest = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '_'
		}
		return -1
	}, strings.TrimSpace(guest))
	if guest == "" {
		return fmt.Sprintf("flyer-%d%s", i+1, ext)
	}
	return fmt.Sprintf("flyer-%d-%s%s", i+1, guest, ext)
}
