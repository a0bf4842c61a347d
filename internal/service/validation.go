package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

// Messages reported in ValidationResult.Error.
const (
	MsgInvalidFormat = "Formato de QR no válido"
	MsgNotFound      = "Registro no encontrado"
)

// ValidationService resolves scanned tickets.  It never writes.
type ValidationService struct {
	repo  *repository.RegistrationRepo
	codec *ticket.Codec
	event string
}

func NewValidationService(repo *repository.RegistrationRepo, codec *ticket.Codec, event string) *ValidationService {
	return &ValidationService{repo: repo, codec: codec, event: event}
}

// ValidatePayload extracts the registration id from a raw QR payload and
// looks it up.  An unparseable payload or an unknown id yields an invalid
// result, not an error; errors are reserved for store failures.
func (s *ValidationService) ValidatePayload(ctx context.Context, raw string) (*model.ValidationResult, error) {
	id, err := s.codec.ParseID(raw)
	if err != nil {
		if errors.Is(err, ticket.ErrUnrecognized) || errors.Is(err, ticket.ErrMissingID) {
			return &model.ValidationResult{Valid: false, Error: MsgInvalidFormat}, nil
		}
		return nil, err
	}
	return s.ValidateID(ctx, id)
}

// ValidateID looks up a registration by id.
func (s *ValidationService) ValidateID(ctx context.Context, id string) (*model.ValidationResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return &model.ValidationResult{Valid: false, Error: MsgNotFound}, nil
	}
	return &model.ValidationResult{Valid: true, Registration: s.summarize(reg)}, nil
}

func (s *ValidationService) summarize(reg *model.Registration) *model.RegistrationSummary {
	event := reg.Event
	if event == "" {
		event = s.event
	}
	table := reg.Table
	if table == "" {
		table = model.TableUnassigned
	}
	status := reg.Status
	if status == "" {
		status = model.StatusActive
	}
	guest, total := reg.GuestNumber, reg.TotalGuests
	if guest == 0 {
		guest, total = 1, 1
	}
	return &model.RegistrationSummary{
		ID:           reg.ID,
		Name:         reg.Name,
		DNI:          reg.DNI,
		Event:        event,
		GuestNumber:  guest,
		TotalGuests:  total,
		BuyerName:    reg.BuyerName,
		Table:        table,
		Status:       status,
		RegisteredAt: reg.RegisteredAt,
	}
}
