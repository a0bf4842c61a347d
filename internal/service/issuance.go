// Package service implements ticket issuance, validation, table assignment
// and admin maintenance on top of the registration repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/mailer"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/ticket"
)

// IssuedTicket is a freshly created registration together with its QR.
type IssuedTicket struct {
	Registration *model.Registration
	QRPayload    string
	QRPNG        []byte
}

// GroupResult is returned by RegisterGroup.
type GroupResult struct {
	Purchase  *model.Purchase
	Tickets   []IssuedTicket
	EmailSent bool
}

// IssuanceService creates registrations and purchases.
type IssuanceService struct {
	repo      *repository.RegistrationRepo
	codec     *ticket.Codec
	notifier  *mailer.Notifier
	publisher Publisher
	logger    *log.Logger
	event     string

	now   func() time.Time
	newID func() string
}

// NewIssuanceService wires an issuance service.  notifier may be disabled
// and publisher may be nil.
func NewIssuanceService(repo *repository.RegistrationRepo, codec *ticket.Codec, notifier *mailer.Notifier,
	publisher Publisher, logger *log.Logger, event string) *IssuanceService {
	return &IssuanceService{
		repo:      repo,
		codec:     codec,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		event:     event,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// RegisterSingle issues a legacy single-guest ticket keyed by national id.
// The confirmation email is best effort: a send failure is logged and the
// registration still succeeds.
func (s *IssuanceService) RegisterSingle(ctx context.Context, req model.SingleRegistrationRequest) (*IssuedTicket, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.DNI = strings.TrimSpace(req.DNI)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Phone == "" || req.DNI == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: nombre, telefono, dni and email are required", ErrValidation)
	}

	existing, err := s.repo.FindByDNI(ctx, req.DNI)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: dni %s already registered", ErrConflict, req.DNI)
	}

	reg := &model.Registration{
		ID:           s.newID(),
		DNI:          req.DNI,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		BuyerName:    req.Name,
		BuyerEmail:   req.Email,
		BuyerPhone:   req.Phone,
		GuestNumber:  1,
		TotalGuests:  1,
		Table:        model.TableUnassigned,
		Status:       model.StatusActive,
		Event:        s.event,
		RegisteredAt: s.now(),
	}
	issued, err := s.render(reg)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		// Lost the race against a concurrent submission with the same dni.
		if errors.Is(err, repository.ErrDuplicateDNI) {
			return nil, fmt.Errorf("%w: dni %s already registered", ErrConflict, req.DNI)
		}
		return nil, err
	}

	if err := s.notifier.SendConfirmation(ctx, mailer.Ticket{Reg: reg, PNG: issued.QRPNG}); err != nil {
		s.logger.Warnf("confirmation email for %s not sent: %v", reg.ID, err)
	}
	publish(ctx, s.publisher, s.logger, queue.TicketingEvent{
		Type:            queue.TypeRegistrationCreated,
		RegistrationIDs: []string{reg.ID},
		BuyerName:       reg.BuyerName,
		Count:           1,
	})
	return issued, nil
}

// RegisterGroup issues one ticket per named guest under a single purchase.
// Guests with blank names are skipped.  Every registration is written
// before the purchase; if any write fails the registrations already
// written for this batch are removed again and the error is returned.
//
// With GenerateFlyers set, all tickets are mailed to the operator in one
// message (best effort).  Otherwise the caller renders flyers from the
// returned tickets.
func (s *IssuanceService) RegisterGroup(ctx context.Context, req model.GroupRegistrationRequest) (*GroupResult, error) {
	buyer := strings.TrimSpace(req.BuyerName)
	if buyer == "" {
		return nil, fmt.Errorf("%w: compradorNombre is required", ErrValidation)
	}
	var names []string
	for _, g := range req.Guests {
		if n := strings.TrimSpace(g.Name); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one guest name is required", ErrValidation)
	}

	now := s.now()
	purchase := &model.Purchase{
		ID:              s.newID(),
		BuyerName:       buyer,
		BuyerEmail:      strings.TrimSpace(req.BuyerEmail),
		BuyerPhone:      strings.TrimSpace(req.BuyerPhone),
		TotalGuests:     len(names),
		RegistrationIDs: make([]string, 0, len(names)),
		CreatedAt:       now,
	}
	tickets := make([]IssuedTicket, 0, len(names))
	for i, name := range names {
		reg := &model.Registration{
			ID:           s.newID(),
			PurchaseID:   purchase.ID,
			Name:         name,
			BuyerName:    purchase.BuyerName,
			BuyerEmail:   purchase.BuyerEmail,
			BuyerPhone:   purchase.BuyerPhone,
			GuestNumber:  i + 1,
			TotalGuests:  len(names),
			Table:        model.TableUnassigned,
			Status:       model.StatusActive,
			Event:        s.event,
			RegisteredAt: now,
		}
		issued, err := s.render(reg)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *issued)
		purchase.RegistrationIDs = append(purchase.RegistrationIDs, reg.ID)
	}

	written := make([]*model.Registration, 0, len(tickets))
	for _, t := range tickets {
		if err := s.repo.Create(ctx, t.Registration); err != nil {
			s.rollback(written)
			return nil, err
		}
		written = append(written, t.Registration)
	}
	if err := s.repo.SavePurchase(ctx, purchase); err != nil {
		s.rollback(written)
		return nil, err
	}

	res := &GroupResult{Purchase: purchase, Tickets: tickets}
	if req.GenerateFlyers && s.notifier.Enabled() {
		mt := make([]mailer.Ticket, 0, len(tickets))
		for _, t := range tickets {
			mt = append(mt, mailer.Ticket{Reg: t.Registration, PNG: t.QRPNG})
		}
		if err := s.notifier.SendGroupTickets(ctx, purchase, mt); err != nil {
			s.logger.Warnf("group tickets for purchase %s not sent: %v", purchase.ID, err)
		} else {
			res.EmailSent = true
		}
	}
	publish(ctx, s.publisher, s.logger, queue.TicketingEvent{
		Type:            queue.TypePurchaseCreated,
		PurchaseID:      purchase.ID,
		RegistrationIDs: purchase.RegistrationIDs,
		BuyerName:       purchase.BuyerName,
		Count:           purchase.TotalGuests,
	})
	return res, nil
}

func (s *IssuanceService) render(reg *model.Registration) (*IssuedTicket, error) {
	payload := s.codec.Payload(reg.ID)
	png, err := ticket.PNG(payload)
	if err != nil {
		return nil, fmt.Errorf("render qr for %s: %w", reg.ID, err)
	}
	return &IssuedTicket{Registration: reg, QRPayload: payload, QRPNG: png}, nil
}

// rollback removes the registrations of a failed batch.  It runs on a
// fresh context so a cancelled request still cleans up.
func (s *IssuanceService) rollback(regs []*model.Registration) {
	if len(regs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, reg := range regs {
		if err := s.repo.Delete(ctx, reg); err != nil {
			s.logger.Errorf("rollback of registration %s failed: %v", reg.ID, err)
		}
	}
}
