package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

const tablePrefix = "Mesa "

// maxGroupWrites bounds the concurrent writes of a group assignment.
const maxGroupWrites = 8

// NormalizeTable turns a bare table number into "Mesa N".  Any other
// non-empty label is kept as given.
func NormalizeTable(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || strings.HasPrefix(label, tablePrefix) {
		return label
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return label
		}
	}
	return tablePrefix + label
}

// TableService assigns dining tables to registrations.  Concurrent
// assignments to the same registration resolve last write wins.
type TableService struct {
	repo      *repository.RegistrationRepo
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewTableService(repo *repository.RegistrationRepo, publisher Publisher, logger *log.Logger) *TableService {
	return &TableService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AssignIndividual sets the table of one registration and returns the
// updated record.
func (s *TableService) AssignIndividual(ctx context.Context, registrationID, label string) (*model.Registration, error) {
	registrationID = strings.TrimSpace(registrationID)
	label = NormalizeTable(label)
	if registrationID == "" || label == "" {
		return nil, fmt.Errorf("%w: registrationId and mesa are required", ErrValidation)
	}
	reg, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registration %s", ErrNotFound, registrationID)
	}
	s.apply(reg, label)
	if err := s.repo.Save(ctx, reg); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, s.logger, queue.TicketingEvent{
		Type:            queue.TypeTableAssigned,
		RegistrationIDs: []string{reg.ID},
		BuyerName:       reg.BuyerName,
		Table:           label,
		Count:           1,
	})
	return reg, nil
}

// AssignToGroup sets the table of every registration whose buyer name
// equals buyerName exactly.  Writes run concurrently and all of them are
// awaited; failures are joined into one error and successful writes are
// kept.  The returned slice holds the records that were written.
func (s *TableService) AssignToGroup(ctx context.Context, buyerName, label string) ([]model.Registration, error) {
	label = NormalizeTable(label)
	if strings.TrimSpace(buyerName) == "" || label == "" {
		return nil, fmt.Errorf("%w: compradorNombre and mesa are required", ErrValidation)
	}
	regs, err := s.repo.ListByBuyer(ctx, buyerName)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("%w: no registrations for buyer %q", ErrNotFound, buyerName)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
		ok   = make([]bool, len(regs))
	)
	g.SetLimit(maxGroupWrites)
	for i := range regs {
		i := i
		reg := &regs[i]
		s.apply(reg, label)
		g.Go(func() error {
			if err := s.repo.Save(ctx, reg); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("registration %s: %w", reg.ID, err))
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	written := make([]model.Registration, 0, len(regs))
	ids := make([]string, 0, len(regs))
	for i, reg := range regs {
		if ok[i] {
			written = append(written, reg)
			ids = append(ids, reg.ID)
		}
	}
	if len(written) > 0 {
		publish(ctx, s.publisher, s.logger, queue.TicketingEvent{
			Type:            queue.TypeTableAssigned,
			RegistrationIDs: ids,
			BuyerName:       buyerName,
			Table:           label,
			Count:           len(written),
		})
	}
	if len(errs) > 0 {
		return written, fmt.Errorf("assigned %d of %d registrations: %w", len(written), len(regs), errors.Join(errs...))
	}
	return written, nil
}

// ListAll returns every registration ordered by buyer and guest number.
func (s *TableService) ListAll(ctx context.Context) ([]model.Registration, error) {
	return s.repo.ListAll(ctx)
}

func (s *TableService) apply(reg *model.Registration, label string) {
	at := s.now()
	reg.Table = label
	reg.TableAssignedAt = &at
}
