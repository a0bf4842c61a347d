package service

import (
	"context"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/mailer"
)

// FlyerService receives flyers rendered by the client and forwards them to
// the operator when mail is configured.
type FlyerService struct {
	notifier *mailer.Notifier
	logger   *log.Logger
}

func NewFlyerService(notifier *mailer.Notifier, logger *log.Logger) *FlyerService {
	return &FlyerService{notifier: notifier, logger: logger}
}

// Forward mails flyers to the operator and reports whether a message went
// out.  Failures are logged, never returned.
func (s *FlyerService) Forward(ctx context.Context, purchaseID string, flyers []mailer.Flyer) bool {
	if len(flyers) == 0 || !s.notifier.Enabled() {
		return false
	}
	if err := s.notifier.ForwardFlyers(ctx, purchaseID, flyers); err != nil {
		s.logger.Warnf("flyers for purchase %s not forwarded: %v", purchaseID, err)
		return false
	}
	return true
}
