package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/store"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

// Maintenance actions.
const (
	ActionListKeys           = "list-keys"
	ActionClearRegistrations = "clear-registrations"
	ActionClearAll           = "clear-all"
)

// KeyListing reports the ticketing keys currently in the store.
type KeyListing struct {
	RegistrationKeys []string `json:"registrationKeys"`
	PurchaseKeys     []string `json:"purchaseKeys"`
	Total            int      `json:"total"`
}

// ActionResult is the outcome of Execute.  Listing is set for list-keys,
// Deleted for clear-registrations.
type ActionResult struct {
	Action  string
	Listing *KeyListing
	Deleted int
}

// AdminService runs destructive maintenance operations behind an optional
// shared secret.  There is no undo.
type AdminService struct {
	store     store.Store
	keyHash   string // bcrypt of the sha256 of the configured key; empty when open
	publisher Publisher
	logger    *log.Logger
}

// NewAdminService hashes key for later comparison.  An empty key leaves
// the gate open.
func NewAdminService(s store.Store, key string, publisher Publisher, logger *log.Logger) (*AdminService, error) {
	svc := &AdminService{store: s, publisher: publisher, logger: logger}
	if key != "" {
		h, err := utils.HashSecret(digest(key), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin key: %w", err)
		}
		svc.keyHash = h
	}
	return svc, nil
}

// digest pre-hashes secrets so arbitrarily long keys fit bcrypt's input limit.
func digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Open reports whether no admin key is configured.
func (s *AdminService) Open() bool { return s.keyHash == "" }

// Authorize checks secret against the configured key.
func (s *AdminService) Authorize(secret string) error {
	if s.Open() {
		return nil
	}
	if secret == "" || !utils.VerifySecret(s.keyHash, digest(secret)) {
		return ErrUnauthorized
	}
	return nil
}

// ListKeys enumerates registration and purchase keys without reading values.
func (s *AdminService) ListKeys(ctx context.Context) (*KeyListing, error) {
	regKeys, err := s.store.Keys(ctx, repository.PatternRegistrations)
	if err != nil {
		return nil, fmt.Errorf("list registration keys: %w", err)
	}
	purKeys, err := s.store.Keys(ctx, repository.PatternPurchases)
	if err != nil {
		return nil, fmt.Errorf("list purchase keys: %w", err)
	}
	sort.Strings(regKeys)
	sort.Strings(purKeys)
	if regKeys == nil {
		regKeys = []string{}
	}
	if purKeys == nil {
		purKeys = []string{}
	}
	return &KeyListing{
		RegistrationKeys: regKeys,
		PurchaseKeys:     purKeys,
		Total:            len(regKeys) + len(purKeys),
	}, nil
}

// ClearRegistrations deletes every registration and purchase key and
// returns how many keys were listed for deletion.  Other namespaces are
// left alone.
func (s *AdminService) ClearRegistrations(ctx context.Context) (int, error) {
	l, err := s.ListKeys(ctx)
	if err != nil {
		return 0, err
	}
	keys := append(append([]string{}, l.RegistrationKeys...), l.PurchaseKeys...)
	if len(keys) > 0 {
		if _, err := s.store.Del(ctx, keys...); err != nil {
			return 0, fmt.Errorf("delete keys: %w", err)
		}
	}
	s.logger.Warnf("admin: cleared %d registration and purchase keys", len(keys))
	publish(ctx, s.publisher, s.logger, queue.TicketingEvent{
		Type:   queue.TypeDataCleared,
		Action: ActionClearRegistrations,
		Count:  len(keys),
	})
	return len(keys), nil
}

// ClearAll flushes the whole store.
func (s *AdminService) ClearAll(ctx context.Context) error {
	if err := s.store.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	s.logger.Warnf("admin: flushed %s store", s.store.Name())
	publish(ctx, s.publisher, s.logger, queue.TicketingEvent{
		Type:   queue.TypeDataCleared,
		Action: ActionClearAll,
	})
	return nil
}

// Execute authorizes secret and then runs action.
func (s *AdminService) Execute(ctx context.Context, action, secret string) (*ActionResult, error) {
	if err := s.Authorize(secret); err != nil {
		return nil, err
	}
	return s.Run(ctx, action)
}

// Run performs action without checking a secret; callers must have
// authorized the request already.
func (s *AdminService) Run(ctx context.Context, action string) (*ActionResult, error) {
	res := &ActionResult{Action: action}
	switch action {
	case ActionListKeys:
		l, err := s.ListKeys(ctx)
		if err != nil {
			return nil, err
		}
		res.Listing = l
	case ActionClearRegistrations:
		n, err := s.ClearRegistrations(ctx)
		if err != nil {
			return nil, err
		}
		res.Deleted = n
	case ActionClearAll:
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: use %s, %s or %s", ErrInvalidAction, ActionClearAll, ActionClearRegistrations, ActionListKeys)
	}
	return res, nil
}
