package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Key namespaces.  The layout is shared with tickets issued by earlier
// deployments and must not change.
const (
	prefixByDNI    = "registration:dni:"
	prefixByID     = "registration:id:"
	prefixPurchase = "purchase:"

	PatternRegistrations = "registration:*"
	PatternByID          = prefixByID + "*"
	PatternPurchases     = prefixPurchase + "*"
)

func KeyByDNI(dni string) string   { return prefixByDNI + dni }
func KeyByID(id string) string     { return prefixByID + id }
func KeyPurchase(id string) string { return prefixPurchase + id }

// RegistrationRepo stores registrations and purchases as JSON documents in
// a key-value store.  A registration is always addressable by id; legacy
// single-guest registrations are additionally addressable by dni and both
// keys are written together.
type RegistrationRepo struct {
	store store.Store
}

// NewRegistrationRepo returns a repository bound to s.
func NewRegistrationRepo(s store.Store) *RegistrationRepo { return &RegistrationRepo{store: s} }

// FindByDNI returns the legacy registration holding dni, or nil when none does.
func (r *RegistrationRepo) FindByDNI(ctx context.Context, dni string) (*model.Registration, error) {
	return r.getRegistration(ctx, KeyByDNI(dni))
}

// FindByID returns the registration with id, or nil when it does not exist.
// A nil result is "not found", not an error.
func (r *RegistrationRepo) FindByID(ctx context.Context, id string) (*model.Registration, error) {
	return r.getRegistration(ctx, KeyByID(id))
}

// Create persists a new registration without overwriting anything.  For
// legacy registrations the dni key is claimed first with a conditional put,
// which makes the uniqueness check atomic; if the id key then cannot be
// written the dni claim is released again.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	b, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	if reg.IsLegacy() {
		ok, err := r.store.SetNX(ctx, KeyByDNI(reg.DNI), b)
		if err != nil {
			return fmt.Errorf("claim dni: %w", err)
		}
		if !ok {
			return ErrDuplicateDNI
		}
	}
	ok, err := r.store.SetNX(ctx, KeyByID(reg.ID), b)
	if err == nil && !ok {
		err = ErrConflict
	}
	if err != nil {
		if reg.IsLegacy() {
			_, _ = r.store.Del(ctx, KeyByDNI(reg.DNI))
		}
		if errors.Is(err, ErrConflict) {
			return err
		}
		return fmt.Errorf("write registration: %w", err)
	}
	return nil
}

// Save overwrites an existing registration under every key it is indexed by.
func (r *RegistrationRepo) Save(ctx context.Context, reg *model.Registration) error {
	b, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	if err := r.store.Set(ctx, KeyByID(reg.ID), b); err != nil {
		return fmt.Errorf("write registration: %w", err)
	}
	if reg.IsLegacy() {
		if err := r.store.Set(ctx, KeyByDNI(reg.DNI), b); err != nil {
			return fmt.Errorf("write dni index: %w", err)
		}
	}
	return nil
}

// Delete removes a registration from every key it is indexed by.
func (r *RegistrationRepo) Delete(ctx context.Context, reg *model.Registration) error {
	keys := []string{KeyByID(reg.ID)}
	if reg.IsLegacy() {
		keys = append(keys, KeyByDNI(reg.DNI))
	}
	_, err := r.store.Del(ctx, keys...)
	return err
}

// SavePurchase writes p under purchase:{id}.
func (r *RegistrationRepo) SavePurchase(ctx context.Context, p *model.Purchase) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode purchase: %w", err)
	}
	if err := r.store.Set(ctx, KeyPurchase(p.ID), b); err != nil {
		return fmt.Errorf("write purchase: %w", err)
	}
	return nil
}

// FindPurchase returns the purchase with id, or nil when it does not exist.
func (r *RegistrationRepo) FindPurchase(ctx context.Context, id string) (*model.Purchase, error) {
	b, err := r.store.Get(ctx, KeyPurchase(id))
	if errors.Is(err, store.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read purchase: %w", err)
	}
	var p model.Purchase
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode purchase %s: %w", id, err)
	}
	return &p, nil
}

// ListAll reads every registration through the id namespace.  It costs one
// read per registration.  Results are ordered by buyer, then guest number,
// then registration time.
func (r *RegistrationRepo) ListAll(ctx context.Context) ([]model.Registration, error) {
	keys, err := r.store.Keys(ctx, PatternByID)
	if err != nil {
		return nil, fmt.Errorf("list registration keys: %w", err)
	}
	regs := make([]model.Registration, 0, len(keys))
	for _, k := range keys {
		reg, err := r.getRegistration(ctx, k)
		if err != nil {
			return nil, err
		}
		// Deleted between Keys and Get.
		if reg == nil {
			continue
		}
		regs = append(regs, *reg)
	}
	sort.SliceStable(regs, func(i, j int) bool {
		a, b := regs[i], regs[j]
		if a.BuyerName != b.BuyerName {
			return a.BuyerName < b.BuyerName
		}
		if a.GuestNumber != b.GuestNumber {
			return a.GuestNumber < b.GuestNumber
		}
		return a.RegisteredAt.Before(b.RegisteredAt)
	})
	return regs, nil
}

// ListByBuyer returns the registrations whose buyer name equals name exactly.
func (r *RegistrationRepo) ListByBuyer(ctx context.Context, name string) ([]model.Registration, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Registration
	for _, reg := range all {
		if reg.BuyerName == name {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *RegistrationRepo) getRegistration(ctx context.Context, key string) (*model.Registration, error) {
	b, err := r.store.Get(ctx, key)
	if errors.Is(err, store.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var reg model.Registration
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &reg, nil
}
