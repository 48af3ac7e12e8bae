// Package service composes storage, caching, and the countdown watcher
// around the pure discount evaluator.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	"github.com/Nixie-Tech-LLC/perks/internal/clock"
	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/discount"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

// ErrUnavailable wraps the reason a discount cannot be redeemed right now.
var ErrUnavailable = errors.New("discount unavailable")

type UnavailableError struct {
	Reason discount.Reason
}

func (e *UnavailableError) Error() string { return fmt.Sprintf("discount unavailable: %s", e.Reason) }
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

type SnapshotCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	Set(ctx context.Context, d *model.Discount) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type Scheduler interface {
	Watch(id uuid.UUID, target time.Time)
	Unwatch(id uuid.UUID)
}

// Status is a discount together with its evaluation at the time of the call.
type Status struct {
	Discount *model.Discount
	Result   discount.Result
	At       time.Time
}

type Discounts struct {
	store     db.Store
	cache     SnapshotCache
	scheduler Scheduler
	clock     clock.Clock
	policy    availability.Policy
	fallback  *time.Location

	locations sync.Map // timezone name -> *time.Location
}

type Config struct {
	Store     db.Store
	Cache     SnapshotCache // optional
	Scheduler Scheduler     // optional
	Clock     clock.Clock
	Policy    availability.Policy
	Location  *time.Location // used when a store's timezone is empty or unknown
}

func NewDiscounts(cfg Config) *Discounts {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewReal()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Discounts{
		store:     cfg.Store,
		cache:     cfg.Cache,
		scheduler: cfg.Scheduler,
		clock:     cfg.Clock,
		policy:    cfg.Policy,
		fallback:  cfg.Location,
	}
}

func (s *Discounts) location(name string) *time.Location {
	if name == "" {
		return s.fallback
	}
	if loc, ok := s.locations.Load(name); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("timezone", name).Msg("unknown store timezone, using default")
		loc = s.fallback
	}
	s.locations.Store(name, loc)
	return loc
}

// load returns the snapshot for id, reading through the cache.
func (s *Discounts) load(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	if s.cache != nil {
		d, err := s.cache.Get(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("discount_id", id.String()).Msg("cache read failed")
		} else if d != nil {
			return d, nil
		}
	}

	d, err := s.store.GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, d); err != nil {
			log.Warn().Err(err).Str("discount_id", id.String()).Msg("cache write failed")
		}
	}
	return d, nil
}

func (s *Discounts) evaluate(d *model.Discount) Status {
	now := s.clock.Now().In(s.location(d.Timezone))
	return Status{Discount: d, Result: discount.Evaluate(*d, now, s.policy), At: now}
}

// Status evaluates the discount in its store's timezone. A projected window
// starts a server-side countdown for it.
func (s *Discounts) Status(ctx context.Context, id uuid.UUID) (Status, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return Status{}, err
	}
	st := s.evaluate(d)
	if st.Result.NextAvailableAt != nil && s.scheduler != nil {
		s.scheduler.Watch(id, *st.Result.NextAvailableAt)
	}
	return st, nil
}

func (s *Discounts) Redeem(ctx context.Context, id uuid.UUID, userID int) (model.Redemption, error) {
	st, err := s.Status(ctx, id)
	if err != nil {
		return model.Redemption{}, err
	}
	if !st.Result.IsValid {
		return model.Redemption{}, &UnavailableError{Reason: st.Result.Reason}
	}
	return s.store.CreateRedemption(ctx, id, userID)
}

// Save creates d when it has no id and updates it otherwise.
func (s *Discounts) Save(ctx context.Context, d *model.Discount) error {
	var err error
	if d.ID == uuid.Nil {
		err = s.store.CreateDiscount(ctx, d)
	} else {
		err = s.store.UpdateDiscount(ctx, d)
	}
	if err != nil {
		return err
	}
	s.forget(ctx, d.ID)
	return nil
}

func (s *Discounts) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetDiscountActive(ctx, id, active); err != nil {
		return err
	}
	s.forget(ctx, id)
	return nil
}

func (s *Discounts) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteDiscount(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, id)
	return nil
}

// forget drops the cached snapshot and any countdown built from it.
func (s *Discounts) forget(ctx context.Context, id uuid.UUID) {
	if s.scheduler != nil {
		s.scheduler.Unwatch(id)
	}
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("discount_id", id.String()).Msg("cache invalidate failed")
	}
}

// ListForStore evaluates every discount of a store without starting countdowns.
func (s *Discounts) ListForStore(ctx context.Context, storeID int) ([]Status, error) {
	ds, err := s.store.ListDiscounts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(ds))
	for i := range ds {
		out = append(out, s.evaluate(&ds[i]))
	}
	return out, nil
}

// Get returns the stored discount without evaluating it.
func (s *Discounts) Get(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	return s.store.GetDiscount(ctx, id)
}
