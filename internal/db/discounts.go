package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

// discount rows always carry the owning store's timezone
const discountSelect = `
	SELECT d.id, d.store_id, d.title, d.description, d.percent_off, d.active,
	       d.start_date, d.end_date, d.available_days_and_times,
	       s.timezone, d.created_at, d.updated_at
	  FROM discounts d
	  JOIN stores s ON s.id = d.store_id`

// decode re-derives the weekly rule. A broken rule is logged and kept on
// the discount as ConfigError.
func decode(d *model.Discount) {
	d.DecodeAvailability()
	if d.ConfigError != nil {
		log.Warn().Err(d.ConfigError).Str("discount_id", d.ID.String()).Msg("discount has unusable availability rule")
	}
}

func nullIfEmpty(d *model.Discount) {
	if len(d.AvailabilityJSON) == 0 {
		_ = d.SetAvailability(nil)
	}
}

// CreateDiscount inserts d, assigning an id when it has none, and fills the
// server-side columns back into d.
func (s *pgStore) CreateDiscount(ctx context.Context, d *model.Discount) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	nullIfEmpty(d)

	const q = `
	WITH ins AS (
	  INSERT INTO discounts
	    (id, store_id, title, description, percent_off, active, start_date, end_date,
	     available_days_and_times, created_at, updated_at)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	  RETURNING store_id, created_at, updated_at
	)
	SELECT s.timezone, ins.created_at, ins.updated_at
	  FROM ins JOIN stores s ON s.id = ins.store_id;`
	err := s.db.QueryRowxContext(ctx, q,
		d.ID, d.StoreID, d.Title, d.Description, d.PercentOff, d.Active,
		d.StartDate, d.EndDate, d.AvailabilityJSON,
	).Scan(&d.Timezone, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		log.Error().Err(err).Int("store_id", d.StoreID).Msg("CreateDiscount failed")
		return err
	}
	decode(d)
	return nil
}

func (s *pgStore) UpdateDiscount(ctx context.Context, d *model.Discount) error {
	nullIfEmpty(d)
	const q = `
	UPDATE discounts
	   SET title = $2,
	       description = $3,
	       percent_off = $4,
	       active = $5,
	       start_date = $6,
	       end_date = $7,
	       available_days_and_times = $8,
	       updated_at = now()
	 WHERE id = $1
	RETURNING updated_at;`
	err := s.db.QueryRowxContext(ctx, q,
		d.ID, d.Title, d.Description, d.PercentOff, d.Active,
		d.StartDate, d.EndDate, d.AvailabilityJSON,
	).Scan(&d.UpdatedAt)
	if err != nil {
		if err = notFound(err); err != ErrNotFound {
			log.Error().Err(err).Str("discount_id", d.ID.String()).Msg("UpdateDiscount failed")
		}
		return err
	}
	decode(d)
	return nil
}

func (s *pgStore) SetDiscountActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE discounts SET active = $2, updated_at = now() WHERE id = $1;`, id, active)
	if err != nil {
		log.Error().Err(err).Str("discount_id", id.String()).Msg("SetDiscountActive failed")
		return err
	}
	return expectOne(res)
}

func (s *pgStore) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("discount_id", id.String()).Msg("DeleteDiscount failed")
		return err
	}
	return expectOne(res)
}

func (s *pgStore) GetDiscount(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	var d model.Discount
	if err := s.db.GetContext(ctx, &d, discountSelect+` WHERE d.id = $1;`, id); err != nil {
		if err = notFound(err); err != ErrNotFound {
			log.Error().Err(err).Str("discount_id", id.String()).Msg("GetDiscount failed")
		}
		return nil, err
	}
	decode(&d)
	return &d, nil
}

func (s *pgStore) ListDiscounts(ctx context.Context, storeID int) ([]model.Discount, error) {
	out := []model.Discount{}
	if err := s.db.SelectContext(ctx, &out, discountSelect+` WHERE d.store_id = $1 ORDER BY d.created_at, d.id;`, storeID); err != nil {
		log.Error().Err(err).Int("store_id", storeID).Msg("ListDiscounts failed")
		return nil, err
	}
	for i := range out {
		decode(&out[i])
	}
	return out, nil
}
