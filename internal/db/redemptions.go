package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

func (s *pgStore) CreateRedemption(ctx context.Context, discountID uuid.UUID, userID int) (model.Redemption, error) {
	r := model.Redemption{ID: uuid.New(), DiscountID: discountID, UserID: userID}
	const q = `
	INSERT INTO redemptions (id, discount_id, user_id, redeemed_at)
	VALUES ($1, $2, $3, now())
	RETURNING redeemed_at;`
	if err := s.db.QueryRowContext(ctx, q, r.ID, discountID, userID).Scan(&r.RedeemedAt); err != nil {
		log.Error().Err(err).Str("discount_id", discountID.String()).Int("user_id", userID).Msg("CreateRedemption failed")
		return model.Redemption{}, err
	}
	return r, nil
}
