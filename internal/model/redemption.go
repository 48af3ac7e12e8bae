package model

import (
	"time"

	"github.com/google/uuid"
)

type Redemption struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	DiscountID uuid.UUID `db:"discount_id" json:"discount_id"`
	UserID     int       `db:"user_id"     json:"user_id"`
	RedeemedAt time.Time `db:"redeemed_at" json:"redeemed_at"`
}
