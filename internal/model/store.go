package model

import "time"

// Store is a restaurant or service location offering discounts. Weekly
// discount windows are read in its Timezone.
type Store struct {
	ID        int       `db:"id"         json:"id"`
	OwnerID   int       `db:"owner_id"   json:"owner_id"`
	Name      string    `db:"name"       json:"name"`
	Timezone  string    `db:"timezone"   json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
