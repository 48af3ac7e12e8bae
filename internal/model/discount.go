package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
)

var nullJSON = types.JSONText("null")

// Discount is a snapshot of a store's offer. AvailabilityJSON is the stored
// column; Availability and ConfigError are derived from it by DecodeAvailability.
type Discount struct {
	ID               uuid.UUID       `db:"id"                       json:"id"`
	StoreID          int             `db:"store_id"                 json:"store_id"`
	Title            string          `db:"title"                    json:"title"`
	Description      *string         `db:"description"              json:"description,omitempty"`
	PercentOff       decimal.Decimal `db:"percent_off"              json:"percent_off"`
	Active           bool            `db:"active"                   json:"active"`
	StartDate        *time.Time      `db:"start_date"               json:"start_date,omitempty"`
	EndDate          *time.Time      `db:"end_date"                 json:"end_date,omitempty"`
	AvailabilityJSON types.JSONText  `db:"available_days_and_times" json:"available_days_and_times"`
	Timezone         string          `db:"timezone"                 json:"timezone"`
	CreatedAt        time.Time       `db:"created_at"               json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"               json:"updated_at"`

	Availability *availability.AvailableDaysAndTimes `db:"-" json:"-"`
	ConfigError  error                               `db:"-" json:"-"`
}

// SetAvailability replaces the weekly rule; nil clears it.
func (d *Discount) SetAvailability(a *availability.AvailableDaysAndTimes) error {
	d.Availability = a
	d.ConfigError = nil
	if a == nil {
		d.AvailabilityJSON = nullJSON
		return nil
	}
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	d.AvailabilityJSON = body
	return nil
}

// DecodeAvailability re-derives Availability from the stored column. A rule
// that fails normalization is kept out of Availability and recorded in
// ConfigError so evaluators can refuse the discount.
func (d *Discount) DecodeAvailability() {
	d.Availability = nil
	d.ConfigError = nil

	if len(d.AvailabilityJSON) == 0 || string(d.AvailabilityJSON) == "null" {
		return
	}
	var raw availability.RawAvailableDaysAndTimes
	if err := json.Unmarshal(d.AvailabilityJSON, &raw); err != nil {
		d.ConfigError = &availability.ConfigurationError{Field: "availableDays", Value: string(d.AvailabilityJSON), Reason: err.Error()}
		return
	}
	days, err := availability.Normalize(raw)
	if err != nil {
		d.ConfigError = err
		return
	}
	d.Availability = &days
}

// Misconfigured reports whether the stored weekly rule is unusable.
func (d *Discount) Misconfigured() bool { return d.ConfigError != nil }
