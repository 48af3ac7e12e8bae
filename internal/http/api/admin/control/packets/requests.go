package packets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
)

type CreateStoreRequest struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"`
}

// DiscountRequest is the body for creating or replacing a discount. An
// omitted or empty availability rule means the discount is not restricted
// to weekly windows.
type DiscountRequest struct {
	Title        string                                 `json:"title" binding:"required"`
	Description  *string                                `json:"description"`
	PercentOff   decimal.Decimal                        `json:"percent_off"`
	Active       *bool                                  `json:"active"`
	StartDate    *time.Time                             `json:"start_date"`
	EndDate      *time.Time                             `json:"end_date"`
	Availability *availability.RawAvailableDaysAndTimes `json:"available_days_and_times"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
