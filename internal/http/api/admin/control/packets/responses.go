package packets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	customer "github.com/Nixie-Tech-LLC/perks/internal/http/api/customer/packets"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
)

type StoreResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func NewStore(s model.Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID,
		Name:      s.Name,
		Timezone:  s.Timezone,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

type DiscountResponse struct {
	ID           uuid.UUID                           `json:"id"`
	StoreID      int                                 `json:"store_id"`
	Title        string                              `json:"title"`
	Description  *string                             `json:"description"`
	PercentOff   decimal.Decimal                     `json:"percent_off"`
	Active       bool                                `json:"active"`
	StartDate    *time.Time                          `json:"start_date"`
	EndDate      *time.Time                          `json:"end_date"`
	Availability *availability.AvailableDaysAndTimes `json:"available_days_and_times"`
	ConfigError  string                              `json:"config_error,omitempty"`
	Evaluation   customer.Evaluation                 `json:"evaluation"`
	CreatedAt    string                              `json:"created_at"`
	UpdatedAt    string                              `json:"updated_at"`
}

func NewDiscount(st service.Status) DiscountResponse {
	d := st.Discount
	out := DiscountResponse{
		ID:           d.ID,
		StoreID:      d.StoreID,
		Title:        d.Title,
		Description:  d.Description,
		PercentOff:   d.PercentOff,
		Active:       d.Active,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Availability: d.Availability,
		Evaluation:   customer.NewEvaluation(st),
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
	// owners see the broken field path; customers only see "misconfigured"
	if d.ConfigError != nil {
		out.ConfigError = d.ConfigError.Error()
	}
	return out
}
