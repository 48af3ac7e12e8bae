package packets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Nixie-Tech-LLC/perks/internal/discount"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
)

var reasonMessages = map[discount.Reason]string{
	discount.ReasonInactive:      "discount is not active",
	discount.ReasonExpired:       "discount has ended",
	discount.ReasonNotStarted:    "discount has not started yet",
	discount.ReasonOutsideWindow: "discount is not available right now",
	discount.ReasonMisconfigured: "discount temporarily unavailable",
}

// Evaluation is the availability verdict for a discount at evaluated_at.
type Evaluation struct {
	IsValid         bool       `json:"is_valid"`
	Reason          string     `json:"reason"`
	Message         string     `json:"message,omitempty"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
	Countdown       string     `json:"countdown,omitempty"`
	NoETA           bool       `json:"no_eta"`
	EvaluatedAt     time.Time  `json:"evaluated_at"`
}

func NewEvaluation(st service.Status) Evaluation {
	return Evaluation{
		IsValid:         st.Result.IsValid,
		Reason:          string(st.Result.Reason),
		Message:         reasonMessages[st.Result.Reason],
		NextAvailableAt: st.Result.NextAvailableAt,
		Countdown:       st.Result.Countdown,
		NoETA:           st.Result.NoETA,
		EvaluatedAt:     st.At,
	}
}

// DiscountStatusResponse is the customer-facing view of a discount.
type DiscountStatusResponse struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     int             `json:"store_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	PercentOff  decimal.Decimal `json:"percent_off"`
	Evaluation  Evaluation      `json:"evaluation"`
}

func NewDiscountStatus(st service.Status) DiscountStatusResponse {
	d := st.Discount
	return DiscountStatusResponse{
		ID:          d.ID,
		StoreID:     d.StoreID,
		Title:       d.Title,
		Description: d.Description,
		PercentOff:  d.PercentOff,
		Evaluation:  NewEvaluation(st),
	}
}

type RedemptionResponse struct {
	ID         uuid.UUID `json:"id"`
	DiscountID uuid.UUID `json:"discount_id"`
	RedeemedAt string    `json:"redeemed_at"`
}

func Message(r discount.Reason) string { return reasonMessages[r] }
