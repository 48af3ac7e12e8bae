// Package discount decides whether a discount snapshot is usable at an
// instant and, when a weekly window is what blocks it, when it opens next.
//
// Every function here is pure: the caller supplies now, already converted to
// the store's location.
package discount

import (
	"time"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	"github.com/Nixie-Tech-LLC/perks/internal/countdown"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

type Reason string

const (
	ReasonAvailable     Reason = "available"
	ReasonInactive      Reason = "inactive"
	ReasonExpired       Reason = "expired"
	ReasonNotStarted    Reason = "not_started"
	ReasonOutsideWindow Reason = "outside_window"
	ReasonMisconfigured Reason = "misconfigured"
)

// Check runs the validity steps in order and stops at the first failure:
// active flag, end date, start date, weekly window.
func Check(d model.Discount, now time.Time, p availability.Policy) (bool, Reason) {
	if !d.Active {
		return false, ReasonInactive
	}
	if d.EndDate != nil && d.EndDate.Before(now) {
		return false, ReasonExpired
	}
	if d.StartDate != nil && d.StartDate.After(now) {
		return false, ReasonNotStarted
	}
	if d.ConfigError != nil {
		return false, ReasonMisconfigured
	}
	if d.Availability != nil && d.Availability.Restricted() {
		if !p.Matches(*d.Availability, now) {
			return false, ReasonOutsideWindow
		}
	}
	return true, ReasonAvailable
}

func IsValid(d model.Discount, now time.Time, p availability.Policy) bool {
	ok, _ := Check(d, now, p)
	return ok
}

// Result is the derived view handed to the transport layer. It is never stored.
type Result struct {
	IsValid         bool
	Reason          Reason
	NextAvailableAt *time.Time
	Countdown       string
	// NoETA is set when the weekly rule blocks the discount and no window
	// opens within the projection horizon.
	NoETA bool
}

// Evaluate checks d and projects the next window only when the weekly rule
// is the failing step.
func Evaluate(d model.Discount, now time.Time, p availability.Policy) Result {
	ok, reason := Check(d, now, p)
	res := Result{IsValid: ok, Reason: reason}
	if reason != ReasonOutsideWindow {
		return res
	}

	next, found := p.NextWindow(*d.Availability, now)
	if !found {
		res.NoETA = true
		return res
	}
	if d.EndDate != nil && next.After(*d.EndDate) {
		// window opens after the discount has ended
		res.NoETA = true
		return res
	}
	res.NextAvailableAt = &next
	res.Countdown = countdown.Format(next.Sub(now))
	return res
}
