// Package availability models the weekly recurrence rule attached to a discount
// and answers two questions about it: is an instant inside an allowed window,
// and when does the next window open.
//
// Days are indexed Monday=0 … Sunday=6. Time ranges are wall-clock times in the
// location of the instant being evaluated; callers convert to the store's zone.
package availability

import (
	"fmt"
	"time"
)

// ClockTime is a time of day at minute resolution.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime accepts "HH:MM" and the "HH:MM:SS" form Postgres returns for
// time columns (seconds are dropped).
func ParseClockTime(s string) (ClockTime, error) {
	var layout string
	switch len(s) {
	case len("15:04"):
		layout = "15:04"
	case len("15:04:05"):
		layout = "15:04:05"
	default:
		return ClockTime{}, fmt.Errorf("clock time %q: want HH:MM or HH:MM:SS", s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return ClockTime{}, err
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// MarshalText keeps the wire form "HH:MM".
func (c ClockTime) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// On returns the instant at this time of day on t's calendar date plus
// addDays, in t's location.
func (c ClockTime) On(t time.Time, addDays int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+addDays, c.Hour, c.Minute, 0, 0, t.Location())
}

func clockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

type TimeRange struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

type AvailableDay struct {
	DayIndex   int         `json:"dayIndex"`
	TimeRanges []TimeRange `json:"timeRanges"`
}

// AvailableDaysAndTimes is the full weekly rule. A day without an entry is
// unavailable all day; an empty AvailableDays means no weekly restriction.
type AvailableDaysAndTimes struct {
	AvailableDays []AvailableDay `json:"availableDays"`
}

// Restricted reports whether the rule limits availability at all.
func (a AvailableDaysAndTimes) Restricted() bool { return len(a.AvailableDays) > 0 }

func (a AvailableDaysAndTimes) Day(index int) (AvailableDay, bool) {
	for _, d := range a.AvailableDays {
		if d.DayIndex == index {
			return d, true
		}
	}
	return AvailableDay{}, false
}

// Raw* types are the unvalidated payload shape, as sent by the editor or
// stored in the database. Normalize turns them into AvailableDaysAndTimes.
type RawTimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RawAvailableDay struct {
	DayIndex   int            `json:"dayIndex"`
	TimeRanges []RawTimeRange `json:"timeRanges"`
}

type RawAvailableDaysAndTimes struct {
	AvailableDays []RawAvailableDay `json:"availableDays"`
}
