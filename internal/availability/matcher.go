package availability

import "time"

// Matches reports whether at falls inside any range configured for its day.
func (p Policy) Matches(days AvailableDaysAndTimes, at time.Time) bool {
	day, ok := days.Day(p.DayIndex(at))
	if !ok {
		return false
	}
	for _, r := range day.TimeRanges {
		if p.covers(r, at) {
			return true
		}
	}
	return false
}

// both ends inclusive
func (p Policy) covers(r TimeRange, at time.Time) bool {
	if p.Precision == HourPrecision {
		h := at.Hour()
		return h >= r.Start.Hour && h <= r.End.Hour
	}
	m := clockOf(at).Minutes()
	return m >= r.Start.Minutes() && m <= r.End.Minutes()
}

// Matches uses DefaultPolicy.
func Matches(days AvailableDaysAndTimes, at time.Time) bool {
	return DefaultPolicy.Matches(days, at)
}
