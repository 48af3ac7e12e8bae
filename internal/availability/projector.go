package availability

import "time"

// lookahead is how many days past today NextWindow scans. Seven covers a
// rule whose only window is today's, already passed.
const lookahead = 7

// NextWindow returns the next instant after now at which a window opens.
// Ranges are assumed ascending and non-overlapping, which Normalize ensures.
// ok is false when no day in the lookahead has any range.
func (p Policy) NextWindow(days AvailableDaysAndTimes, now time.Time) (next time.Time, ok bool) {
	today := p.DayIndex(now)
	nowMinutes := clockOf(now).Minutes()

	if day, found := days.Day(today); found {
		for _, r := range day.TimeRanges {
			if nowMinutes >= r.Start.Minutes() {
				continue
			}
			if cand, hit := laterThan(r.Start, now); hit {
				return cand, true
			}
		}
	}

	for i := 1; i <= lookahead; i++ {
		// today is -1 on Sundays under LegacyOffset
		idx := ((today+i)%7 + 7) % 7
		day, found := days.Day(idx)
		if !found || len(day.TimeRanges) == 0 {
			continue
		}
		return day.TimeRanges[0].Start.On(now, i), true
	}
	return time.Time{}, false
}

// laterThan places c on now's date. Inside a repeated DST hour time.Date picks
// the earlier offset, which can land before now; the same wall clock at now's
// offset is tried instead.
func laterThan(c ClockTime, now time.Time) (time.Time, bool) {
	cand := c.On(now, 0)
	if cand.After(now) {
		return cand, true
	}
	_, candOff := cand.Zone()
	_, nowOff := now.Zone()
	shifted := cand.Add(time.Duration(candOff-nowOff) * time.Second)
	if shifted.After(now) && clockOf(shifted) == c {
		return shifted, true
	}
	return time.Time{}, false
}

// NextWindow uses DefaultPolicy.
func NextWindow(days AvailableDaysAndTimes, now time.Time) (time.Time, bool) {
	return DefaultPolicy.NextWindow(days, now)
}
