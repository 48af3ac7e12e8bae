package availability

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("invalid availability configuration")

// ConfigurationError describes one malformed field of a raw rule.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("availability: %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Normalize validates a raw rule and returns it with each day's ranges sorted
// by start time. It stops at the first problem found.
func Normalize(raw RawAvailableDaysAndTimes) (AvailableDaysAndTimes, error) {
	out := AvailableDaysAndTimes{AvailableDays: make([]AvailableDay, 0, len(raw.AvailableDays))}
	seen := make(map[int]bool, len(raw.AvailableDays))

	for i, rd := range raw.AvailableDays {
		dayField := fmt.Sprintf("availableDays[%d].dayIndex", i)
		if rd.DayIndex < 0 || rd.DayIndex > 6 {
			return AvailableDaysAndTimes{}, &ConfigurationError{Field: dayField, Value: strconv.Itoa(rd.DayIndex), Reason: "must be between 0 (Monday) and 6 (Sunday)"}
		}
		if seen[rd.DayIndex] {
			return AvailableDaysAndTimes{}, &ConfigurationError{Field: dayField, Value: strconv.Itoa(rd.DayIndex), Reason: "duplicate day"}
		}
		seen[rd.DayIndex] = true

		day := AvailableDay{DayIndex: rd.DayIndex, TimeRanges: make([]TimeRange, 0, len(rd.TimeRanges))}
		for j, rr := range rd.TimeRanges {
			prefix := fmt.Sprintf("availableDays[%d].timeRanges[%d]", i, j)
			start, err := ParseClockTime(rr.Start)
			if err != nil {
				return AvailableDaysAndTimes{}, &ConfigurationError{Field: prefix + ".start", Value: rr.Start, Reason: "expected HH:MM"}
			}
			end, err := ParseClockTime(rr.End)
			if err != nil {
				return AvailableDaysAndTimes{}, &ConfigurationError{Field: prefix + ".end", Value: rr.End, Reason: "expected HH:MM"}
			}
			if end.Minutes() < start.Minutes() {
				return AvailableDaysAndTimes{}, &ConfigurationError{Field: prefix + ".end", Value: rr.End, Reason: "ends before " + rr.Start}
			}
			day.TimeRanges = append(day.TimeRanges, TimeRange{Start: start, End: end})
		}
		sort.SliceStable(day.TimeRanges, func(a, b int) bool {
			return day.TimeRanges[a].Start.Minutes() < day.TimeRanges[b].Start.Minutes()
		})
		out.AvailableDays = append(out.AvailableDays, day)
	}
	return out, nil
}
