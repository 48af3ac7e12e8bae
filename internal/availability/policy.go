package availability

import (
	"fmt"
	"time"
)

// WeekdayConvention selects how time.Weekday maps onto the Monday=0 index.
type WeekdayConvention int

const (
	// MondayFirst maps Sunday to 6.
	MondayFirst WeekdayConvention = iota
	// LegacyOffset reproduces the old client's weekday-1, which maps Sunday
	// to -1 so Sunday windows never match.
	LegacyOffset
)

// Precision selects how "inside a range" is decided.
type Precision int

const (
	MinutePrecision Precision = iota
	// HourPrecision compares only the hour, so 09:30-17:45 admits all of 09:xx and 17:xx.
	HourPrecision
)

// Policy bundles the two legacy-compatibility switches. The zero value is
// the corrected behavior.
type Policy struct {
	Weekday   WeekdayConvention
	Precision Precision
}

var DefaultPolicy = Policy{Weekday: MondayFirst, Precision: MinutePrecision}

func ParseWeekdayConvention(s string) (WeekdayConvention, error) {
	switch s {
	case "", "monday_first":
		return MondayFirst, nil
	case "legacy_offset":
		return LegacyOffset, nil
	}
	return 0, fmt.Errorf("unknown weekday convention %q", s)
}

func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "", "minute":
		return MinutePrecision, nil
	case "hour":
		return HourPrecision, nil
	}
	return 0, fmt.Errorf("unknown precision %q", s)
}

// DayIndex converts t's weekday into the rule's day index.
func (p Policy) DayIndex(t time.Time) int {
	if p.Weekday == LegacyOffset {
		return int(t.Weekday()) - 1
	}
	return (int(t.Weekday()) + 6) % 7
}
