// Package countdown renders the time left until a discount window opens and
// drives a once-per-second refresh of that text.
package countdown

import (
	"fmt"
	"time"
)

const (
	msPerSecond = int64(time.Second / time.Millisecond)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Format renders d with precision that narrows as d shrinks:
// days/hours/minutes, then hours/minutes/seconds, then minutes/seconds, then
// seconds. Units are floored; negative durations render as "0s".
func Format(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	days := ms / msPerDay
	hours := ms % msPerDay / msPerHour
	minutes := ms % msPerHour / msPerMinute
	seconds := ms % msPerMinute / msPerSecond

	switch {
	case days >= 1:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours >= 1:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes >= 1:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
