// Package timeutil provides utility functions for working with dates and
// clock-style durations.
package timeutil

import (
	"fmt"
	"time"
)

const (
	secondsInAMinute = 60
	secondsInAnHour  = 3600
)

// DayKey formats a time as the short date string used to detect day
// rollovers, e.g. "1/2/2024".
func DayKey(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// FormatTime expresses a seconds value as HH:MM:SS. Negative values clamp
// to zero.
func FormatTime(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	h := totalSeconds / secondsInAnHour
	m := (totalSeconds % secondsInAnHour) / secondsInAMinute
	s := totalSeconds % secondsInAMinute

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// SecsToMinsAndSecs splits a seconds value into whole minutes and leftover
// seconds.
func SecsToMinsAndSecs(totalSeconds int) (mins, secs int) {
	mins = totalSeconds / secondsInAMinute
	secs = totalSeconds % secondsInAMinute

	return
}

// SecsToMins rounds a seconds value to the nearest whole minute.
func SecsToMins(totalSeconds int) int {
	return (totalSeconds + secondsInAMinute/2) / secondsInAMinute
}
