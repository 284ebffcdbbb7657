// Package timecode converts between HH:MM clock strings and minute-of-day
// offsets. Route schedules are persisted as minute offsets in [0,1439] and
// redisplayed as clock strings.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in one service day.
const MinutesPerDay = 1440

// ToMinutes parses an HH:MM clock string into a minute-of-day offset.
// Hours must be in [0,23] and minutes in [0,59]. Malformed or out-of-range
// input returns ok=false; this function never panics.
func ToMinutes(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}

// ToText formats a minute-of-day offset as a zero-padded HH:MM string.
// It is the exact inverse of ToMinutes for any value in [0,1439].
func ToText(totalMinutes int) string {
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}

// MinutesPtr is the JSON-boundary variant of ToMinutes: a nil or malformed
// input yields nil rather than an error.
func MinutesPtr(s *string) *int {
	if s == nil {
		return nil
	}
	m, ok := ToMinutes(*s)
	if !ok {
		return nil
	}
	return &m
}

// TextPtr formats an optional minute offset. A nil value formats as "00:00";
// the fallback is documented display behavior, not an error.
func TextPtr(totalMinutes *int) string {
	if totalMinutes == nil {
		return "00:00"
	}
	return ToText(*totalMinutes)
}
