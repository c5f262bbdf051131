// Package timefmt formats playback positions for on-screen display.
package timefmt

import "fmt"

// Clock renders a position in seconds as "MM:SS". Fractional seconds are
// truncated; negative positions clamp to zero. Positions of an hour or more
// keep counting minutes past 59.
func Clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Span renders "position / total" using Clock for both parts.
func Span(position, total float64) string {
	return Clock(position) + " / " + Clock(total)
}
