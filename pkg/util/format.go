package util

import (
	"fmt"
	"time"
)

// FormatDuration renders a track length for display.
// Zero means the length is unknown or the track is a continuous
// stream, rendered as "LIVE".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "LIVE"
	}

	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Truncate shortens s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
