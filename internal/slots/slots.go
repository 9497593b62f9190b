// Package slots generates bookable time-of-day slots.
package slots

import (
	"fmt"
	"time"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

// Default service day. Slots are generated on a fixed grid; per-restaurant
// schedules are not part of this system.
const (
	defaultOpen     = "11:00"
	defaultClose    = "22:00"
	defaultStepMins = 30
)

// Generate returns every HH:MM slot from open (inclusive) to close
// (exclusive) on a step-minute grid. Malformed bounds yield an error.
func Generate(open, close string, stepMins int) ([]string, error) {
	if stepMins <= 0 {
		stepMins = defaultStepMins
	}
	start, err := time.Parse(models.TimeLayout, open)
	if err != nil {
		return nil, fmt.Errorf("parse open time: %w", err)
	}
	end, err := time.Parse(models.TimeLayout, close)
	if err != nil {
		return nil, fmt.Errorf("parse close time: %w", err)
	}

	step := time.Duration(stepMins) * time.Minute
	var out []string
	for cursor := start; cursor.Before(end); cursor = cursor.Add(step) {
		out = append(out, cursor.Format(models.TimeLayout))
	}
	return out, nil
}

// Default returns the standard service-day grid.
func Default() []string {
	out, _ := Generate(defaultOpen, defaultClose, defaultStepMins)
	return out
}

// NextAvailable returns the first slot at or after the current HH:MM time,
// or the empty string when the service day is exhausted. Slots must be
// sorted ascending, which Generate guarantees.
func NextAvailable(current string, slotList []string) string {
	for _, s := range slotList {
		if s >= current {
			return s
		}
	}
	return ""
}
