// Package classify partitions bookings into upcoming and past relative to a
// point in time.
package classify

import (
	"time"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

// Partition is the derived upcoming/past view of a booking list. It is never
// stored; consumers recompute it whenever the list changes or a day boundary
// is crossed.
type Partition struct {
	Upcoming []models.Booking
	Past     []models.Booking
}

// Classify splits bookings by date and time relative to now.
//
// A cancelled booking is always past, regardless of date. Rejected bookings
// are classified by date and time exactly like pending and confirmed ones.
// Same-day bookings compare their HH:MM time string against now formatted
// the same way; the formats are fixed-width zero-padded, so the lexicographic
// order is the temporal order. A booking at exactly the current minute counts
// as upcoming.
func Classify(bookings []models.Booking, now time.Time) Partition {
	today := now.Format(models.DateLayout)
	currentTime := now.Format(models.TimeLayout)

	p := Partition{
		Upcoming: make([]models.Booking, 0, len(bookings)),
		Past:     make([]models.Booking, 0, len(bookings)),
	}

	for _, b := range bookings {
		if IsUpcoming(&b, today, currentTime) {
			p.Upcoming = append(p.Upcoming, b)
		} else {
			p.Past = append(p.Past, b)
		}
	}
	return p
}

// IsUpcoming applies the classification rule to a single booking given the
// current calendar date and HH:MM time.
func IsUpcoming(b *models.Booking, today, currentTime string) bool {
	if b.Status == models.StatusCancelled {
		return false
	}
	if b.Date == today {
		return b.Time >= currentTime
	}
	return b.Date > today
}
