// Package capacity computes per-restaurant, per-date seating arithmetic.
package capacity

import "github.com/ByeongIn-K/goat-server/internal/models"

// Options controls which statuses consume seats.
//
// The owner dashboard counts everything not cancelled or rejected, showing
// the full provisional load. The guest discovery view sets ConfirmedOnly to
// show firm availability.
type Options struct {
	ConfirmedOnly bool
}

// Booked sums the party sizes of the bookings for a restaurant on a calendar
// date. Cancelled and rejected bookings never count.
func Booked(bookings []models.Booking, restaurantID int64, date string, opts Options) int {
	total := 0
	for i := range bookings {
		b := &bookings[i]
		if b.RestaurantID != restaurantID || !b.IsOnDate(date) {
			continue
		}
		if !b.CountsAgainstCapacity() {
			continue
		}
		if opts.ConfirmedOnly && b.Status != models.StatusConfirmed {
			continue
		}
		total += b.PartySize
	}
	return total
}

// Available returns the remaining seats for a restaurant on a date, floored
// at zero. Results are recomputed per call; the booking list may change
// between requests.
func Available(bookings []models.Booking, restaurantID int64, date string, maxCapacity int, opts Options) int {
	remaining := maxCapacity - Booked(bookings, restaurantID, date, opts)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot bundles the derived capacity numbers for a (restaurant, date)
// pair, as surfaced on the owner dashboard.
type Snapshot struct {
	RestaurantID int64  `json:"restaurant_id"`
	Date         string `json:"date"`
	MaxCapacity  int    `json:"max_capacity"`
	Booked       int    `json:"booked"`
	Available    int    `json:"available"`
}

// Snap computes a full capacity snapshot.
func Snap(bookings []models.Booking, restaurantID int64, date string, maxCapacity int, opts Options) Snapshot {
	booked := Booked(bookings, restaurantID, date, opts)
	available := maxCapacity - booked
	if available < 0 {
		available = 0
	}
	return Snapshot{
		RestaurantID: restaurantID,
		Date:         date,
		MaxCapacity:  maxCapacity,
		Booked:       booked,
		Available:    available,
	}
}
