// Package models defines the core records of the reservation system.
package models

import (
	"fmt"
	"time"
)

// Wire formats for calendar dates and times-of-day. Both are fixed-width
// zero-padded, so plain string comparison orders them correctly.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Booking modes. Instant bookings are created pre-confirmed; scheduled
// bookings wait for an owner decision.
const (
	ModeInstant   = "instant"
	ModeScheduled = "scheduled"
)

// User roles.
const (
	RoleOwner = "owner"
	RoleGuest = "guest"
)

// Restaurant represents a bookable venue.
type Restaurant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"` // maximum simultaneous guest count
	OwnerID  string `json:"owner_id,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Booking represents a single reservation tying a guest to a restaurant,
// date, time and party size.
type Booking struct {
	ID                 string    `json:"id"`
	RestaurantID       int64     `json:"restaurant_id"`
	GuestName          string    `json:"guest_name"`
	GuestPhone         string    `json:"guest_phone"`
	UserID             string    `json:"user_id"`
	Date               string    `json:"date"` // YYYY-MM-DD
	Time               string    `json:"time"` // HH:MM, 24-hour
	PartySize          int       `json:"party_size"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	ConfirmationNumber string    `json:"confirmation_number"`
}

// User represents an authenticated account. RestaurantID is set for owners.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	RestaurantID *int64 `json:"restaurant_id,omitempty"`
}

// IsTerminal reports whether the booking status admits no further transitions.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusRejected || b.Status == StatusCancelled
}

// CountsAgainstCapacity reports whether the booking consumes seats when
// computing a date's booked capacity. Cancelled and rejected bookings never
// count.
func (b *Booking) CountsAgainstCapacity() bool {
	return b.Status != StatusCancelled && b.Status != StatusRejected
}

// IsOnDate reports whether the booking falls on the given calendar date.
func (b *Booking) IsOnDate(date string) bool {
	return b.Date == date
}

// ParseDate parses the booking date in the service's local time.
func (b *Booking) ParseDate() (time.Time, error) {
	return time.ParseInLocation(DateLayout, b.Date, time.Local)
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a well-formed zero-padded HH:MM time.
func ValidTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// Validate checks the fields a caller must supply before creation. Identity
// fields (ID, CreatedAt, ConfirmationNumber) are assigned by the store.
func (b *Booking) Validate() error {
	if b.RestaurantID <= 0 {
		return fmt.Errorf("booking: restaurant id required")
	}
	if b.PartySize <= 0 {
		return fmt.Errorf("booking: party size must be positive")
	}
	if !ValidDate(b.Date) {
		return fmt.Errorf("booking: invalid date %q", b.Date)
	}
	if !ValidTime(b.Time) {
		return fmt.Errorf("booking: invalid time %q", b.Time)
	}
	return nil
}

// InitialStatus returns the status a new booking starts in for the given
// mode. Unknown modes are treated as scheduled.
func InitialStatus(mode string) string {
	if mode == ModeInstant {
		return StatusConfirmed
	}
	return StatusPending
}
