// Package store provides access to the booking record store, the external
// service that persists restaurants, bookings and users.
package store

import (
	"context"
	"errors"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("record not found")

// RestaurantUpdate carries a partial restaurant update; nil fields are left
// unchanged.
type RestaurantUpdate struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
	Image    *string `json:"image,omitempty"`
}

// RestaurantStore persists restaurants.
type RestaurantStore interface {
	GetAllRestaurants(ctx context.Context) ([]models.Restaurant, error)
	CreateRestaurant(ctx context.Context, r models.Restaurant) (models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id int64, updates RestaurantUpdate) (models.Restaurant, error)
}

// BookingStore persists bookings. Create assigns the identity fields (ID,
// CreatedAt, ConfirmationNumber) server-side. Reject and Confirm return the
// full updated record.
type BookingStore interface {
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
	CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	RejectBooking(ctx context.Context, id string) (models.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (models.Booking, error)
}

// AuthStore resolves the current user. A missing session yields (nil, nil):
// absent data, not an error.
type AuthStore interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Store is the full record-store contract the application depends on.
type Store interface {
	RestaurantStore
	BookingStore
	AuthStore
}
