package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

// Memory is an in-process record store. It backs the standalone deployment
// mode and tests. Identity assignment mirrors the remote store: booking IDs
// are uuids, confirmation numbers are short human-facing references.
type Memory struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
	bookings    []models.Booking
	user        *models.User
	nextRestID  int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nextRestID: 1}
}

// SetCurrentUser seeds the session the store reports. nil means no session.
func (m *Memory) SetCurrentUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
}

// GetAllRestaurants returns a copy of every restaurant.
func (m *Memory) GetAllRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Restaurant(nil), m.restaurants...), nil
}

// CreateRestaurant stores the restaurant, assigning an ID when absent.
func (m *Memory) CreateRestaurant(ctx context.Context, r models.Restaurant) (models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.nextRestID
	}
	if r.ID >= m.nextRestID {
		m.nextRestID = r.ID + 1
	}
	m.restaurants = append(m.restaurants, r)
	return r, nil
}

// UpdateRestaurant applies a partial update and returns the full record.
func (m *Memory) UpdateRestaurant(ctx context.Context, id int64, updates RestaurantUpdate) (models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.restaurants {
		if m.restaurants[i].ID != id {
			continue
		}
		r := &m.restaurants[i]
		if updates.Name != nil {
			r.Name = *updates.Name
		}
		if updates.Address != nil {
			r.Address = *updates.Address
		}
		if updates.Capacity != nil {
			r.Capacity = *updates.Capacity
		}
		if updates.Image != nil {
			r.Image = *updates.Image
		}
		return *r, nil
	}
	return models.Restaurant{}, fmt.Errorf("restaurant %d: %w", id, ErrNotFound)
}

// GetAllBookings returns a copy of every booking.
func (m *Memory) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Booking(nil), m.bookings...), nil
}

// CreateBooking stores the booking, assigning id, created_at and
// confirmation_number.
func (m *Memory) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	if err := b.Validate(); err != nil {
		return models.Booking{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New().String()
	b.CreatedAt = time.Now()
	b.ConfirmationNumber = newConfirmationNumber()
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	m.bookings = append(m.bookings, b)
	return b, nil
}

// DeleteBooking removes the record outright, regardless of status.
func (m *Memory) DeleteBooking(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("booking %s: %w", id, ErrNotFound)
}

// RejectBooking sets the status to rejected and returns the record.
func (m *Memory) RejectBooking(ctx context.Context, id string) (models.Booking, error) {
	return m.setStatus(id, models.StatusRejected)
}

// ConfirmBooking sets the status to confirmed and returns the record. The
// transition is applied unconditionally, matching the remote store.
func (m *Memory) ConfirmBooking(ctx context.Context, id string) (models.Booking, error) {
	return m.setStatus(id, models.StatusConfirmed)
}

func (m *Memory) setStatus(id, status string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings[i].Status = status
			return m.bookings[i], nil
		}
	}
	return models.Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
}

// CurrentUser returns the seeded session user, or nil.
func (m *Memory) CurrentUser(ctx context.Context) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

// newConfirmationNumber builds a human-facing reference like "GOAT-1A2B3C4D".
func newConfirmationNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "GOAT-" + raw[:8]
}
