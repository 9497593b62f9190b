// Package app holds the shared application state: restaurants, bookings and
// the current user, mediating every read and write between the record store
// and presentation layers.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ByeongIn-K/goat-server/internal/capacity"
	"github.com/ByeongIn-K/goat-server/internal/classify"
	"github.com/ByeongIn-K/goat-server/internal/events"
	"github.com/ByeongIn-K/goat-server/internal/metrics"
	"github.com/ByeongIn-K/goat-server/internal/models"
	"github.com/ByeongIn-K/goat-server/internal/store"
)

// DefaultCapacity is assumed when a restaurant record is missing.
const DefaultCapacity = 50

// App is the single source of truth for in-memory application state. It is
// constructed once at process start and passed by reference to every
// component that reads or mutates state.
//
// Mutations are optimistic-on-success: the remote write happens first and
// local state changes only after it resolves, so a failed write leaves local
// state untouched with nothing to roll back.
type App struct {
	store  store.Store
	bus    *events.Bus
	logger zerolog.Logger

	mu          sync.RWMutex
	restaurants []models.Restaurant
	bookings    []models.Booking
	currentUser *models.User
	loading     bool
}

// New constructs the state container. The loading flag stays set until the
// first Load completes.
func New(st store.Store, bus *events.Bus, logger zerolog.Logger) *App {
	a := &App{
		store:   st,
		bus:     bus,
		logger:  logger,
		loading: true,
	}
	if bus != nil {
		bus.Subscribe(events.TypeDayRollover, a.onDayRollover)
	}
	return a
}

// Load fetches restaurants, bookings and the current user concurrently and
// applies whatever arrived. Failures are logged, not fatal: the application
// proceeds with partial (possibly empty) state. The loading flag clears on
// every path.
func (a *App) Load(ctx context.Context) {
	defer func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
	}()

	var (
		wg          sync.WaitGroup
		restaurants []models.Restaurant
		bookings    []models.Booking
		user        *models.User
		restErr     error
		bookErr     error
		userErr     error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		restaurants, restErr = a.store.GetAllRestaurants(ctx)
	}()
	go func() {
		defer wg.Done()
		bookings, bookErr = a.store.GetAllBookings(ctx)
	}()
	go func() {
		defer wg.Done()
		user, userErr = a.store.CurrentUser(ctx)
	}()
	wg.Wait()

	if restErr != nil {
		metrics.IncStoreError("get_restaurants")
		a.logger.Error().Err(restErr).Msg("initial restaurant load failed")
	}
	if bookErr != nil {
		metrics.IncStoreError("get_bookings")
		a.logger.Error().Err(bookErr).Msg("initial booking load failed")
	}
	if userErr != nil {
		metrics.IncStoreError("current_user")
		a.logger.Error().Err(userErr).Msg("current user load failed")
	}

	a.mu.Lock()
	if restErr == nil {
		a.restaurants = restaurants
	}
	if bookErr == nil {
		a.bookings = bookings
	}
	if userErr == nil {
		a.currentUser = user
	}
	a.mu.Unlock()

	a.logger.Info().
		Int("restaurants", len(restaurants)).
		Int("bookings", len(bookings)).
		Bool("has_user", user != nil).
		Msg("initial data loaded")
}

// IsLoading reports whether the initial load is still in flight.
func (a *App) IsLoading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// AddRestaurant creates the restaurant remotely and appends the
// server-assigned record on success.
func (a *App) AddRestaurant(ctx context.Context, r models.Restaurant) (models.Restaurant, error) {
	created, err := a.store.CreateRestaurant(ctx, r)
	if err != nil {
		metrics.IncStoreError("create_restaurant")
		a.logger.Error().Err(err).Str("name", r.Name).Msg("add restaurant failed")
		return models.Restaurant{}, fmt.Errorf("add restaurant: %w", err)
	}

	a.mu.Lock()
	a.restaurants = append(a.restaurants, created)
	a.mu.Unlock()
	return created, nil
}

// UpdateRestaurant sends a partial update and replaces the matching local
// record with the store's full updated record.
func (a *App) UpdateRestaurant(ctx context.Context, id int64, updates store.RestaurantUpdate) (models.Restaurant, error) {
	updated, err := a.store.UpdateRestaurant(ctx, id, updates)
	if err != nil {
		metrics.IncStoreError("update_restaurant")
		a.logger.Error().Err(err).Int64("restaurant_id", id).Msg("update restaurant failed")
		return models.Restaurant{}, fmt.Errorf("update restaurant: %w", err)
	}

	a.mu.Lock()
	for i := range a.restaurants {
		if a.restaurants[i].ID == id {
			a.restaurants[i] = updated
			break
		}
	}
	a.mu.Unlock()
	return updated, nil
}

// RefreshRestaurants re-fetches and replaces the entire restaurant list.
func (a *App) RefreshRestaurants(ctx context.Context) error {
	restaurants, err := a.store.GetAllRestaurants(ctx)
	if err != nil {
		metrics.IncStoreError("get_restaurants")
		a.logger.Error().Err(err).Msg("restaurant refresh failed")
		return fmt.Errorf("refresh restaurants: %w", err)
	}

	a.mu.Lock()
	a.restaurants = restaurants
	a.mu.Unlock()
	return nil
}

// AddBooking creates the booking remotely; the store assigns id, created_at and
// confirmation_number. The caller sets the initial status from the booking
// mode before calling.
func (a *App) AddBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	created, err := a.store.CreateBooking(ctx, b)
	if err != nil {
		metrics.IncStoreError("create_booking")
		a.logger.Error().Err(err).Int64("restaurant_id", b.RestaurantID).Msg("add booking failed")
		return models.Booking{}, fmt.Errorf("add booking: %w", err)
	}

	a.mu.Lock()
	a.bookings = append(a.bookings, created)
	a.mu.Unlock()

	metrics.IncBookingCreated(created.Status)
	a.publish(events.TypeBookingCreated, created.ID)
	a.logger.Info().
		Str("booking_id", created.ID).
		Str("status", created.Status).
		Str("confirmation", created.ConfirmationNumber).
		Msg("booking created")
	return created, nil
}

// DeleteBooking erases the record outright, distinct from cancellation.
func (a *App) DeleteBooking(ctx context.Context, id string) error {
	if err := a.store.DeleteBooking(ctx, id); err != nil {
		metrics.IncStoreError("delete_booking")
		a.logger.Error().Err(err).Str("booking_id", id).Msg("delete booking failed")
		return fmt.Errorf("delete booking: %w", err)
	}

	a.mu.Lock()
	for i := range a.bookings {
		if a.bookings[i].ID == id {
			a.bookings = append(a.bookings[:i], a.bookings[i+1:]...)
			break
		}
	}
	a.mu.Unlock()

	metrics.IncBookingDeleted()
	a.publish(events.TypeBookingDeleted, id)
	return nil
}

// RejectBooking transitions the booking to rejected.
func (a *App) RejectBooking(ctx context.Context, id string) error {
	updated, err := a.store.RejectBooking(ctx, id)
	if err != nil {
		metrics.IncStoreError("reject_booking")
		a.logger.Error().Err(err).Str("booking_id", id).Msg("reject booking failed")
		return fmt.Errorf("reject booking: %w", err)
	}

	a.replaceBooking(updated)
	metrics.IncOwnerDecision("reject")
	a.publish(events.TypeBookingRejected, id)
	return nil
}

// ConfirmBooking transitions the booking to confirmed. The transition is
// applied unconditionally: confirming a booking that is not pending is not
// rejected here, and callers that care should consult the state machine
// first.
func (a *App) ConfirmBooking(ctx context.Context, id string) error {
	updated, err := a.store.ConfirmBooking(ctx, id)
	if err != nil {
		metrics.IncStoreError("confirm_booking")
		a.logger.Error().Err(err).Str("booking_id", id).Msg("confirm booking failed")
		return fmt.Errorf("confirm booking: %w", err)
	}

	a.replaceBooking(updated)
	metrics.IncOwnerDecision("confirm")
	a.publish(events.TypeBookingConfirmed, id)
	return nil
}

func (a *App) replaceBooking(updated models.Booking) {
	a.mu.Lock()
	for i := range a.bookings {
		if a.bookings[i].ID == updated.ID {
			a.bookings[i] = updated
			break
		}
	}
	a.mu.Unlock()
}

// GetRestaurant is a pure local lookup.
func (a *App) GetRestaurant(id int64) (models.Restaurant, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, r := range a.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

// Restaurants returns a copy of the restaurant list.
func (a *App) Restaurants() []models.Restaurant {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.Restaurant(nil), a.restaurants...)
}

// GetBookingsByRestaurant returns the bookings for one restaurant.
func (a *App) GetBookingsByRestaurant(restaurantID int64) []models.Booking {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []models.Booking
	for _, b := range a.bookings {
		if b.RestaurantID == restaurantID {
			out = append(out, b)
		}
	}
	return out
}

// GetBookingsByUser returns the bookings created by one user.
func (a *App) GetBookingsByUser(userID string) []models.Booking {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []models.Booking
	for _, b := range a.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// CurrentUser returns the session user, or nil when absent.
func (a *App) CurrentUser() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.currentUser == nil {
		return nil
	}
	u := *a.currentUser
	return &u
}

// SetCurrentUser replaces the session user locally.
func (a *App) SetCurrentUser(u *models.User) {
	a.mu.Lock()
	a.currentUser = u
	a.mu.Unlock()
}

// Bookings returns the upcoming/past partition of all bookings, computed
// fresh against the wall clock on every call. It is never cached, so a day
// boundary or list change is always reflected.
func (a *App) Bookings() classify.Partition {
	a.mu.RLock()
	snapshot := append([]models.Booking(nil), a.bookings...)
	a.mu.RUnlock()
	return classify.Classify(snapshot, time.Now())
}

// CapacitySnapshot computes the seat arithmetic for a restaurant and date.
// A missing restaurant record falls back to DefaultCapacity.
func (a *App) CapacitySnapshot(restaurantID int64, date string, opts capacity.Options) capacity.Snapshot {
	maxCapacity := DefaultCapacity
	if r, ok := a.GetRestaurant(restaurantID); ok && r.Capacity > 0 {
		maxCapacity = r.Capacity
	}

	a.mu.RLock()
	snapshot := append([]models.Booking(nil), a.bookings...)
	a.mu.RUnlock()
	return capacity.Snap(snapshot, restaurantID, date, maxCapacity, opts)
}

// AvailableCapacity returns the remaining seats for a restaurant on a date.
func (a *App) AvailableCapacity(restaurantID int64, date string, opts capacity.Options) int {
	return a.CapacitySnapshot(restaurantID, date, opts).Available
}

func (a *App) publish(eventType string, payload any) {
	if a.bus != nil {
		a.bus.PublishType(eventType, payload)
	}
}

// onDayRollover re-derives the partition once so the boundary crossing is
// observable in the logs even with no traffic.
func (a *App) onDayRollover(e events.Event) {
	p := a.Bookings()
	a.logger.Info().
		Int("upcoming", len(p.Upcoming)).
		Int("past", len(p.Past)).
		Msg("reclassified bookings after day rollover")
}
