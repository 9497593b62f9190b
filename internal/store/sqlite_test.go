package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_RestaurantRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	created, err := s.CreateRestaurant(ctx, models.Restaurant{Name: "Seoul Table", Address: "Mapo-gu", Capacity: 50})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	capacity := 60
	updated, err := s.UpdateRestaurant(ctx, created.ID, RestaurantUpdate{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.Capacity)
	assert.Equal(t, "Seoul Table", updated.Name)

	all, err := s.GetAllRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, updated, all[0])
}

func TestSQLite_BookingLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	created, err := s.CreateBooking(ctx, models.Booking{
		RestaurantID: 1,
		GuestName:    "Kim",
		Date:         "2024-06-01",
		Time:         "18:00",
		PartySize:    4,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.ConfirmationNumber)
	assert.Equal(t, models.StatusPending, created.Status)

	confirmed, err := s.ConfirmBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Equal(t, created.ID, confirmed.ID)

	require.NoError(t, s.DeleteBooking(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteBooking(ctx, created.ID), ErrNotFound)
}

func TestSQLite_CurrentUser(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	restID := int64(7)
	require.NoError(t, s.SetCurrentUser(ctx, models.User{ID: "owner-1", Name: "Park", Role: models.RoleOwner, RestaurantID: &restID}))

	u, err = s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "owner-1", u.ID)
	require.NotNil(t, u.RestaurantID)
	assert.Equal(t, int64(7), *u.RestaurantID)

	// Switching the session replaces the current flag.
	require.NoError(t, s.SetCurrentUser(ctx, models.User{ID: "guest-1", Role: models.RoleGuest}))
	u, err = s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "guest-1", u.ID)
}
