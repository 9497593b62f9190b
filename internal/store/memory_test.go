package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByeongIn-K/goat-server/internal/models"
)

func TestMemory_Restaurants(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.CreateRestaurant(ctx, models.Restaurant{Name: "Seoul Table", Capacity: 50})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	name := "Seoul Table 2"
	capacity := 80
	updated, err := m.UpdateRestaurant(ctx, created.ID, RestaurantUpdate{Name: &name, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, "Seoul Table 2", updated.Name)
	assert.Equal(t, 80, updated.Capacity)

	all, err := m.GetAllRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, updated, all[0])

	_, err = m.UpdateRestaurant(ctx, 999, RestaurantUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CreateBookingAssignsIdentity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.CreateBooking(ctx, models.Booking{
		RestaurantID: 1,
		Date:         "2024-06-01",
		Time:         "18:00",
		PartySize:    4,
		Status:       models.StatusConfirmed,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, strings.HasPrefix(created.ConfirmationNumber, "GOAT-"), created.ConfirmationNumber)
	assert.Equal(t, models.StatusConfirmed, created.Status)
}

func TestMemory_CreateBookingRejectsInvalid(t *testing.T) {
	m := NewMemory()
	_, err := m.CreateBooking(context.Background(), models.Booking{RestaurantID: 1, Date: "bad", Time: "18:00", PartySize: 2})
	assert.Error(t, err)
}

func TestMemory_StatusTransitions(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.CreateBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	confirmed, err := m.ConfirmBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	rejected, err := m.RejectBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	_, err = m.ConfirmBooking(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteBooking(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.CreateBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 2,
	})
	require.NoError(t, err)

	require.NoError(t, m.DeleteBooking(ctx, created.ID))

	all, err := m.GetAllBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, m.DeleteBooking(ctx, created.ID), ErrNotFound)
}

func TestMemory_CurrentUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u, err := m.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	restID := int64(1)
	m.SetCurrentUser(&models.User{ID: "owner-1", Role: models.RoleOwner, RestaurantID: &restID})

	u, err = m.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "owner-1", u.ID)
}
