package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ByeongIn-K/goat-server/internal/capacity"
	"github.com/ByeongIn-K/goat-server/internal/events"
	"github.com/ByeongIn-K/goat-server/internal/models"
	"github.com/ByeongIn-K/goat-server/internal/store"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetAllRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Restaurant), args.Error(1)
}

func (m *mockStore) CreateRestaurant(ctx context.Context, r models.Restaurant) (models.Restaurant, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(models.Restaurant), args.Error(1)
}

func (m *mockStore) UpdateRestaurant(ctx context.Context, id int64, updates store.RestaurantUpdate) (models.Restaurant, error) {
	args := m.Called(ctx, id, updates)
	return args.Get(0).(models.Restaurant), args.Error(1)
}

func (m *mockStore) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockStore) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *mockStore) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) RejectBooking(ctx context.Context, id string) (models.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *mockStore) ConfirmBooking(ctx context.Context, id string) (models.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *mockStore) CurrentUser(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestApp(t *testing.T) (*App, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	a := New(mem, events.NewBus(), zerolog.New(io.Discard))
	return a, mem
}

func TestLoad_PopulatesStateAndClearsLoading(t *testing.T) {
	a, mem := newTestApp(t)
	ctx := context.Background()

	_, err := mem.CreateRestaurant(ctx, models.Restaurant{Name: "Seoul Table", Capacity: 50})
	require.NoError(t, err)
	_, err = mem.CreateBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 2,
	})
	require.NoError(t, err)
	mem.SetCurrentUser(&models.User{ID: "guest-1", Role: models.RoleGuest})

	assert.True(t, a.IsLoading())
	a.Load(ctx)
	assert.False(t, a.IsLoading())

	assert.Len(t, a.Restaurants(), 1)
	require.NotNil(t, a.CurrentUser())
	assert.Equal(t, "guest-1", a.CurrentUser().ID)
	assert.Len(t, a.GetBookingsByRestaurant(1), 1)
}

func TestLoad_FailureLeavesEmptyStateButClearsLoading(t *testing.T) {
	st := new(mockStore)
	boom := errors.New("store down")
	st.On("GetAllRestaurants", mock.Anything).Return(nil, boom)
	st.On("GetAllBookings", mock.Anything).Return(nil, boom)
	st.On("CurrentUser", mock.Anything).Return(nil, boom)

	a := New(st, nil, zerolog.New(io.Discard))
	a.Load(context.Background())

	assert.False(t, a.IsLoading())
	assert.Empty(t, a.Restaurants())
	assert.Nil(t, a.CurrentUser())
	st.AssertExpectations(t)
}

func TestLoad_PartialFailureKeepsWhatLoaded(t *testing.T) {
	st := new(mockStore)
	st.On("GetAllRestaurants", mock.Anything).Return([]models.Restaurant{{ID: 1, Name: "Seoul Table", Capacity: 50}}, nil)
	st.On("GetAllBookings", mock.Anything).Return(nil, errors.New("store down"))
	st.On("CurrentUser", mock.Anything).Return(nil, nil)

	a := New(st, nil, zerolog.New(io.Discard))
	a.Load(context.Background())

	assert.Len(t, a.Restaurants(), 1)
	assert.Empty(t, a.GetBookingsByRestaurant(1))
}

func TestAddBooking_InstantModeIsConfirmedImmediately(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	created, err := a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 4,
		Status: models.InitialStatus(models.ModeInstant),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, created.Status)
	assert.NotEmpty(t, created.ConfirmationNumber)
}

func TestAddBooking_ScheduledModeRequiresOwnerConfirm(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	created, err := a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 4,
		Status: models.InitialStatus(models.ModeScheduled),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	require.NoError(t, a.ConfirmBooking(ctx, created.ID))
	got := a.GetBookingsByRestaurant(1)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusConfirmed, got[0].Status)

	// Rejecting after a confirm is applied unconditionally; the state
	// machine in internal/booking is where policy-aware callers check.
	require.NoError(t, a.RejectBooking(ctx, created.ID))
	got = a.GetBookingsByRestaurant(1)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusRejected, got[0].Status)
}

func TestAddBooking_FailureLeavesLocalStateUnchanged(t *testing.T) {
	st := new(mockStore)
	st.On("CreateBooking", mock.Anything, mock.Anything).
		Return(models.Booking{}, errors.New("store down"))

	a := New(st, nil, zerolog.New(io.Discard))
	_, err := a.AddBooking(context.Background(), models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 2,
	})
	assert.Error(t, err)
	assert.Empty(t, a.GetBookingsByRestaurant(1))
}

func TestConfirmBooking_FailurePropagatesWithoutLocalMutation(t *testing.T) {
	st := new(mockStore)
	st.On("GetAllRestaurants", mock.Anything).Return([]models.Restaurant{}, nil)
	st.On("GetAllBookings", mock.Anything).Return([]models.Booking{
		{ID: "bk-1", RestaurantID: 1, Status: models.StatusPending, Date: "2024-06-01", Time: "18:00", PartySize: 2},
	}, nil)
	st.On("CurrentUser", mock.Anything).Return(nil, nil)
	st.On("ConfirmBooking", mock.Anything, "bk-1").
		Return(models.Booking{}, errors.New("store down"))

	a := New(st, nil, zerolog.New(io.Discard))
	a.Load(context.Background())

	err := a.ConfirmBooking(context.Background(), "bk-1")
	assert.Error(t, err)

	got := a.GetBookingsByRestaurant(1)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusPending, got[0].Status)
}

func TestDeleteBooking_RemovesLocally(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	created, err := a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2024-06-01", Time: "18:00", PartySize: 2,
	})
	require.NoError(t, err)

	require.NoError(t, a.DeleteBooking(ctx, created.ID))
	assert.Empty(t, a.GetBookingsByRestaurant(1))
}

func TestRestaurantMutations(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	created, err := a.AddRestaurant(ctx, models.Restaurant{Name: "Seoul Table", Capacity: 50})
	require.NoError(t, err)

	newCap := 70
	updated, err := a.UpdateRestaurant(ctx, created.ID, store.RestaurantUpdate{Capacity: &newCap})
	require.NoError(t, err)
	assert.Equal(t, 70, updated.Capacity)

	got, ok := a.GetRestaurant(created.ID)
	require.True(t, ok)
	assert.Equal(t, 70, got.Capacity)

	require.NoError(t, a.RefreshRestaurants(ctx))
	assert.Len(t, a.Restaurants(), 1)
}

func TestGetBookingsByUser(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	_, err := a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, UserID: "guest-1", Date: "2024-06-01", Time: "18:00", PartySize: 2,
	})
	require.NoError(t, err)
	_, err = a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, UserID: "guest-2", Date: "2024-06-01", Time: "19:00", PartySize: 2,
	})
	require.NoError(t, err)

	assert.Len(t, a.GetBookingsByUser("guest-1"), 1)
	assert.Len(t, a.GetBookingsByUser("guest-2"), 1)
	assert.Empty(t, a.GetBookingsByUser("guest-3"))
}

func TestBookings_PartitionsByTime(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	_, err := a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2030-01-01", Time: "18:00", PartySize: 2,
		Status: models.StatusConfirmed,
	})
	require.NoError(t, err)
	_, err = a.AddBooking(ctx, models.Booking{
		RestaurantID: 1, Date: "2020-01-01", Time: "18:00", PartySize: 2,
		Status: models.StatusConfirmed,
	})
	require.NoError(t, err)

	p := a.Bookings()
	assert.Len(t, p.Upcoming, 1)
	assert.Len(t, p.Past, 1)
}

func TestCapacitySnapshot(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	created, err := a.AddRestaurant(ctx, models.Restaurant{Name: "Seoul Table", Capacity: 50})
	require.NoError(t, err)

	_, err = a.AddBooking(ctx, models.Booking{
		RestaurantID: created.ID, Date: "2024-06-01", Time: "18:00", PartySize: 10,
		Status: models.StatusConfirmed,
	})
	require.NoError(t, err)

	snap := a.CapacitySnapshot(created.ID, "2024-06-01", capacity.Options{})
	assert.Equal(t, 50, snap.MaxCapacity)
	assert.Equal(t, 10, snap.Booked)
	assert.Equal(t, 40, snap.Available)

	// Unknown restaurant falls back to the default capacity.
	assert.Equal(t, DefaultCapacity, a.AvailableCapacity(999, "2024-06-01", capacity.Options{}))
}

func TestDayRolloverEventDoesNotPanic(t *testing.T) {
	bus := events.NewBus()
	a := New(store.NewMemory(), bus, zerolog.New(io.Discard))
	a.Load(context.Background())

	bus.PublishType(events.TypeDayRollover, "2024-06-02")
}
