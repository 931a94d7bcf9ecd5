package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspool/campuspool-backend/internal/models"
)

func TestMemoryRideAtomicUpdateNoLostUpdates(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	ride := &models.Ride{
		CreatorID:      1,
		TotalSeats:     1000,
		AvailableSeats: 1000,
		Status:         models.RideStatusOpen,
	}
	require.NoError(t, st.Rides.Insert(ctx, ride))

	const workers = 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Rides.AtomicUpdate(ctx, ride.ID, func(r *models.Ride) error {
				r.AvailableSeats--
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := st.Rides.Get(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000-workers, got.AvailableSeats)
}

func TestMemoryAtomicUpdateMutatorErrorAborts(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	ride := &models.Ride{CreatorID: 1, TotalSeats: 2, AvailableSeats: 2, Status: models.RideStatusOpen}
	require.NoError(t, st.Rides.Insert(ctx, ride))

	sentinel := errors.New("abort")
	_, err := st.Rides.AtomicUpdate(ctx, ride.ID, func(r *models.Ride) error {
		r.AvailableSeats = 0
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	// Nothing was written
	got, err := st.Rides.Get(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)
}

func TestMemoryNotFound(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	_, err := st.Rides.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Rides.AtomicUpdate(ctx, 42, func(r *models.Ride) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.Rides.Delete(ctx, 42), ErrNotFound)

	_, err = st.Bookings.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	ride := &models.Ride{CreatorID: 1, TotalSeats: 4, AvailableSeats: 4, Status: models.RideStatusOpen}
	require.NoError(t, st.Rides.Insert(ctx, ride))

	got, err := st.Rides.Get(ctx, ride.ID)
	require.NoError(t, err)
	got.AvailableSeats = 0

	again, err := st.Rides.Get(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, again.AvailableSeats)
}

func TestMemoryBookingListsAndUsers(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.Bookings.Insert(ctx, &models.Booking{RideID: 1, UserID: 7, SeatsBooked: 1, Status: models.BookingStatusBooked}))
	require.NoError(t, st.Bookings.Insert(ctx, &models.Booking{RideID: 1, UserID: 8, SeatsBooked: 2, Status: models.BookingStatusBooked}))
	require.NoError(t, st.Bookings.Insert(ctx, &models.Booking{RideID: 2, UserID: 7, SeatsBooked: 1, Status: models.BookingStatusBooked}))

	byRide, err := st.Bookings.ListByRide(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byRide, 2)

	byUser, err := st.Bookings.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	user := &models.User{Name: "Asha", Email: "asha@example.com", Password: "x"}
	require.NoError(t, st.Users.Insert(ctx, user))

	byEmail, err := st.Users.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}
