package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/store"
)

func TestCreateRide(t *testing.T) {
	eng, _ := newTestEngine(t)

	ride := createTestRide(t, eng, 4, 75)
	assert.Equal(t, creatorID, ride.CreatorID)
	assert.Equal(t, 4, ride.TotalSeats)
	assert.Equal(t, 4, ride.AvailableSeats)
	assert.Equal(t, models.RideStatusOpen, ride.Status)
}

func TestCreateRideDefendsInvariants(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateRide(ctx, creatorID, RideInput{TotalSeats: 0, PricePerHead: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = eng.CreateRide(ctx, creatorID, RideInput{TotalSeats: 2, PricePerHead: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateRideOwnership(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 2, 100)

	note := "leaving from the back gate"
	_, err := eng.UpdateRide(ctx, ride.ID, otherID, RidePatch{Note: &note}, PreserveStatus)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = eng.UpdateRide(ctx, uint(999), creatorID, RidePatch{Note: &note}, PreserveStatus)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := eng.UpdateRide(ctx, ride.ID, creatorID, RidePatch{Note: &note}, PreserveStatus)
	require.NoError(t, err)
	assert.Equal(t, note, updated.Note)
}

func TestUpdateRideRejectsNegativePrice(t *testing.T) {
	eng, _ := newTestEngine(t)
	ride := createTestRide(t, eng, 2, 100)

	bad := -5.0
	_, err := eng.UpdateRide(context.Background(), ride.ID, creatorID, RidePatch{PricePerHead: &bad}, PreserveStatus)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// Booking the last seat flips OPEN to FULL; cancelling a booking on a
// seat-derived FULL ride flips it back to OPEN.
func TestStatusDerivation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 1, 100)

	booking, err := eng.CreateBooking(ctx, bookerID, ride.ID, 1)
	require.NoError(t, err)

	got, err := eng.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusFull, got.Status)

	_, err = eng.CancelBooking(ctx, bookerID, booking.ID)
	require.NoError(t, err)

	got, err = eng.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusOpen, got.Status)
}

// A status the creator set by hand is not reverted by seat restoration.
func TestManualStatusOverridePersists(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 3, 100)

	booking, err := eng.CreateBooking(ctx, bookerID, ride.ID, 1)
	require.NoError(t, err)

	cancelled := models.RideStatusCancelled
	_, err = eng.UpdateRide(ctx, ride.ID, creatorID, RidePatch{Status: &cancelled}, PreserveStatus)
	require.NoError(t, err)

	// The seat restoration from this cancellation must not reopen the ride
	_, err = eng.CancelBooking(ctx, bookerID, booking.ID)
	require.NoError(t, err)

	got, err := eng.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCancelled, got.Status)
	assert.Equal(t, 3, got.AvailableSeats)
}

// A ride manually set to FULL with seats remaining blocks new bookings and
// stays FULL through seat restorations.
func TestManualFullBlocksBookings(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 4, 100)

	booking, err := eng.CreateBooking(ctx, bookerID, ride.ID, 1)
	require.NoError(t, err)

	full := models.RideStatusFull
	_, err = eng.UpdateRide(ctx, ride.ID, creatorID, RidePatch{Status: &full}, PreserveStatus)
	require.NoError(t, err)

	_, err = eng.CreateBooking(ctx, otherID, ride.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = eng.CancelBooking(ctx, bookerID, booking.ID)
	require.NoError(t, err)

	got, err := eng.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusFull, got.Status)
	assert.Equal(t, 4, got.AvailableSeats)
}

// A seat-exhausting booking contradicts an earlier manual override, so a
// later cancellation reopens the ride.
func TestSeatExhaustionClearsManualOverride(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 2, 100)

	open := models.RideStatusOpen
	_, err := eng.UpdateRide(ctx, ride.ID, creatorID, RidePatch{Status: &open}, PreserveStatus)
	require.NoError(t, err)

	booking, err := eng.CreateBooking(ctx, bookerID, ride.ID, 2)
	require.NoError(t, err)

	got, err := eng.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusFull, got.Status)

	_, err = eng.CancelBooking(ctx, bookerID, booking.ID)
	require.NoError(t, err)

	got, err = eng.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusOpen, got.Status)
}

func TestDeleteRideCascadeCancelsBookings(t *testing.T) {
	eng, st := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 4, 100)

	b1, err := eng.CreateBooking(ctx, bookerID, ride.ID, 1)
	require.NoError(t, err)
	b2, err := eng.CreateBooking(ctx, otherID, ride.ID, 2)
	require.NoError(t, err)
	_, err = eng.CancelBooking(ctx, otherID, b2.ID)
	require.NoError(t, err)

	err = eng.DeleteRide(ctx, ride.ID, creatorID)
	require.NoError(t, err)

	_, err = eng.GetRide(ctx, ride.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Every booking ends up CANCELLED; none dangles in BOOKED state
	bookings, err := st.Bookings.ListByRide(ctx, ride.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, models.BookingStatusCancelled, b.Status)
		assert.NotNil(t, b.CancelledAt)
	}

	// Cascade-cancelled bookings cannot be cancelled again by their owners
	_, err = eng.CancelBooking(ctx, bookerID, b1.ID)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

// gatedBookings wraps a BookingStore and holds Insert open until released,
// simulating a booking whose seat decrement committed while its insert is
// still in flight.
type gatedBookings struct {
	store.BookingStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatedBookings) Insert(ctx context.Context, booking *models.Booking) error {
	s.entered <- struct{}{}
	<-s.release
	return s.BookingStore.Insert(ctx, booking)
}

// A booking whose insert lands after the ride was deleted must not stay
// BOOKED against the missing ride; the caller sees NotFound instead.
func TestDeleteRideDoesNotStrandRacingBooking(t *testing.T) {
	mem := store.NewMemory()
	gb := &gatedBookings{
		BookingStore: mem.Bookings,
		entered:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	eng := New(&store.Store{Rides: mem.Rides, Bookings: gb})
	ctx := context.Background()
	ride := createTestRide(t, eng, 2, 100)

	done := make(chan error, 1)
	go func() {
		_, err := eng.CreateBooking(ctx, bookerID, ride.ID, 1)
		done <- err
	}()

	// The seat decrement has committed; the booking insert is still open.
	<-gb.entered

	require.NoError(t, eng.DeleteRide(ctx, ride.ID, creatorID))
	_, err := eng.GetRide(ctx, ride.ID)
	require.ErrorIs(t, err, ErrNotFound)

	close(gb.release)
	assert.ErrorIs(t, <-done, ErrNotFound)

	bookings, err := mem.Bookings.ListByRide(ctx, ride.ID)
	require.NoError(t, err)
	for _, b := range bookings {
		assert.Equal(t, models.BookingStatusCancelled, b.Status)
		assert.NotNil(t, b.CancelledAt)
	}
}

// Once DeleteRide has closed the ride, a fresh booking attempt is rejected
// before any seat decrement commits.
func TestDeleteRideClosesInventoryFirst(t *testing.T) {
	eng, st := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 2, 100)

	err := eng.DeleteRide(ctx, ride.ID, creatorID)
	require.NoError(t, err)

	_, err = eng.CreateBooking(ctx, bookerID, ride.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	bookings, err := st.Bookings.ListByRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestDeleteRideAuthorization(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 2, 100)

	err := eng.DeleteRide(ctx, ride.ID, otherID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = eng.DeleteRide(ctx, uint(999), creatorID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRidesNewestFirstWithFilters(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	r1, err := eng.CreateRide(ctx, creatorID, RideInput{
		From: "Hostel Gate", To: "Airport", Date: "2025-11-20", Time: "06:00",
		VehicleType: models.VehicleTypeCar, TotalSeats: 3, PricePerHead: 300,
	})
	require.NoError(t, err)
	r2, err := eng.CreateRide(ctx, creatorID, RideInput{
		From: "Main Campus", To: "City Station", Date: "2025-11-21", Time: "09:00",
		VehicleType: models.VehicleTypeAuto, TotalSeats: 2, PricePerHead: 80,
	})
	require.NoError(t, err)

	all, err := eng.ListRides(ctx, store.RideFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, r2.ID, all[0].ID)
	assert.Equal(t, r1.ID, all[1].ID)

	byVehicle, err := eng.ListRides(ctx, store.RideFilter{VehicleType: models.VehicleTypeAuto})
	require.NoError(t, err)
	require.Len(t, byVehicle, 1)
	assert.Equal(t, r2.ID, byVehicle[0].ID)

	byTo, err := eng.ListRides(ctx, store.RideFilter{To: "airport"})
	require.NoError(t, err)
	require.Len(t, byTo, 1)
	assert.Equal(t, r1.ID, byTo[0].ID)

	byDate, err := eng.ListRides(ctx, store.RideFilter{Date: "2025-11-20"})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, r1.ID, byDate[0].ID)
}

func TestListRideBookingsCreatorOnly(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	ride := createTestRide(t, eng, 2, 100)

	_, err := eng.CreateBooking(ctx, bookerID, ride.ID, 1)
	require.NoError(t, err)

	_, err = eng.ListRideBookings(ctx, ride.ID, bookerID)
	assert.ErrorIs(t, err, ErrForbidden)

	bookings, err := eng.ListRideBookings(ctx, ride.ID, creatorID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}
