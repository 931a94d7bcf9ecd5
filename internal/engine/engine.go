// Package engine owns ride seat inventory and booking consistency: ride
// lifecycle (creation, edits, status derivation, deletion), booking creation
// and cancellation as atomic inventory transitions, and read-only listing.
// It is written against the store contract and carries no transport or
// persistence concerns of its own.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/store"
)

type Engine struct {
	rides    store.RideStore
	bookings store.BookingStore
}

func New(s *store.Store) *Engine {
	return &Engine{rides: s.Rides, bookings: s.Bookings}
}

// GetRide returns a single ride.
func (e *Engine) GetRide(ctx context.Context, rideID uint) (*models.Ride, error) {
	ride, err := e.rides.Get(ctx, rideID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
		}
		return nil, err
	}
	return ride, nil
}

// ListRides returns rides matching the filter, newest created first.
func (e *Engine) ListRides(ctx context.Context, filter store.RideFilter) ([]models.Ride, error) {
	return e.rides.List(ctx, filter)
}

// ListUserBookings returns every booking the user has made, including
// cancelled ones.
func (e *Engine) ListUserBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	return e.bookings.ListByUser(ctx, userID)
}

// ListRideBookings returns the bookings on a ride. Only the ride's creator
// may see them.
func (e *Engine) ListRideBookings(ctx context.Context, rideID, callerID uint) ([]models.Booking, error) {
	ride, err := e.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.CreatorID != callerID {
		return nil, fmt.Errorf("%w: only the ride creator can list its bookings", ErrForbidden)
	}
	return e.bookings.ListByRide(ctx, rideID)
}
