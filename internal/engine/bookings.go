package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/store"
)

// CreateBooking reserves seats on a ride. The seat decrement and its
// preconditions run inside a single AtomicUpdate call, so two concurrent
// bookings against the last remaining seats cannot both succeed. The booking
// record is inserted afterwards; the ride and the booking are different
// storage keys, so the pair is a saga with a compensating increment if the
// insert fails.
func (e *Engine) CreateBooking(ctx context.Context, bookerID, rideID uint, seatsBooked int) (*models.Booking, error) {
	if seatsBooked < 1 {
		return nil, fmt.Errorf("%w: seatsBooked must be at least 1", ErrInvalidInput)
	}

	var pricePerHead float64
	_, err := e.rides.AtomicUpdate(ctx, rideID, func(ride *models.Ride) error {
		if ride.CreatorID == bookerID {
			return fmt.Errorf("%w: cannot book your own ride", ErrInvalidOperation)
		}
		if ride.Status != models.RideStatusOpen {
			return fmt.Errorf("%w: ride is %s", ErrInvalidOperation, ride.Status)
		}
		if seatsBooked > ride.AvailableSeats {
			return fmt.Errorf("%w: %d seats requested, %d available", ErrInsufficientCapacity, seatsBooked, ride.AvailableSeats)
		}
		// Price snapshot before the mutation; later price edits must not
		// change this booking.
		pricePerHead = ride.PricePerHead
		ride.AvailableSeats -= seatsBooked
		deriveStatus(ride)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
		}
		return nil, err
	}

	booking := &models.Booking{
		RideID:      rideID,
		UserID:      bookerID,
		SeatsBooked: seatsBooked,
		Status:      models.BookingStatusBooked,
		TotalPrice:  float64(seatsBooked) * pricePerHead,
	}
	if err := e.bookings.Insert(ctx, booking); err != nil {
		// Compensating increment: the decrement already committed and must
		// be undone before surfacing the failure.
		if _, cerr := e.rides.AtomicUpdate(ctx, rideID, func(ride *models.Ride) error {
			ride.AvailableSeats += seatsBooked
			if ride.AvailableSeats > ride.TotalSeats {
				ride.AvailableSeats = ride.TotalSeats
			}
			deriveStatus(ride)
			return nil
		}); cerr != nil && !errors.Is(cerr, store.ErrNotFound) {
			log.Printf("Failed to compensate seat decrement on ride %d: %v", rideID, cerr)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	// The ride can be deleted between the seat decrement and the insert. If
	// the row is gone the cascade-cancel sweep may already have run, so the
	// booking cannot be left BOOKED; cancel it and surface the missing ride.
	if _, verr := e.rides.Get(ctx, rideID); errors.Is(verr, store.ErrNotFound) {
		now := time.Now()
		if _, cerr := e.bookings.AtomicUpdate(ctx, booking.ID, func(b *models.Booking) error {
			if b.Status == models.BookingStatusCancelled {
				return nil
			}
			b.Status = models.BookingStatusCancelled
			b.CancelledAt = &now
			return nil
		}); cerr != nil && !errors.Is(cerr, store.ErrNotFound) {
			log.Printf("Failed to cancel booking %d after ride %d was deleted: %v", booking.ID, rideID, cerr)
		}
		return nil, fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
	}
	return booking, nil
}

// CancelBooking moves a booking to CANCELLED and restores its seats to the
// ride. Only the booking owner may cancel, and only once: a second cancel is
// rejected, not silently accepted. A ride deleted in the meantime is
// tolerated, the cancellation still succeeds and the restore is skipped.
func (e *Engine) CancelBooking(ctx context.Context, callerID, bookingID uint) (*models.Booking, error) {
	now := time.Now()
	booking, err := e.bookings.AtomicUpdate(ctx, bookingID, func(booking *models.Booking) error {
		if booking.UserID != callerID {
			return fmt.Errorf("%w: only the booking owner can cancel it", ErrForbidden)
		}
		if booking.Status == models.BookingStatusCancelled {
			return fmt.Errorf("%w: booking already cancelled", ErrInvalidOperation)
		}
		booking.Status = models.BookingStatusCancelled
		booking.CancelledAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, err
	}

	if _, err := e.rides.AtomicUpdate(ctx, booking.RideID, func(ride *models.Ride) error {
		ride.AvailableSeats += booking.SeatsBooked
		if ride.AvailableSeats > ride.TotalSeats {
			ride.AvailableSeats = ride.TotalSeats
		}
		deriveStatus(ride)
		return nil
	}); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("restore seats on ride %d: %w", booking.RideID, err)
	}
	return booking, nil
}
