package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/store"
)

// StatusMode selects how UpdateRide treats the ride status after applying a
// patch. Creator-initiated edits preserve whatever the patch says; seat-count
// driven updates re-derive it from the seat counters.
type StatusMode int

const (
	// PreserveStatus applies patch fields as given, including an explicit
	// status, and marks an explicit status as a manual override.
	PreserveStatus StatusMode = iota
	// DeriveStatus re-derives the status from the seat counters after the
	// patch is applied.
	DeriveStatus
)

type RideInput struct {
	From         string
	To           string
	Date         string
	Time         string
	VehicleType  models.VehicleType
	TotalSeats   int
	PricePerHead float64
	ContactLink  string
	Note         string
}

// RidePatch carries creator edits; nil fields are left untouched.
type RidePatch struct {
	From         *string
	To           *string
	Date         *string
	Time         *string
	VehicleType  *models.VehicleType
	PricePerHead *float64
	ContactLink  *string
	Note         *string
	Status       *models.RideStatus
}

// deriveStatus is the single status-derivation rule. Booking and cancellation
// paths must route seat-driven status changes through here so a manual
// override is never silently reverted: CANCELLED is terminal against seat
// changes, seat exhaustion always forces FULL (contradicting any manual
// status), and FULL reverts to OPEN only when it was seat-derived.
func deriveStatus(ride *models.Ride) {
	if ride.Status == models.RideStatusCancelled {
		return
	}
	if ride.AvailableSeats == 0 {
		ride.Status = models.RideStatusFull
		ride.StatusManuallySet = false
		return
	}
	if ride.Status == models.RideStatusFull && !ride.StatusManuallySet {
		ride.Status = models.RideStatusOpen
	}
}

// CreateRide publishes a new ride for the creator with the full seat
// inventory available. Field-level validation happens upstream; the two
// load-bearing invariants are still defended here.
func (e *Engine) CreateRide(ctx context.Context, creatorID uint, input RideInput) (*models.Ride, error) {
	if input.TotalSeats < 1 {
		return nil, fmt.Errorf("%w: totalSeats must be at least 1", ErrInvalidInput)
	}
	if input.PricePerHead < 0 {
		return nil, fmt.Errorf("%w: pricePerHead cannot be negative", ErrInvalidInput)
	}

	ride := &models.Ride{
		CreatorID:      creatorID,
		From:           input.From,
		To:             input.To,
		Date:           input.Date,
		Time:           input.Time,
		VehicleType:    input.VehicleType,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		PricePerHead:   input.PricePerHead,
		ContactLink:    input.ContactLink,
		Note:           input.Note,
		Status:         models.RideStatusOpen,
	}
	if err := e.rides.Insert(ctx, ride); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}
	return ride, nil
}

// UpdateRide applies a creator edit to a ride. Only the creator may update
// it. An explicit status in the patch is honored in PreserveStatus mode and
// recorded as a manual override; in DeriveStatus mode the status is
// re-derived from the seat counters instead.
func (e *Engine) UpdateRide(ctx context.Context, rideID, callerID uint, patch RidePatch, mode StatusMode) (*models.Ride, error) {
	updated, err := e.rides.AtomicUpdate(ctx, rideID, func(ride *models.Ride) error {
		if ride.CreatorID != callerID {
			return fmt.Errorf("%w: only the ride creator can update it", ErrForbidden)
		}
		if patch.PricePerHead != nil && *patch.PricePerHead < 0 {
			return fmt.Errorf("%w: pricePerHead cannot be negative", ErrInvalidInput)
		}

		if patch.From != nil {
			ride.From = *patch.From
		}
		if patch.To != nil {
			ride.To = *patch.To
		}
		if patch.Date != nil {
			ride.Date = *patch.Date
		}
		if patch.Time != nil {
			ride.Time = *patch.Time
		}
		if patch.VehicleType != nil {
			ride.VehicleType = *patch.VehicleType
		}
		if patch.PricePerHead != nil {
			ride.PricePerHead = *patch.PricePerHead
		}
		if patch.ContactLink != nil {
			ride.ContactLink = *patch.ContactLink
		}
		if patch.Note != nil {
			ride.Note = *patch.Note
		}

		switch mode {
		case PreserveStatus:
			if patch.Status != nil {
				ride.Status = *patch.Status
				ride.StatusManuallySet = true
			}
		case DeriveStatus:
			deriveStatus(ride)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
		}
		return nil, err
	}
	return updated, nil
}

// DeleteRide removes a ride permanently. The ride is first closed so no new
// seat decrement can commit, then every booking still in BOOKED state is
// cascade-cancelled, then the row is removed. A booking whose decrement
// committed before the close but whose insert raced the cascade is caught by
// a second pass after the removal, or by the existence re-check at the end of
// CreateBooking; no booking stays BOOKED against a ride that no longer
// exists. Seats are not restored: the inventory is destroyed with the ride.
func (e *Engine) DeleteRide(ctx context.Context, rideID, callerID uint) error {
	_, err := e.rides.AtomicUpdate(ctx, rideID, func(ride *models.Ride) error {
		if ride.CreatorID != callerID {
			return fmt.Errorf("%w: only the ride creator can delete it", ErrForbidden)
		}
		ride.Status = models.RideStatusCancelled
		ride.StatusManuallySet = true
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
		}
		return err
	}

	if err := e.cancelRideBookings(ctx, rideID); err != nil {
		return err
	}

	if err := e.rides.Delete(ctx, rideID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
		}
		return err
	}

	// Sweep once more now the row is gone: an insert that landed after the
	// first pass is cancelled here.
	return e.cancelRideBookings(ctx, rideID)
}

func (e *Engine) cancelRideBookings(ctx context.Context, rideID uint) error {
	bookings, err := e.bookings.ListByRide(ctx, rideID)
	if err != nil {
		return fmt.Errorf("list bookings for ride %d: %w", rideID, err)
	}
	now := time.Now()
	for _, b := range bookings {
		if b.Status != models.BookingStatusBooked {
			continue
		}
		if _, err := e.bookings.AtomicUpdate(ctx, b.ID, func(booking *models.Booking) error {
			if booking.Status == models.BookingStatusCancelled {
				return nil
			}
			booking.Status = models.BookingStatusCancelled
			booking.CancelledAt = &now
			return nil
		}); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("cascade cancel booking %d: %w", b.ID, err)
		}
	}
	return nil
}
