// Package store defines the entity storage contract the booking engine is
// written against, together with a GORM/Postgres implementation and an
// in-memory one. AtomicUpdate is the only primitive with cross-call ordering
// semantics: it applies the mutator to the current value and persists the
// result as a single indivisible step relative to any other AtomicUpdate or
// Insert on the same id.
package store

import (
	"context"
	"errors"

	"github.com/campuspool/campuspool-backend/internal/models"
)

// ErrNotFound is returned when a referenced id does not exist. Callers decide
// whether that is an error condition.
var ErrNotFound = errors.New("record not found")

// RideFilter narrows ride listings. Zero fields match everything; string
// matches are case-insensitive substring matches except Date, which is exact.
type RideFilter struct {
	From        string
	To          string
	Date        string
	VehicleType models.VehicleType
	CreatorID   uint
}

type RideStore interface {
	Get(ctx context.Context, id uint) (*models.Ride, error)
	// List returns matching rides ordered newest-created-first.
	List(ctx context.Context, filter RideFilter) ([]models.Ride, error)
	Insert(ctx context.Context, ride *models.Ride) error
	// AtomicUpdate locks the ride, applies mutate, and persists the result.
	// If mutate returns an error nothing is written and that error is
	// returned unchanged.
	AtomicUpdate(ctx context.Context, id uint, mutate func(*models.Ride) error) (*models.Ride, error)
	// Delete removes the ride permanently.
	Delete(ctx context.Context, id uint) error
}

type BookingStore interface {
	Get(ctx context.Context, id uint) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	ListByRide(ctx context.Context, rideID uint) ([]models.Booking, error)
	Insert(ctx context.Context, booking *models.Booking) error
	AtomicUpdate(ctx context.Context, id uint, mutate func(*models.Booking) error) (*models.Booking, error)
}

type UserStore interface {
	Get(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	AtomicUpdate(ctx context.Context, id uint, mutate func(*models.User) error) (*models.User, error)
}

// Store bundles the per-entity stores a deployment provides.
type Store struct {
	Rides    RideStore
	Bookings BookingStore
	Users    UserStore
}
