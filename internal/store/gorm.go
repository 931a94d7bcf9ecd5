package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campuspool/campuspool-backend/internal/models"
)

// NewGorm returns a Store backed by a GORM database. AtomicUpdate takes a
// SELECT ... FOR UPDATE row lock inside a transaction, so all seat-count
// mutations on one ride serialize at the database.
func NewGorm(db *gorm.DB) *Store {
	return &Store{
		Rides:    &gormRides{db: db},
		Bookings: &gormBookings{db: db},
		Users:    &gormUsers{db: db},
	}
}

func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type gormRides struct {
	db *gorm.DB
}

func (s *gormRides) Get(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.db.WithContext(ctx).Preload("Creator").First(&ride, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &ride, nil
}

func (s *gormRides) List(ctx context.Context, filter RideFilter) ([]models.Ride, error) {
	query := s.db.WithContext(ctx).Preload("Creator").Order("created_at DESC, id DESC")

	if filter.From != "" {
		query = query.Where("LOWER(from_location) LIKE LOWER(?)", "%"+strings.ToLower(filter.From)+"%")
	}
	if filter.To != "" {
		query = query.Where("LOWER(to_location) LIKE LOWER(?)", "%"+strings.ToLower(filter.To)+"%")
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.VehicleType != "" {
		query = query.Where("vehicle_type = ?", filter.VehicleType)
	}
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}

	var rides []models.Ride
	if err := query.Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func (s *gormRides) Insert(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Create(ride).Error
}

func (s *gormRides) AtomicUpdate(ctx context.Context, id uint, mutate func(*models.Ride) error) (*models.Ride, error) {
	var updated *models.Ride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ride models.Ride
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ride, id).Error; err != nil {
			return translateGormError(err)
		}
		if err := mutate(&ride); err != nil {
			return err
		}
		if err := tx.Save(&ride).Error; err != nil {
			return err
		}
		updated = &ride
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gormRides) Delete(ctx context.Context, id uint) error {
	// Hard delete: once a ride is removed its row is gone, not soft-deleted.
	result := s.db.WithContext(ctx).Unscoped().Delete(&models.Ride{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormBookings struct {
	db *gorm.DB
}

func (s *gormBookings) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &booking, nil
}

func (s *gormBookings) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *gormBookings) ListByRide(ctx context.Context, rideID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.WithContext(ctx).
		Where("ride_id = ?", rideID).
		Order("id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *gormBookings) Insert(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Create(booking).Error
}

func (s *gormBookings) AtomicUpdate(ctx context.Context, id uint, mutate func(*models.Booking) error) (*models.Booking, error) {
	var updated *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error; err != nil {
			return translateGormError(err)
		}
		if err := mutate(&booking); err != nil {
			return err
		}
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		updated = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type gormUsers struct {
	db *gorm.DB
}

func (s *gormUsers) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (s *gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (s *gormUsers) Insert(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *gormUsers) AtomicUpdate(ctx context.Context, id uint, mutate func(*models.User) error) (*models.User, error) {
	var updated *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
			return translateGormError(err)
		}
		if err := mutate(&user); err != nil {
			return err
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
