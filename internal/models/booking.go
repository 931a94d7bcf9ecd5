package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID uint `json:"id" gorm:"primarykey"`
	// Creation time doubles as the booking timestamp on the wire.
	CreatedAt   time.Time      `json:"bookedAt"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	RideID      uint           `json:"rideId" gorm:"not null;index"`
	UserID      uint           `json:"userId" gorm:"not null;index"`
	SeatsBooked int            `json:"seatsBooked" gorm:"not null"`
	Status      BookingStatus  `json:"status" gorm:"not null;default:'BOOKED'"`
	// Price is snapshotted at booking time; later ride price edits never
	// change an existing booking.
	TotalPrice  float64    `json:"totalPrice" gorm:"not null"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}
