package models

import (
	"time"

	"gorm.io/gorm"
)

type VehicleType string

const (
	VehicleTypeCar  VehicleType = "car"
	VehicleTypeBike VehicleType = "bike"
	VehicleTypeAuto VehicleType = "auto"
	VehicleTypeBus  VehicleType = "bus"
)

type RideStatus string

const (
	RideStatusOpen      RideStatus = "OPEN"
	RideStatusFull      RideStatus = "FULL"
	RideStatusCancelled RideStatus = "CANCELLED"
)

type Ride struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"-"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	CreatorID      uint           `json:"creatorId" gorm:"not null;index"`
	Creator        *User          `json:"creator,omitempty"`
	From           string         `json:"from" gorm:"column:from_location;not null"`
	To             string         `json:"to" gorm:"column:to_location;not null"`
	Date           string         `json:"date" gorm:"not null"`
	Time           string         `json:"time" gorm:"not null"`
	VehicleType    VehicleType    `json:"vehicleType" gorm:"not null"`
	TotalSeats     int            `json:"totalSeats" gorm:"not null"`
	AvailableSeats int            `json:"availableSeats" gorm:"not null"`
	PricePerHead   float64        `json:"pricePerHead" gorm:"not null"`
	ContactLink    string         `json:"contactLink"`
	Note           string         `json:"note"`
	Status         RideStatus     `json:"status" gorm:"not null;default:'OPEN'"`
	// Set when the creator overrides the status by hand; a manual status is
	// not reverted by seat-count changes until a seat exhaustion contradicts it.
	StatusManuallySet bool `json:"-"`
}
