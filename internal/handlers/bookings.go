package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/campuspool-backend/internal/engine"
	"github.com/campuspool/campuspool-backend/internal/services"
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// CreateBooking reserves seats on a ride for the caller
func CreateBooking(eng *engine.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID      uint `json:"rideId" binding:"required"`
			SeatsBooked int  `json:"seatsBooked" binding:"required,min=1"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := eng.CreateBooking(c.Request.Context(), userId, input.RideID, input.SeatsBooked)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		services.InvalidateRideCache(c.Request.Context())
		if ride, err := eng.GetRide(c.Request.Context(), booking.RideID); err == nil {
			hub.SendRideEvent("ride_seats_changed", services.RideEvent{
				RideID:         ride.ID,
				Status:         string(ride.Status),
				AvailableSeats: ride.AvailableSeats,
			})
		}

		c.JSON(201, gin.H{
			"id":          booking.ID,
			"rideId":      booking.RideID,
			"userId":      booking.UserID,
			"seatsBooked": booking.SeatsBooked,
			"status":      booking.Status,
			"totalPrice":  booking.TotalPrice,
			"bookedAt":    booking.CreatedAt,
		})
	}
}

// CancelBooking cancels the caller's booking and releases its seats
func CancelBooking(eng *engine.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := eng.CancelBooking(c.Request.Context(), userId, bookingId)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		services.InvalidateRideCache(c.Request.Context())
		if ride, err := eng.GetRide(c.Request.Context(), booking.RideID); err == nil {
			hub.SendRideEvent("ride_seats_changed", services.RideEvent{
				RideID:         ride.ID,
				Status:         string(ride.Status),
				AvailableSeats: ride.AvailableSeats,
			})
		}

		c.JSON(200, gin.H{
			"id":          booking.ID,
			"rideId":      booking.RideID,
			"userId":      booking.UserID,
			"seatsBooked": booking.SeatsBooked,
			"status":      booking.Status,
			"totalPrice":  booking.TotalPrice,
			"bookedAt":    booking.CreatedAt,
			"cancelledAt": booking.CancelledAt,
		})
	}
}

// GetMyBookings retrieves all bookings made by the caller
func GetMyBookings(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookings, err := eng.ListUserBookings(c.Request.Context(), userId)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// GetRideBookings retrieves the bookings on a ride, creator only
func GetRideBookings(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		rideId, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		bookings, err := eng.ListRideBookings(c.Request.Context(), rideId, userId)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		c.JSON(200, bookings)
	}
}
