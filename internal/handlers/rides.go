package handlers

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/campuspool-backend/internal/engine"
	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/services"
	"github.com/campuspool/campuspool-backend/internal/store"
)

// CreateRide handles the creation of a new ride listing
func CreateRide(eng *engine.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			From         string  `json:"from" binding:"required"`
			To           string  `json:"to" binding:"required"`
			Date         string  `json:"date" binding:"required"`
			Time         string  `json:"time" binding:"required"`
			VehicleType  string  `json:"vehicleType" binding:"required,oneof=car bike auto bus"`
			TotalSeats   int     `json:"totalSeats" binding:"required,min=1"`
			PricePerHead float64 `json:"pricePerHead" binding:"min=0"`
			ContactLink  string  `json:"contactLink"`
			Note         string  `json:"note"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := eng.CreateRide(c.Request.Context(), userId, engine.RideInput{
			From:         input.From,
			To:           input.To,
			Date:         input.Date,
			Time:         input.Time,
			VehicleType:  models.VehicleType(input.VehicleType),
			TotalSeats:   input.TotalSeats,
			PricePerHead: input.PricePerHead,
			ContactLink:  input.ContactLink,
			Note:         input.Note,
		})
		if err != nil {
			respondEngineError(c, err)
			return
		}

		services.InvalidateRideCache(c.Request.Context())
		hub.SendRideEvent("ride_created", services.RideEvent{
			RideID:         ride.ID,
			Status:         string(ride.Status),
			AvailableSeats: ride.AvailableSeats,
		})

		c.JSON(201, ride)
	}
}

// GetRides retrieves rides with optional filters, newest first
func GetRides(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.RideFilter{
			From:        c.Query("from"),
			To:          c.Query("to"),
			Date:        c.Query("date"),
			VehicleType: models.VehicleType(c.Query("vehicleType")),
		}

		// Only the unfiltered listing is cached; filtered queries go to the store.
		unfiltered := filter == (store.RideFilter{})
		if unfiltered {
			if rides, err := services.GetCachedRideList(c.Request.Context()); err == nil {
				c.JSON(200, rides)
				return
			}
		}

		rides, err := eng.ListRides(c.Request.Context(), filter)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		if unfiltered {
			if err := services.CacheRideList(c.Request.Context(), rides); err != nil {
				log.Printf("Failed to cache ride listing: %v", err)
			}
		}

		c.JSON(200, rides)
	}
}

// GetMyRides retrieves all rides created by the caller
func GetMyRides(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		rides, err := eng.ListRides(c.Request.Context(), store.RideFilter{CreatorID: userId})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, rides)
	}
}

// GetRide retrieves a single ride
func GetRide(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideId, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		ride, err := eng.GetRide(c.Request.Context(), rideId)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		c.JSON(200, ride)
	}
}

// UpdateRide applies a creator edit, including manual status changes
func UpdateRide(eng *engine.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideId, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			From         *string  `json:"from"`
			To           *string  `json:"to"`
			Date         *string  `json:"date"`
			Time         *string  `json:"time"`
			VehicleType  *string  `json:"vehicleType" binding:"omitempty,oneof=car bike auto bus"`
			PricePerHead *float64 `json:"pricePerHead"`
			ContactLink  *string  `json:"contactLink"`
			Note         *string  `json:"note"`
			Status       *string  `json:"status" binding:"omitempty,oneof=OPEN FULL CANCELLED"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		patch := engine.RidePatch{
			From:         input.From,
			To:           input.To,
			Date:         input.Date,
			Time:         input.Time,
			PricePerHead: input.PricePerHead,
			ContactLink:  input.ContactLink,
			Note:         input.Note,
		}
		if input.VehicleType != nil {
			vt := models.VehicleType(*input.VehicleType)
			patch.VehicleType = &vt
		}
		if input.Status != nil {
			st := models.RideStatus(*input.Status)
			patch.Status = &st
		}

		ride, err := eng.UpdateRide(c.Request.Context(), rideId, userId, patch, engine.PreserveStatus)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		services.InvalidateRideCache(c.Request.Context())
		hub.SendRideEvent("ride_updated", services.RideEvent{
			RideID:         ride.ID,
			Status:         string(ride.Status),
			AvailableSeats: ride.AvailableSeats,
		})

		c.JSON(200, ride)
	}
}

// DeleteRide removes a ride; its active bookings are cascade-cancelled
func DeleteRide(eng *engine.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideId, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		if err := eng.DeleteRide(c.Request.Context(), rideId, userId); err != nil {
			respondEngineError(c, err)
			return
		}

		services.InvalidateRideCache(c.Request.Context())
		hub.SendRideEvent("ride_deleted", services.RideEvent{RideID: rideId})

		c.JSON(200, gin.H{"message": "Ride successfully deleted"})
	}
}
