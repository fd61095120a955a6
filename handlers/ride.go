package handlers

import (
	"net/http"

	"campusride/middleware"
	"campusride/models"
	rideSvc "campusride/services/ride"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PublishRideHandler creates a ride offer for an approved driver.
func PublishRideHandler(svc rideSvc.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req rideSvc.PublishRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		ride, err := svc.Publish(c.Request.Context(), userID, req)
		if err != nil {
			logger.Warn("Failed to publish ride", zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ride)
	}
}

// GetRideHandler returns one ride by id.
func GetRideHandler(svc rideSvc.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ride, err := svc.GetRide(c.Param("id"))
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

// SearchRidesHandler lists published upcoming rides matching query filters.
func SearchRidesHandler(svc rideSvc.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q models.RideSearchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
			return
		}
		rides, err := svc.Search(q)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rides": rides})
	}
}

// ListMyRidesHandler lists the caller's published rides.
func ListMyRidesHandler(svc rideSvc.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		rides, err := svc.ListByDriver(userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rides": rides})
	}
}

// UpdateRideHandler edits an upcoming ride.
func UpdateRideHandler(svc rideSvc.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		var req rideSvc.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		ride, err := svc.UpdateRide(c.Request.Context(), userID, c.Param("id"), req)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, ride)
	}
}

// CancelRideHandler cancels a ride, refunding its paid bookings.
func CancelRideHandler(svc rideSvc.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		if err := svc.CancelRide(c.Request.Context(), userID, c.Param("id")); err != nil {
			logger.Warn("Failed to cancel ride", zap.String("rideId", c.Param("id")), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Ride cancelled"})
	}
}
