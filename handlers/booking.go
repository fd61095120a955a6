package handlers

import (
	"net/http"

	"campusride/middleware"
	bookingSvc "campusride/services/booking"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateBookingIntentHandler opens a Stripe intent for a card-paid booking.
func CreateBookingIntentHandler(svc bookingSvc.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			RideID string `json:"rideId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		intent, err := svc.CreateCardIntent(c.Request.Context(), userID, req.RideID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, intent)
	}
}

// ConfirmBookingHandler pays for an accepted reservation and creates the booking.
func ConfirmBookingHandler(svc bookingSvc.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req bookingSvc.ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		booking, err := svc.Confirm(c.Request.Context(), userID, req)
		if err != nil {
			logger.Warn("Booking confirmation failed",
				zap.String("rideId", req.RideID), zap.String("uid", userID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, booking)
	}
}

// GetBookingHandler returns one booking visible to its passenger or driver.
func GetBookingHandler(svc bookingSvc.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		b, err := svc.GetBooking(userID, c.Param("id"))
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// ListMyBookingsHandler lists the caller's bookings.
func ListMyBookingsHandler(svc bookingSvc.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		bookings, err := svc.ListByPassenger(userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// ListRideBookingsHandler lists a ride's bookings for its driver.
func ListRideBookingsHandler(svc bookingSvc.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		bookings, err := svc.ListByRide(userID, c.Param("rideId"))
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// CancelBookingHandler frees the seat and refunds the passenger.
func CancelBookingHandler(svc bookingSvc.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		if err := svc.CancelByPassenger(c.Request.Context(), userID, c.Param("id")); err != nil {
			logger.Warn("Booking cancellation failed",
				zap.String("bookingId", c.Param("id")), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled and refunded"})
	}
}
