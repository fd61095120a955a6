package handlers

import (
	"net/http"

	"campusride/middleware"
	reservationSvc "campusride/services/reservation"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestSeatHandler opens a pending seat request on a ride.
func RequestSeatHandler(svc reservationSvc.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			RideID string `json:"rideId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		res, err := svc.Request(c.Request.Context(), userID, req.RideID)
		if err != nil {
			logger.Warn("Seat request failed", zap.String("rideId", req.RideID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// AcceptReservationHandler lets the driver accept a pending request.
func AcceptReservationHandler(svc reservationSvc.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		if err := svc.Accept(c.Request.Context(), userID, c.Param("id")); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
	}
}

// RejectReservationHandler lets the driver decline a pending request.
func RejectReservationHandler(svc reservationSvc.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		if err := svc.Reject(c.Request.Context(), userID, c.Param("id")); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
	}
}

// CancelReservationHandler lets the passenger withdraw a pending request.
func CancelReservationHandler(svc reservationSvc.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		if err := svc.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
	}
}

// ListRideReservationsHandler lists a ride's requests for its driver.
func ListRideReservationsHandler(svc reservationSvc.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		reqs, err := svc.ListByRide(userID, c.Param("rideId"))
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reservations": reqs})
	}
}

// ListMyReservationsHandler lists the caller's own requests.
func ListMyReservationsHandler(svc reservationSvc.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)
		reqs, err := svc.ListByPassenger(userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reservations": reqs})
	}
}
