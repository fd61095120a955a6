package handlers

import (
	"net/http"

	"campusride/middleware"
	reviewSvc "campusride/services/review"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitReviewHandler upserts the caller's review of a completed ride.
func SubmitReviewHandler(svc reviewSvc.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := getLogger(c)
		userID := c.GetString(middleware.CtxUserID)

		var req reviewSvc.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}

		review, err := svc.Submit(c.Request.Context(), userID, req)
		if err != nil {
			logger.Warn("Review submission failed", zap.String("rideId", req.RideID), zap.Error(err))
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

// RespondToReviewHandler stores the driver's reply on a review.
func RespondToReviewHandler(svc reviewSvc.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		var req struct {
			Response string `json:"response" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		if err := svc.Respond(c.Request.Context(), userID, c.Param("id"), req.Response); err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Response stored"})
	}
}

// MyRideReviewHandler returns the caller's review of a ride, if any.
func MyRideReviewHandler(svc reviewSvc.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.CtxUserID)

		review, err := svc.MyReview(c.Param("rideId"), userID)
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

// ListDriverReviewsHandler returns a driver's reviews.
func ListDriverReviewsHandler(svc reviewSvc.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := svc.ListByDriver(c.Param("driverId"))
		if err != nil {
			utils.JSONServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}
