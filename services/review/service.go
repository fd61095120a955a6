package review

import (
	"context"
	"fmt"
	"time"

	bookingRepo "campusride/database/repository/booking"
	reviewRepo "campusride/database/repository/review"
	rideRepo "campusride/database/repository/ride"
	userRepo "campusride/database/repository/user"
	"campusride/models"
	notification "campusride/services/notification"
	"campusride/utils"

	"go.uber.org/zap"
)

// SubmitRequest carries a passenger's review of a ride.
type SubmitRequest struct {
	RideID  string  `json:"rideId" binding:"required"`
	Rating  float64 `json:"rating" binding:"required"`
	Comment string  `json:"comment"`
}

// ReviewService manages ride reviews and the driver rating aggregate.
type ReviewService interface {
	// Submit upserts the passenger's review for a ride; a second submission
	// updates the first. The driver's aggregate rating is recomputed after
	// every write.
	Submit(ctx context.Context, passengerID string, req SubmitRequest) (*models.Review, error)
	// Respond stores the driver's reply on a review of their ride.
	Respond(ctx context.Context, driverID, reviewID, response string) error
	// MyReview returns the caller's review of a ride, so the client can
	// prefill the form before a resubmission.
	MyReview(rideID, passengerID string) (*models.Review, error)
	ListByDriver(driverID string) ([]models.Review, error)
}

// DefaultReviewService implements ReviewService.
type DefaultReviewService struct {
	Repo     reviewRepo.ReviewRepository
	Rides    rideRepo.RideRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Notifier notification.NotificationService
}

func (s *DefaultReviewService) Submit(ctx context.Context, passengerID string, req SubmitRequest) (*models.Review, error) {
	logger := utils.GetLogger()

	ride, err := s.Rides.GetByID(req.RideID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}

	booking, err := s.passengerBooking(req.RideID, passengerID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, utils.NewServiceError(utils.CodeForbidden, "only passengers of the ride can review it")
	}
	if booking.TripStatus != models.TripCompleted {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "reviews open once the trip is completed")
	}

	now := time.Now()
	review := &models.Review{
		RideID:      req.RideID,
		PassengerID: passengerID,
		DriverID:    ride.DriverID,
		Rating:      models.ClampRating(req.Rating),
		Comment:     req.Comment,
		UpdatedAt:   now,
	}
	stored, err := s.Repo.Upsert(review)
	if err != nil {
		return nil, fmt.Errorf("failed to store review: %w", err)
	}

	if err := s.Bookings.SetReviewID(booking.ID, stored.ID); err != nil {
		logger.Warn("failed to link review to booking",
			zap.String("bookingId", booking.ID), zap.String("reviewId", stored.ID), zap.Error(err))
	}

	if err := s.refreshDriverRating(ride.DriverID); err != nil {
		logger.Error("failed to refresh driver rating",
			zap.String("driverId", ride.DriverID), zap.Error(err))
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, ride.DriverID, models.NotifReviewReceived,
			"Nouvel avis",
			fmt.Sprintf("Un passager a noté votre trajet %s → %s : %.1f/5.",
				ride.Depart, ride.Destination, stored.Rating),
			map[string]string{"rideId": ride.ID, "reviewId": stored.ID}); err != nil {
			logger.Warn("failed to notify driver of review",
				zap.String("reviewId", stored.ID), zap.Error(err))
		}
	}

	logger.Info("review submitted",
		zap.String("reviewId", stored.ID), zap.String("rideId", req.RideID),
		zap.Float64("rating", stored.Rating))
	return stored, nil
}

func (s *DefaultReviewService) Respond(ctx context.Context, driverID, reviewID, response string) error {
	review, err := s.Repo.GetByID(reviewID)
	if err != nil {
		return fmt.Errorf("failed to fetch review: %w", err)
	}
	if review == nil {
		return utils.NewServiceError(utils.CodeNotFound, "review not found")
	}
	if review.DriverID != driverID {
		return utils.NewServiceError(utils.CodeForbidden, "only the reviewed driver can respond")
	}
	if err := s.Repo.SetDriverResponse(reviewID, response); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

func (s *DefaultReviewService) MyReview(rideID, passengerID string) (*models.Review, error) {
	review, err := s.Repo.Get(rideID, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	if review == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "no review for this ride")
	}
	return review, nil
}

func (s *DefaultReviewService) ListByDriver(driverID string) ([]models.Review, error) {
	return s.Repo.ListByDriver(driverID)
}

// refreshDriverRating denormalizes the aggregate onto the user document.
func (s *DefaultReviewService) refreshDriverRating(driverID string) error {
	avg, count, err := s.Repo.DriverAggregate(driverID)
	if err != nil {
		return err
	}
	return s.Users.SetRating(driverID, avg, count)
}

// passengerBooking finds the passenger's booking on the ride, or nil.
func (s *DefaultReviewService) passengerBooking(rideID, passengerID string) (*models.Booking, error) {
	bookings, err := s.Bookings.ListByPassenger(passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	for i := range bookings {
		if bookings[i].RideID == rideID {
			return &bookings[i], nil
		}
	}
	return nil, nil
}
