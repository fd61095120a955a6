package reviewRepo

import "campusride/models"

// ReviewRepository defines methods for review data access.
type ReviewRepository interface {
	// Upsert writes the review for its (ride, passenger) pair, updating the
	// existing document in place when one exists. The returned review carries
	// the persisted id and timestamps.
	Upsert(review *models.Review) (*models.Review, error)
	// Get returns the review for a (ride, passenger) pair, or nil.
	Get(rideID, passengerID string) (*models.Review, error)
	// GetByID returns a review by id, or nil.
	GetByID(id string) (*models.Review, error)
	ListByDriver(driverID string) ([]models.Review, error)
	// SetDriverResponse stores the driver's reply on an existing review.
	SetDriverResponse(reviewID, response string) error
	// DriverAggregate computes the average rating and count for a driver.
	DriverAggregate(driverID string) (avg float64, count int, err error)
	// DeleteByPassenger removes all reviews authored by a passenger.
	DeleteByPassenger(passengerID string) error
}
