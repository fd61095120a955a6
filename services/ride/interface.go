package ride

import (
	"context"

	"campusride/models"
)

// PublishRequest carries the fields of a new ride offer.
type PublishRequest struct {
	Depart      string `json:"depart" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	DepartureAt string `json:"departureAt" binding:"required"` // RFC 3339
	Seats       int    `json:"seats" binding:"required,min=1,max=8"`
	PriceCents  int64  `json:"priceCents" binding:"required,min=0"`
	PricingMode string `json:"pricingMode"`
}

// UpdateRequest carries the editable fields of a published ride.
type UpdateRequest struct {
	DepartureAt *string `json:"departureAt"`
	Seats       *int    `json:"seats"`
	PriceCents  *int64  `json:"priceCents"`
}

// RideService defines ride lifecycle operations.
type RideService interface {
	// Publish creates a ride offer. Only KYC-approved drivers may publish.
	Publish(ctx context.Context, driverID string, req PublishRequest) (*models.Ride, error)
	GetRide(id string) (*models.Ride, error)
	Search(q models.RideSearchQuery) ([]models.Ride, error)
	ListByDriver(driverID string) ([]models.Ride, error)
	// UpdateRide edits an upcoming ride. Seats can never drop below the number
	// of passengers already seated.
	UpdateRide(ctx context.Context, driverID, rideID string, req UpdateRequest) (*models.Ride, error)
	// CancelRide cancels a published ride, refunds every paid wallet booking
	// and notifies seated passengers.
	CancelRide(ctx context.Context, driverID, rideID string) error
	// ArchiveDeparted moves past-departure rides out of search results. Run
	// periodically by the worker.
	ArchiveDeparted(ctx context.Context) (int, error)
}
