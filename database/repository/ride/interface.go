package rideRepo

import (
	"context"

	"campusride/models"
)

// RideRepository defines methods for ride data access.
type RideRepository interface {
	Create(ride *models.Ride) error
	GetByID(id string) (*models.Ride, error)
	Update(ride *models.Ride) error
	// Search returns published, upcoming rides matching the query.
	Search(q models.RideSearchQuery) ([]models.Ride, error)
	// ListByDriver returns all rides published by a driver.
	ListByDriver(driverID string) ([]models.Ride, error)
	// SeatPassenger adds a passenger to a ride only while a seat is free and
	// the ride is still published. Returns false when the conditional update
	// matched nothing (full, archived or cancelled ride).
	SeatPassenger(ctx context.Context, rideID, passengerID string) (bool, error)
	// UnseatPassenger removes a passenger and records the cancellation.
	UnseatPassenger(ctx context.Context, rideID, passengerID string) error
	// SetStatus moves a ride into the given lifecycle state.
	SetStatus(id, status string) error
	// ArchiveDeparted archives published rides whose departure has passed and
	// returns their ids.
	ArchiveDeparted() ([]string, error)
	// DeleteByDriver removes all rides of a driver (account deletion cascade).
	DeleteByDriver(driverID string) error
}
