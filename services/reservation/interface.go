package reservation

import (
	"context"

	"campusride/models"
)

// ReservationService manages seat requests and their decisions.
type ReservationService interface {
	// Request opens a pending seat request and schedules its auto-accept task.
	Request(ctx context.Context, passengerID, rideID string) (*models.ReservationRequest, error)
	// Accept seats the passenger. Driver only.
	Accept(ctx context.Context, driverID, reservationID string) error
	// Reject declines a pending request. Driver only.
	Reject(ctx context.Context, driverID, reservationID string) error
	// Cancel withdraws a pending request. Passenger only.
	Cancel(ctx context.Context, passengerID, reservationID string) error
	ListByRide(driverID, rideID string) ([]models.ReservationRequest, error)
	ListByPassenger(passengerID string) ([]models.ReservationRequest, error)
	// HandleAutoAccept is the worker entry point for the delayed auto-accept
	// task. Accepting is conditional on the request still being pending, so a
	// redelivered task is a no-op.
	HandleAutoAccept(ctx context.Context, reservationID string) error
}
