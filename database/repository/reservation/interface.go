package reservationRepo

import "campusride/models"

// ReservationRepository defines methods for reservation request data access.
type ReservationRepository interface {
	Create(req *models.ReservationRequest) error
	GetByID(id string) (*models.ReservationRequest, error)
	// FindActive returns the pending or accepted request for a (ride, passenger)
	// pair, or nil when none exists.
	FindActive(rideID, passengerID string) (*models.ReservationRequest, error)
	ListByRide(rideID string) ([]models.ReservationRequest, error)
	ListByPassenger(passengerID string) ([]models.ReservationRequest, error)
	// TransitionFromPending moves a request out of pending into the given
	// status. The update is conditional on the current status still being
	// pending; it reports whether the transition was applied, which makes the
	// auto-accept task exactly-once.
	TransitionFromPending(id, newStatus, decidedBy string) (bool, error)
	// SetStatus moves a request into the given status unconditionally. Used to
	// roll an accepted request back when seating failed on a full ride.
	SetStatus(id, status, decidedBy string) error
	// DeleteByPassenger removes all requests of a passenger (deletion cascade).
	DeleteByPassenger(passengerID string) error
}
