package models

import "time"

// Reservation request states.
const (
	ReservationPending   = "pending"
	ReservationAccepted  = "accepted"
	ReservationRejected  = "rejected"
	ReservationCancelled = "cancelled"
)

// ReservationRequest links a passenger to a ride while the driver (or the
// auto-accept task) decides. Only a pending request may transition.
type ReservationRequest struct {
	ID          string    `bson:"id" json:"id"`
	RideID      string    `bson:"ride_id" json:"rideId"`
	PassengerID string    `bson:"passenger_id" json:"passengerId"`
	Status      string    `bson:"status" json:"status"`
	AutoAccept  bool      `bson:"auto_accept" json:"autoAccept"`
	RequestedAt time.Time `bson:"requested_at" json:"requestedAt"`
	DecidedAt   time.Time `bson:"decided_at,omitempty" json:"decidedAt,omitempty"`
	// DecidedBy records who moved the request out of pending:
	// the driver uid, the passenger uid (cancel) or "auto".
	DecidedBy string `bson:"decided_by,omitempty" json:"decidedBy,omitempty"`
}
