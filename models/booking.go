package models

import (
	"time"

	"campusride/utils"
)

// Payment and trip states for a booking.
const (
	PaymentMethodWallet = "wallet"
	PaymentMethodCard   = "card"

	BookingPending   = "pending"
	BookingPaid      = "paid"
	BookingRefunded  = "refunded"
	TripUpcoming     = "upcoming"
	TripCompleted    = "completed"
	TripCancelled    = "cancelled"
)

// Booking is a confirmed reservation by a passenger against a ride, created at
// payment confirmation. The meeting point is snapshotted at that moment.
type Booking struct {
	ID             string `bson:"id" json:"id"`
	RideID         string `bson:"ride_id" json:"rideId"`
	PassengerID    string `bson:"passenger_id" json:"passengerId"`
	PassengerEmail string `bson:"passenger_email" json:"passengerEmail"`

	AmountCents   int64  `bson:"amount_cents" json:"amountCents"`
	PaymentMethod string `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus string `bson:"payment_status" json:"paymentStatus"`

	MeetingPoint utils.MeetingPoint `bson:"meeting_point" json:"meetingPoint"`

	TripStatus string `bson:"trip_status" json:"tripStatus"`
	ReviewID   string `bson:"review_id,omitempty" json:"reviewId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
