package models

import (
	"math"
	"time"
)

// Review is one passenger's verdict on one ride. At most one review exists per
// (ride, passenger) pair; resubmission updates the existing document.
type Review struct {
	ID          string `bson:"id" json:"id"`
	RideID      string `bson:"ride_id" json:"rideId"`
	PassengerID string `bson:"passenger_id" json:"passengerId"`
	DriverID    string `bson:"driver_id" json:"driverId"`

	Rating  float64 `bson:"rating" json:"rating"`
	Comment string  `bson:"comment,omitempty" json:"comment,omitempty"`

	DriverResponse    string    `bson:"driver_response,omitempty" json:"driverResponse,omitempty"`
	DriverRespondedAt time.Time `bson:"driver_responded_at,omitempty" json:"driverRespondedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ClampRating normalizes a rating into the [1,5] range at one decimal of
// precision.
func ClampRating(r float64) float64 {
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return math.Round(r*10) / 10
}
