package models

import "time"

// Ride lifecycle states.
const (
	RideStatusPublished = "published"
	RideStatusArchived  = "archived"
	RideStatusCancelled = "cancelled"
)

// Pricing modes for a ride.
const (
	PricingFixed   = "fixed"   // total price split between passengers
	PricingPerSeat = "perSeat" // price charged per seat
)

// Ride is a published offer for a car trip between two points at a scheduled time.
type Ride struct {
	ID          string    `bson:"id" json:"id"`
	DriverID    string    `bson:"driver_id" json:"driverId"`
	DriverEmail string    `bson:"driver_email" json:"driverEmail"`
	Depart      string    `bson:"depart" json:"depart"`
	Destination string    `bson:"destination" json:"destination"`
	DepartureAt time.Time `bson:"departure_at" json:"departureAt"`
	Seats       int       `bson:"seats" json:"seats"`
	PriceCents  int64     `bson:"price_cents" json:"priceCents"`
	PricingMode string    `bson:"pricing_mode" json:"pricingMode"`

	// Accepted passenger uids. Never exceeds Seats.
	Passengers []string `bson:"passengers" json:"passengers"`
	// Uids of passengers who cancelled after acceptance.
	Cancellations []string `bson:"cancellations" json:"cancellations"`

	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// SeatsLeft returns the number of free seats on the ride.
func (r *Ride) SeatsLeft() int {
	return r.Seats - len(r.Passengers)
}

// SeatPriceCents returns the amount a single passenger pays given the pricing
// mode. Fixed pricing divides the total by the seat count, rounding up so the
// driver is never shorted by integer division.
func (r *Ride) SeatPriceCents() int64 {
	if r.PricingMode == PricingFixed && r.Seats > 0 {
		return (r.PriceCents + int64(r.Seats) - 1) / int64(r.Seats)
	}
	return r.PriceCents
}

// RideSearchQuery filters published upcoming rides.
type RideSearchQuery struct {
	Depart      string    `form:"depart"`
	Destination string    `form:"destination"`
	From        time.Time `form:"from"`
	To          time.Time `form:"to"`
	Limit       int64     `form:"limit"`
}
