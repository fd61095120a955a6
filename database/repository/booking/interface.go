package bookingRepo

import "campusride/models"

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	Create(b *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	ListByPassenger(passengerID string) ([]models.Booking, error)
	ListByRide(rideID string) ([]models.Booking, error)
	// SetTripStatus moves the trip lifecycle field.
	SetTripStatus(id, status string) error
	// SetPaymentStatus moves the payment field (refunds).
	SetPaymentStatus(id, status string) error
	// SetReviewID links the passenger's review to the booking.
	SetReviewID(id, reviewID string) error
	// DeleteByPassenger removes all bookings of a passenger (deletion cascade).
	DeleteByPassenger(passengerID string) error
}
