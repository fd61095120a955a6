package booking

import (
	"context"

	"campusride/models"
)

// ConfirmRequest carries the payment choice for a booking confirmation.
type ConfirmRequest struct {
	RideID        string `json:"rideId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"` // "wallet" or "card"
	// IntentID is required for card payments: the succeeded Stripe payment
	// intent created by CreateCardIntent.
	IntentID string `json:"intentId"`
}

// BookingService turns accepted reservations into paid bookings.
type BookingService interface {
	// CreateCardIntent opens a Stripe payment intent covering the seat price
	// for a card-paid booking.
	CreateCardIntent(ctx context.Context, passengerID, rideID string) (*models.TopupIntent, error)
	// Confirm pays for an accepted reservation and creates the booking. Wallet
	// payments ride the ledger transfer; card payments first land the charged
	// amount in the wallet, then the same transfer runs. Repeating a
	// confirmation reuses the idempotency key, so one seat is paid once.
	Confirm(ctx context.Context, passengerID string, req ConfirmRequest) (*models.Booking, error)
	GetBooking(uid, id string) (*models.Booking, error)
	ListByPassenger(passengerID string) ([]models.Booking, error)
	ListByRide(driverID, rideID string) ([]models.Booking, error)
	// CancelByPassenger frees the seat and refunds the wallet before departure.
	CancelByPassenger(ctx context.Context, passengerID, bookingID string) error
}
