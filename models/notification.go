package models

import "time"

// Notification types used across the services.
const (
	NotifReservationRequested = "reservation_requested"
	NotifReservationAccepted  = "reservation_accepted"
	NotifReservationRejected  = "reservation_rejected"
	NotifRideCancelled        = "ride_cancelled"
	NotifPaymentConfirmation  = "payment_confirmation"
	NotifRideReminder         = "ride_reminder"
	NotifNewMessage           = "new_message"
	NotifReviewReceived       = "review_received"
	NotifKYCReviewed          = "kyc_reviewed"
)

// Notification is one entry of a recipient's ordered notification list.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UID       string            `bson:"uid" json:"uid"`
	Type      string            `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	// ScheduleKey is set when the notification was queued for future delivery;
	// it identifies the asynq task so a preference change can cancel it.
	ScheduleKey string    `bson:"schedule_key,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// ReminderPayload is the asynq task payload for a scheduled ride reminder.
type ReminderPayload struct {
	UID      string `json:"uid"`
	RideID   string `json:"rideId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	FireDate string `json:"fireDate"`
}
