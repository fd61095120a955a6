package notification

import (
	"context"
	"time"

	"campusride/models"
)

// NotificationService persists notifications, pushes them over FCM and
// websockets, and manages scheduled ride reminders.
type NotificationService interface {
	// Notify stores a notification for uid and delivers it over every enabled
	// channel. Delivery failures are logged, not returned; the stored document
	// is the source of truth.
	Notify(ctx context.Context, uid, notifType, title, body string, data map[string]string) error
	// ScheduleRideReminder queues a departure reminder for uid. No-op when the
	// user has push disabled.
	ScheduleRideReminder(ctx context.Context, uid, rideID, title, body string, fireAt time.Time) error
	// DeliverScheduled is called by the worker when a reminder task fires. It
	// promotes the stored scheduled notification and pushes it; a reminder
	// whose schedule entry was cleared is silently dropped.
	DeliverScheduled(ctx context.Context, p models.ReminderPayload) error
	// SetPushEnabled flips the push preference. Disabling clears the user's
	// scheduled reminders and cancels their queued tasks.
	SetPushEnabled(ctx context.Context, uid string, enabled bool) error

	List(ctx context.Context, uid string, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, uid, id string) error
	MarkAllRead(ctx context.Context, uid string) error
	UnreadCount(ctx context.Context, uid string) (int64, error)
}
