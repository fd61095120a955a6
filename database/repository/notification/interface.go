package notificationRepo

import "campusride/models"

// NotificationRepository defines methods for notification data access.
type NotificationRepository interface {
	Insert(n *models.Notification) error
	// List returns a user's notifications, newest first.
	List(uid string, limit int64) ([]models.Notification, error)
	MarkRead(uid, id string) error
	MarkAllRead(uid string) error
	UnreadCount(uid string) (int64, error)
	// ListScheduled returns the undelivered notifications of a user that carry
	// a schedule key.
	ListScheduled(uid string) ([]models.Notification, error)
	// ClearScheduled removes the scheduled notifications of a user and returns
	// the schedule keys that were cleared.
	ClearScheduled(uid string) ([]string, error)
	// MarkDelivered clears the schedule key of a fired notification, turning
	// it into an ordinary delivered entry. Returns nil when the notification
	// was already cleared (preferences disabled in the meantime).
	MarkDelivered(scheduleKey string) (*models.Notification, error)
	// DeleteByUID removes all notifications of a user (deletion cascade).
	DeleteByUID(uid string) error
}
