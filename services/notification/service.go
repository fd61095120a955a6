package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "campusride/database/repository/notification"
	userRepo "campusride/database/repository/user"
	"campusride/models"
	"campusride/services/realtime"
	"campusride/services/tasks"
	"campusride/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo      notificationRepo.NotificationRepository
	Users     userRepo.UserRepository
	Hub       *realtime.Hub
	Scheduler tasks.Scheduler
}

func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	users userRepo.UserRepository,
	hub *realtime.Hub,
	scheduler tasks.Scheduler,
) (*DefaultNotificationService, error) {
	if repo == nil || users == nil {
		return nil, fmt.Errorf("notification service initialization error: repo or user repository is nil")
	}
	return &DefaultNotificationService{Repo: repo, Users: users, Hub: hub, Scheduler: scheduler}, nil
}

// Notify stores a notification and delivers it over push and websocket.
func (s *DefaultNotificationService) Notify(ctx context.Context, uid, notifType, title, body string, data map[string]string) error {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UID:       uid,
		Type:      notifType,
		Title:     title,
		Body:      body,
		Data:      data,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := s.Repo.Insert(n); err != nil {
		return fmt.Errorf("Notify: failed to store notification: %w", err)
	}

	if s.Hub != nil {
		s.Hub.SendToUser(uid, realtime.Event{Type: realtime.EventNotification, Payload: n})
	}
	s.push(ctx, uid, title, body, data)
	return nil
}

// push sends the FCM message when the user has a token and push enabled.
// Push failures never fail the calling operation.
func (s *DefaultNotificationService) push(ctx context.Context, uid, title, body string, data map[string]string) {
	logger := utils.GetLogger()

	u, err := s.Users.GetByIDWithProjection(uid, bson.M{"id": 1, "fcm_token": 1, "preferences": 1})
	if err != nil {
		logger.Warn("push: could not load user", zap.String("uid", uid), zap.Error(err))
		return
	}
	if u.FCMToken == "" || !u.Preferences.PushEnabled {
		return
	}
	if utils.FCMClient == nil {
		logger.Debug("push: FCM client not initialized")
		return
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		logger.Warn("push: failed to send FCM message", zap.String("uid", uid), zap.Error(err))
	}
}

// ScheduleRideReminder queues a departure reminder through asynq and records
// the schedule key so a preference change can cancel it.
func (s *DefaultNotificationService) ScheduleRideReminder(ctx context.Context, uid, rideID, title, body string, fireAt time.Time) error {
	u, err := s.Users.GetByIDWithProjection(uid, bson.M{"id": 1, "preferences": 1})
	if err != nil {
		return fmt.Errorf("ScheduleRideReminder: could not load user %s: %w", uid, err)
	}
	if !u.Preferences.PushEnabled {
		return nil
	}

	payload := models.ReminderPayload{
		UID:      uid,
		RideID:   rideID,
		Title:    title,
		Body:     body,
		FireDate: fireAt.Format(time.RFC3339),
	}
	taskID, err := s.Scheduler.ScheduleReminder(payload, fireAt)
	if err != nil {
		return fmt.Errorf("ScheduleRideReminder: %w", err)
	}

	n := &models.Notification{
		ID:          uuid.New().String(),
		UID:         uid,
		Type:        models.NotifRideReminder,
		Title:       title,
		Body:        body,
		Data:        map[string]string{"rideId": rideID},
		ScheduleKey: taskID,
		CreatedAt:   time.Now(),
	}
	if err := s.Repo.Insert(n); err != nil {
		return fmt.Errorf("ScheduleRideReminder: failed to record schedule: %w", err)
	}
	return nil
}

// DeliverScheduled promotes a fired reminder and pushes it.
func (s *DefaultNotificationService) DeliverScheduled(ctx context.Context, p models.ReminderPayload) error {
	taskID := fmt.Sprintf("reminder:%s:%s", p.UID, p.RideID)
	n, err := s.Repo.MarkDelivered(taskID)
	if err != nil {
		return fmt.Errorf("DeliverScheduled: %w", err)
	}
	if n == nil {
		// Cleared before firing; the user turned push off.
		return nil
	}

	if s.Hub != nil {
		s.Hub.SendToUser(p.UID, realtime.Event{Type: realtime.EventNotification, Payload: n})
	}
	s.push(ctx, p.UID, p.Title, p.Body, n.Data)
	return nil
}

// SetPushEnabled flips the push preference; disabling clears scheduled
// reminders and cancels the queued tasks.
func (s *DefaultNotificationService) SetPushEnabled(ctx context.Context, uid string, enabled bool) error {
	if err := s.Users.UpdateSetDocument(uid, bson.M{"preferences.push_enabled": enabled}); err != nil {
		return fmt.Errorf("SetPushEnabled: %w", err)
	}
	if enabled {
		return nil
	}

	keys, err := s.Repo.ClearScheduled(uid)
	if err != nil {
		return fmt.Errorf("SetPushEnabled: failed to clear scheduled reminders: %w", err)
	}
	for _, key := range keys {
		if s.Scheduler == nil {
			break
		}
		if err := s.Scheduler.Cancel(key); err != nil {
			utils.GetLogger().Warn("SetPushEnabled: failed to cancel reminder task",
				zap.String("uid", uid), zap.String("task", key), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultNotificationService) List(ctx context.Context, uid string, limit int64) ([]models.Notification, error) {
	return s.Repo.List(uid, limit)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, uid, id string) error {
	return s.Repo.MarkRead(uid, id)
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, uid string) error {
	return s.Repo.MarkAllRead(uid)
}

func (s *DefaultNotificationService) UnreadCount(ctx context.Context, uid string) (int64, error) {
	return s.Repo.UnreadCount(uid)
}
