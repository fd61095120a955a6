package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"campusride/models"

	"go.mongodb.org/mongo-driver/bson"
)

type fakeNotificationRepo struct {
	stored []*models.Notification
}

func (f *fakeNotificationRepo) Insert(n *models.Notification) error {
	f.stored = append(f.stored, n)
	return nil
}

func (f *fakeNotificationRepo) List(uid string, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.stored {
		if n.UID == uid {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(uid, id string) error {
	for _, n := range f.stored {
		if n.UID == uid && n.ID == id {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(uid string) error {
	for _, n := range f.stored {
		if n.UID == uid {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) UnreadCount(uid string) (int64, error) {
	var c int64
	for _, n := range f.stored {
		if n.UID == uid && !n.Read {
			c++
		}
	}
	return c, nil
}

func (f *fakeNotificationRepo) ListScheduled(uid string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.stored {
		if n.UID == uid && n.ScheduleKey != "" {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) ClearScheduled(uid string) ([]string, error) {
	var keys []string
	kept := f.stored[:0]
	for _, n := range f.stored {
		if n.UID == uid && n.ScheduleKey != "" {
			keys = append(keys, n.ScheduleKey)
			continue
		}
		kept = append(kept, n)
	}
	f.stored = kept
	return keys, nil
}

func (f *fakeNotificationRepo) MarkDelivered(scheduleKey string) (*models.Notification, error) {
	for _, n := range f.stored {
		if n.ScheduleKey == scheduleKey {
			n.ScheduleKey = ""
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationRepo) DeleteByUID(uid string) error { return nil }

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error)       { return f.users[id], nil }
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (f *fakeUserRepo) Create(u *models.User) error                   { return nil }
func (f *fakeUserRepo) Delete(id string) error                        { return nil }
func (f *fakeUserRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	if enabled, ok := updateDoc["preferences.push_enabled"].(bool); ok {
		f.users[id].Preferences.PushEnabled = enabled
	}
	return nil
}
func (f *fakeUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) SetRating(id string, avg float64, count int) error { return nil }

type fakeScheduler struct {
	scheduled []string
	cancelled []string
}

func (f *fakeScheduler) ScheduleAutoAccept(reservationID string, at time.Time) (string, error) {
	id := "autoaccept:" + reservationID
	f.scheduled = append(f.scheduled, id)
	return id, nil
}

func (f *fakeScheduler) ScheduleReminder(payload models.ReminderPayload, at time.Time) (string, error) {
	id := fmt.Sprintf("reminder:%s:%s", payload.UID, payload.RideID)
	f.scheduled = append(f.scheduled, id)
	return id, nil
}

func (f *fakeScheduler) Cancel(taskID string) error {
	f.cancelled = append(f.cancelled, taskID)
	return nil
}

func newTestNotificationService(t *testing.T) (*DefaultNotificationService, *fakeNotificationRepo, *fakeScheduler) {
	t.Helper()
	repo := &fakeNotificationRepo{}
	sched := &fakeScheduler{}
	users := &fakeUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "u1@example.edu", Preferences: models.NotificationPreferences{PushEnabled: true}},
		"u2": {ID: "u2", Email: "u2@example.edu"},
	}}
	svc, err := NewDefaultNotificationService(repo, users, nil, sched)
	if err != nil {
		t.Fatalf("NewDefaultNotificationService: %v", err)
	}
	return svc, repo, sched
}

func TestNotifyStoresAndCounts(t *testing.T) {
	svc, _, _ := newTestNotificationService(t)
	ctx := context.Background()

	if err := svc.Notify(ctx, "u1", models.NotifNewMessage, "Nouveau message", "Salut", nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := svc.Notify(ctx, "u1", models.NotifReviewReceived, "Nouvel avis", "4.5/5", nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	count, err := svc.UnreadCount(ctx, "u1")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Errorf("UnreadCount = %d, want 2", count)
	}

	list, err := svc.List(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := svc.MarkRead(ctx, "u1", list[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, "u1")
	if count != 1 {
		t.Errorf("UnreadCount after MarkRead = %d, want 1", count)
	}

	if err := svc.MarkAllRead(ctx, "u1"); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, "u1")
	if count != 0 {
		t.Errorf("UnreadCount after MarkAllRead = %d, want 0", count)
	}
}

func TestScheduleReminderSkipsPushDisabled(t *testing.T) {
	svc, repo, sched := newTestNotificationService(t)
	ctx := context.Background()
	fireAt := time.Now().Add(time.Hour)

	if err := svc.ScheduleRideReminder(ctx, "u2", "ride1", "Départ bientôt", "…", fireAt); err != nil {
		t.Fatalf("ScheduleRideReminder: %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("scheduled %d tasks for a push-disabled user, want 0", len(sched.scheduled))
	}
	if len(repo.stored) != 0 {
		t.Errorf("stored %d notifications for a push-disabled user, want 0", len(repo.stored))
	}
}

func TestDisablingPushClearsScheduledReminders(t *testing.T) {
	svc, repo, sched := newTestNotificationService(t)
	ctx := context.Background()
	fireAt := time.Now().Add(time.Hour)

	if err := svc.ScheduleRideReminder(ctx, "u1", "ride1", "Départ bientôt", "…", fireAt); err != nil {
		t.Fatalf("ScheduleRideReminder: %v", err)
	}
	if err := svc.ScheduleRideReminder(ctx, "u1", "ride2", "Départ bientôt", "…", fireAt); err != nil {
		t.Fatalf("ScheduleRideReminder: %v", err)
	}

	if err := svc.SetPushEnabled(ctx, "u1", false); err != nil {
		t.Fatalf("SetPushEnabled: %v", err)
	}

	if len(sched.cancelled) != 2 {
		t.Fatalf("cancelled %d tasks, want 2", len(sched.cancelled))
	}
	scheduled, _ := repo.ListScheduled("u1")
	if len(scheduled) != 0 {
		t.Errorf("scheduled notifications left = %d, want 0", len(scheduled))
	}
}

func TestDeliverScheduledPromotesNotification(t *testing.T) {
	svc, repo, _ := newTestNotificationService(t)
	ctx := context.Background()
	fireAt := time.Now().Add(time.Hour)

	if err := svc.ScheduleRideReminder(ctx, "u1", "ride1", "Départ bientôt", "Rendez-vous à 9h", fireAt); err != nil {
		t.Fatalf("ScheduleRideReminder: %v", err)
	}

	payload := models.ReminderPayload{UID: "u1", RideID: "ride1", Title: "Départ bientôt", Body: "Rendez-vous à 9h"}
	if err := svc.DeliverScheduled(ctx, payload); err != nil {
		t.Fatalf("DeliverScheduled: %v", err)
	}

	scheduled, _ := repo.ListScheduled("u1")
	if len(scheduled) != 0 {
		t.Errorf("notification still scheduled after delivery")
	}
	count, _ := svc.UnreadCount(ctx, "u1")
	if count != 1 {
		t.Errorf("UnreadCount = %d, want the delivered reminder", count)
	}
}

func TestDeliverScheduledDropsClearedReminder(t *testing.T) {
	svc, _, _ := newTestNotificationService(t)
	ctx := context.Background()
	fireAt := time.Now().Add(time.Hour)

	if err := svc.ScheduleRideReminder(ctx, "u1", "ride1", "Départ bientôt", "…", fireAt); err != nil {
		t.Fatalf("ScheduleRideReminder: %v", err)
	}
	if err := svc.SetPushEnabled(ctx, "u1", false); err != nil {
		t.Fatalf("SetPushEnabled: %v", err)
	}

	// The task fires after the user turned push off; nothing is delivered.
	payload := models.ReminderPayload{UID: "u1", RideID: "ride1"}
	if err := svc.DeliverScheduled(ctx, payload); err != nil {
		t.Fatalf("DeliverScheduled: %v", err)
	}
	count, _ := svc.UnreadCount(ctx, "u1")
	if count != 0 {
		t.Errorf("UnreadCount = %d, want 0 for a cleared reminder", count)
	}
}
