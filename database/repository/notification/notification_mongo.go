package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"campusride/database"
	"campusride/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo creates a new NotificationRepository using MongoDB.
func NewMongoNotificationRepo() NotificationRepository {
	coll := database.DB().Collection("notifications")
	repo := &MongoNotificationRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoNotificationRepo) Insert(n *models.Notification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *MongoNotificationRepo) List(uid string, limit int64) ([]models.Notification, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (r *MongoNotificationRepo) MarkRead(uid, id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "uid": uid}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification with id %s not found", id)
	}
	return nil
}

func (r *MongoNotificationRepo) MarkAllRead(uid string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.UpdateMany(ctx, bson.M{"uid": uid, "read": false}, bson.M{"$set": bson.M{"read": true}}); err != nil {
		return fmt.Errorf("failed to mark notifications read for %s: %w", uid, err)
	}
	return nil
}

func (r *MongoNotificationRepo) UnreadCount(uid string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"uid": uid, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for %s: %w", uid, err)
	}
	return count, nil
}

func (r *MongoNotificationRepo) ListScheduled(uid string) ([]models.Notification, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"uid": uid, "schedule_key": bson.M{"$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled notifications for %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled notifications: %w", err)
	}
	return notifications, nil
}

// ClearScheduled removes the scheduled notifications of a user and returns the
// schedule keys so the caller can cancel the matching queued tasks.
func (r *MongoNotificationRepo) ClearScheduled(uid string) ([]string, error) {
	scheduled, err := r.ListScheduled(uid)
	if err != nil {
		return nil, err
	}
	if len(scheduled) == 0 {
		return nil, nil
	}

	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"uid": uid, "schedule_key": bson.M{"$ne": ""}}); err != nil {
		return nil, fmt.Errorf("failed to clear scheduled notifications for %s: %w", uid, err)
	}

	keys := make([]string, 0, len(scheduled))
	for _, n := range scheduled {
		keys = append(keys, n.ScheduleKey)
	}
	return keys, nil
}

// MarkDelivered clears the schedule key of a fired notification.
func (r *MongoNotificationRepo) MarkDelivered(scheduleKey string) (*models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"schedule_key": scheduleKey}
	update := bson.M{"$set": bson.M{"schedule_key": "", "created_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return &n, nil
}

func (r *MongoNotificationRepo) DeleteByUID(uid string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"uid": uid}); err != nil {
		return fmt.Errorf("failed to delete notifications for %s: %w", uid, err)
	}
	return nil
}
