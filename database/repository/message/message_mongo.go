package messageRepo

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

// MongoMessageRepo implements MessageRepository using MongoDB.
type MongoMessageRepo struct {
	convColl *mongo.Collection
	msgColl  *mongo.Collection
}

// NewMongoMessageRepo creates a new MessageRepository using MongoDB.
func NewMongoMessageRepo() MessageRepository {
	db := database.DB()
	repo := &MongoMessageRepo{
		convColl: db.Collection("conversations"),
		msgColl:  db.Collection("messages"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoMessageRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.convColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "last_sent_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}

	if _, err := r.msgColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "sent_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

// UpsertConversation creates or refreshes a conversation document.
func (r *MongoMessageRepo) UpsertConversation(c *models.Conversation) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": c.ID}
	update := bson.M{
		"$set": bson.M{
			"last_message": c.LastMessage,
			"last_sent_at": c.LastSentAt,
		},
		"$setOnInsert": bson.M{
			"ride_id":      c.RideID,
			"participants": c.Participants,
			"created_at":   time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.convColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert conversation %s: %w", c.ID, err)
	}
	return nil
}

func (r *MongoMessageRepo) GetConversation(id string) (*models.Conversation, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var c models.Conversation
	if err := r.convColl.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch conversation %s: %w", id, err)
	}
	return &c, nil
}

func (r *MongoMessageRepo) ListConversations(uid string) ([]models.Conversation, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "last_sent_at", Value: -1}})
	cursor, err := r.convColl.Find(ctx, bson.M{"participants": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations for %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return conversations, nil
}

func (r *MongoMessageRepo) InsertMessage(m *models.Message) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.msgColl.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MongoMessageRepo) ListMessages(conversationID string, limit int64) ([]models.Message, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.msgColl.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

func (r *MongoMessageRepo) MarkConversationRead(conversationID, uid string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"conversation_id": conversationID, "sender_id": bson.M{"$ne": uid}, "read": false}
	if _, err := r.msgColl.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}}); err != nil {
		return fmt.Errorf("failed to mark conversation %s read: %w", conversationID, err)
	}
	return nil
}

func (r *MongoMessageRepo) DeleteByUID(uid string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.convColl.Find(ctx, bson.M{"participants": uid}, options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return fmt.Errorf("failed to find conversations for %s: %w", uid, err)
	}
	var convs []struct {
		ID string `bson:"id"`
	}
	if err := cursor.All(ctx, &convs); err != nil {
		return fmt.Errorf("failed to decode conversations: %w", err)
	}

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	if len(ids) > 0 {
		if _, err := r.msgColl.DeleteMany(ctx, bson.M{"conversation_id": bson.M{"$in": ids}}); err != nil {
			return fmt.Errorf("failed to delete messages for %s: %w", uid, err)
		}
	}
	if _, err := r.convColl.DeleteMany(ctx, bson.M{"participants": uid}); err != nil {
		return fmt.Errorf("failed to delete conversations for %s: %w", uid, err)
	}
	return nil
}
