package auditRepo

import (
	"context"
	"fmt"
	"time"

	"campusride/database"
	"campusride/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditRepository records step-tagged entries for sensitive cascades.
type AuditRepository interface {
	Append(uid, operation, step string, stepErr error) error
	ListByUID(uid string) ([]models.AuditEntry, error)
}

// MongoAuditRepo implements AuditRepository using MongoDB.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo creates a new AuditRepository using MongoDB.
func NewMongoAuditRepo() AuditRepository {
	return &MongoAuditRepo{coll: database.DB().Collection("audit_logs")}
}

// Append writes one audit entry. Audit failures are returned but callers log
// rather than abort on them; losing an audit line must not hide the cascade's
// own error.
func (r *MongoAuditRepo) Append(uid, operation, step string, stepErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := models.AuditEntry{
		ID:        uuid.New().String(),
		UID:       uid,
		Operation: operation,
		Step:      step,
		OK:        stepErr == nil,
		CreatedAt: time.Now(),
	}
	if stepErr != nil {
		entry.Error = stepErr.Error()
	}

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *MongoAuditRepo) ListByUID(uid string) ([]models.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}
