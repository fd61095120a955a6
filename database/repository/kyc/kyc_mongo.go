package kycRepo

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

// MongoKYCRepo implements KYCRepository using MongoDB.
type MongoKYCRepo struct {
	coll *mongo.Collection
}

// NewMongoKYCRepo creates a new KYCRepository using MongoDB.
func NewMongoKYCRepo() KYCRepository {
	coll := database.DB().Collection("kyc_documents")
	repo := &MongoKYCRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoKYCRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "kind", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Upsert stores the document for its (uid, kind) pair.
func (r *MongoKYCRepo) Upsert(doc *models.KYCDocument) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"uid": doc.UID, "kind": doc.Kind}
	update := bson.M{
		"$set": bson.M{
			"public_id":     doc.PublicID,
			"status":        models.KYCDocPending,
			"reviewer_note": "",
			"reviewed_by":   "",
			"uploaded_at":   time.Now(),
		},
		"$setOnInsert": bson.M{"id": doc.ID},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert kyc document: %w", err)
	}
	return nil
}

func (r *MongoKYCRepo) ListByUID(uid string) ([]models.KYCDocument, error) {
	return r.list(bson.M{"uid": uid})
}

func (r *MongoKYCRepo) ListPending() ([]models.KYCDocument, error) {
	return r.list(bson.M{"status": models.KYCDocPending})
}

func (r *MongoKYCRepo) list(filter bson.M) ([]models.KYCDocument, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list kyc documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.KYCDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode kyc documents: %w", err)
	}
	return docs, nil
}

func (r *MongoKYCRepo) GetByID(id string) (*models.KYCDocument, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var doc models.KYCDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch kyc document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *MongoKYCRepo) SetStatus(id, status, note, reviewedBy string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":        status,
		"reviewer_note": note,
		"reviewed_by":   reviewedBy,
		"reviewed_at":   time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set status on kyc document %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("kyc document with id %s not found", id)
	}
	return nil
}

func (r *MongoKYCRepo) DeleteByUID(uid string) ([]string, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	docs, err := r.ListByUID(uid)
	if err != nil {
		return nil, err
	}
	publicIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.PublicID != "" {
			publicIDs = append(publicIDs, d.PublicID)
		}
	}

	if _, err := r.coll.DeleteMany(ctx, bson.M{"uid": uid}); err != nil {
		return nil, fmt.Errorf("failed to delete kyc documents for %s: %w", uid, err)
	}
	return publicIDs, nil
}
