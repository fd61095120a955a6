package reviewRepo

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

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

// NewMongoReviewRepo creates a new ReviewRepository using MongoDB.
func NewMongoReviewRepo() ReviewRepository {
	coll := database.DB().Collection("reviews")
	repo := &MongoReviewRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	// The compound unique index is the schema-level guarantee behind
	// one-review-per-(ride, passenger).
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "passenger_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "driver_id", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Upsert writes the review for its (ride, passenger) pair, updating in place
// when a review already exists.
func (r *MongoReviewRepo) Upsert(review *models.Review) (*models.Review, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"ride_id": review.RideID, "passenger_id": review.PassengerID}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"driver_id":  review.DriverID,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"id":         uuid.New().String(),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved models.Review
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	return &saved, nil
}

// Get returns the review for a (ride, passenger) pair, or nil.
func (r *MongoReviewRepo) Get(rideID, passengerID string) (*models.Review, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"ride_id": rideID, "passenger_id": passengerID}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return &review, nil
}

func (r *MongoReviewRepo) GetByID(id string) (*models.Review, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review %s: %w", id, err)
	}
	return &review, nil
}

func (r *MongoReviewRepo) ListByDriver(driverID string) ([]models.Review, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"driver_id": driverID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for driver %s: %w", driverID, err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// SetDriverResponse stores the driver's reply on an existing review.
func (r *MongoReviewRepo) SetDriverResponse(reviewID, response string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"driver_response":     response,
		"driver_responded_at": time.Now(),
		"updated_at":          time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": reviewID}, update)
	if err != nil {
		return fmt.Errorf("failed to set driver response on review %s: %w", reviewID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("review with id %s not found", reviewID)
	}
	return nil
}

// DriverAggregate computes the average rating and count for a driver.
func (r *MongoReviewRepo) DriverAggregate(driverID string) (float64, int, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"driver_id": driverID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate driver rating: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}
	if len(result) == 0 {
		return 0, 0, nil
	}
	return result[0].Avg, result[0].Count, nil
}

func (r *MongoReviewRepo) DeleteByPassenger(passengerID string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"passenger_id": passengerID}); err != nil {
		return fmt.Errorf("failed to delete reviews for passenger %s: %w", passengerID, err)
	}
	return nil
}
