package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.DB().Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "passenger_id", Value: 1}}},
		{Keys: bson.D{{Key: "ride_id", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(b *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListByPassenger(passengerID string) ([]models.Booking, error) {
	return r.list(bson.M{"passenger_id": passengerID})
}

func (r *MongoBookingRepo) ListByRide(rideID string) ([]models.Booking, error) {
	return r.list(bson.M{"ride_id": rideID})
}

func (r *MongoBookingRepo) list(filter bson.M) ([]models.Booking, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) SetTripStatus(id, status string) error {
	return r.setField(id, "trip_status", status)
}

func (r *MongoBookingRepo) SetPaymentStatus(id, status string) error {
	return r.setField(id, "payment_status", status)
}

func (r *MongoBookingRepo) SetReviewID(id, reviewID string) error {
	return r.setField(id, "review_id", reviewID)
}

func (r *MongoBookingRepo) setField(id, field, value string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking with id %s not found", id)
	}
	return nil
}

func (r *MongoBookingRepo) DeleteByPassenger(passengerID string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"passenger_id": passengerID}); err != nil {
		return fmt.Errorf("failed to delete bookings for passenger %s: %w", passengerID, err)
	}
	return nil
}
