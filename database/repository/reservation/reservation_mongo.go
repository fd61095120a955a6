package reservationRepo

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

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo creates a new ReservationRepository using MongoDB.
func NewMongoReservationRepo() ReservationRepository {
	coll := database.DB().Collection("reservations")
	repo := &MongoReservationRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoReservationRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ride_id", Value: 1}, {Key: "passenger_id", Value: 1}}},
		{Keys: bson.D{{Key: "passenger_id", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoReservationRepo) Create(req *models.ReservationRequest) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create reservation request: %w", err)
	}
	return nil
}

func (r *MongoReservationRepo) GetByID(id string) (*models.ReservationRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var req models.ReservationRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch reservation request %s: %w", id, err)
	}
	return &req, nil
}

// FindActive returns the pending or accepted request for a (ride, passenger) pair.
func (r *MongoReservationRepo) FindActive(rideID, passengerID string) (*models.ReservationRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"ride_id":      rideID,
		"passenger_id": passengerID,
		"status":       bson.M{"$in": bson.A{models.ReservationPending, models.ReservationAccepted}},
	}

	var req models.ReservationRequest
	if err := r.coll.FindOne(ctx, filter).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active reservation: %w", err)
	}
	return &req, nil
}

func (r *MongoReservationRepo) ListByRide(rideID string) ([]models.ReservationRequest, error) {
	return r.list(bson.M{"ride_id": rideID})
}

func (r *MongoReservationRepo) ListByPassenger(passengerID string) ([]models.ReservationRequest, error) {
	return r.list(bson.M{"passenger_id": passengerID})
}

func (r *MongoReservationRepo) list(filter bson.M) ([]models.ReservationRequest, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservation requests: %w", err)
	}
	defer cursor.Close(ctx)

	var reqs []models.ReservationRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode reservation requests: %w", err)
	}
	return reqs, nil
}

// TransitionFromPending conditionally moves a request out of pending. The
// filter pins the current status, so a request that was already decided is
// left untouched and the caller is told nothing happened.
func (r *MongoReservationRepo) TransitionFromPending(id, newStatus, decidedBy string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.ReservationPending}
	update := bson.M{"$set": bson.M{
		"status":     newStatus,
		"decided_at": time.Now(),
		"decided_by": decidedBy,
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to transition reservation %s: %w", id, err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoReservationRepo) SetStatus(id, status, decidedBy string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":     status,
		"decided_at": time.Now(),
		"decided_by": decidedBy,
	}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to set reservation %s status: %w", id, err)
	}
	return nil
}

func (r *MongoReservationRepo) DeleteByPassenger(passengerID string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"passenger_id": passengerID}); err != nil {
		return fmt.Errorf("failed to delete reservations for passenger %s: %w", passengerID, err)
	}
	return nil
}
