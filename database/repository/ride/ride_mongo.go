package rideRepo

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

// MongoRideRepo implements RideRepository using MongoDB.
type MongoRideRepo struct {
	coll *mongo.Collection
}

// NewMongoRideRepo creates a new instance of RideRepository using MongoDB.
func NewMongoRideRepo() RideRepository {
	coll := database.DB().Collection("rides")
	repo := &MongoRideRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoRideRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "driver_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "departure_at", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoRideRepo) Create(ride *models.Ride) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, ride); err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

func (r *MongoRideRepo) GetByID(id string) (*models.Ride, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var ride models.Ride
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&ride); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch ride with id %s: %w", id, err)
	}
	return &ride, nil
}

func (r *MongoRideRepo) Update(ride *models.Ride) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	ride.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": ride.ID}, bson.M{"$set": ride})
	if err != nil {
		return fmt.Errorf("failed to update ride with id %s: %w", ride.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride with id %s not found", ride.ID)
	}
	return nil
}

// Search returns published, upcoming rides matching the query.
func (r *MongoRideRepo) Search(q models.RideSearchQuery) ([]models.Ride, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"status": models.RideStatusPublished}

	from := q.From
	if from.IsZero() {
		from = time.Now()
	}
	departWindow := bson.M{"$gte": from}
	if !q.To.IsZero() {
		departWindow["$lte"] = q.To
	}
	filter["departure_at"] = departWindow

	if q.Depart != "" {
		filter["depart"] = bson.M{"$regex": "^" + q.Depart, "$options": "i"}
	}
	if q.Destination != "" {
		filter["destination"] = bson.M{"$regex": "^" + q.Destination, "$options": "i"}
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "departure_at", Value: 1}}).SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}
	return rides, nil
}

func (r *MongoRideRepo) ListByDriver(driverID string) ([]models.Ride, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "departure_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"driver_id": driverID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rides for driver %s: %w", driverID, err)
	}
	defer cursor.Close(ctx)

	var rides []models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode rides: %w", err)
	}
	return rides, nil
}

// SeatPassenger adds a passenger while capacity allows. The capacity check and
// the insert are a single conditional update, so two concurrent acceptances
// can never overbook the last seat.
func (r *MongoRideRepo) SeatPassenger(ctx context.Context, rideID, passengerID string) (bool, error) {
	filter := bson.M{
		"id":         rideID,
		"status":     models.RideStatusPublished,
		"passengers": bson.M{"$ne": passengerID},
		"$expr":      bson.M{"$lt": bson.A{bson.M{"$size": "$passengers"}, "$seats"}},
	}
	update := bson.M{
		"$addToSet": bson.M{"passengers": passengerID},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to seat passenger on ride %s: %w", rideID, err)
	}
	return result.MatchedCount > 0, nil
}

func (r *MongoRideRepo) UnseatPassenger(ctx context.Context, rideID, passengerID string) error {
	update := bson.M{
		"$pull":     bson.M{"passengers": passengerID},
		"$addToSet": bson.M{"cancellations": passengerID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": rideID}, update)
	if err != nil {
		return fmt.Errorf("failed to unseat passenger from ride %s: %w", rideID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride with id %s not found", rideID)
	}
	return nil
}

func (r *MongoRideRepo) SetStatus(id, status string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to set status on ride %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride with id %s not found", id)
	}
	return nil
}

// ArchiveDeparted archives published rides whose departure has passed.
func (r *MongoRideRepo) ArchiveDeparted() ([]string, error) {
	ctx, cancel := newContext(30 * time.Second)
	defer cancel()

	filter := bson.M{
		"status":       models.RideStatusPublished,
		"departure_at": bson.M{"$lt": time.Now()},
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find departed rides: %w", err)
	}
	var departed []struct {
		ID string `bson:"id"`
	}
	if err := cursor.All(ctx, &departed); err != nil {
		return nil, fmt.Errorf("failed to decode departed rides: %w", err)
	}

	if len(departed) == 0 {
		return nil, nil
	}

	if _, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.RideStatusArchived, "updated_at": time.Now()}}); err != nil {
		return nil, fmt.Errorf("failed to archive departed rides: %w", err)
	}

	ids := make([]string, 0, len(departed))
	for _, d := range departed {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *MongoRideRepo) DeleteByDriver(driverID string) error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"driver_id": driverID}); err != nil {
		return fmt.Errorf("failed to delete rides for driver %s: %w", driverID, err)
	}
	return nil
}
