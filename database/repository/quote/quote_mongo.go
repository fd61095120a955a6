package quoteRepo

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

// QuoteRepository defines methods for business quote data access.
type QuoteRepository interface {
	Insert(q *models.BusinessQuote) error
	List() ([]models.BusinessQuote, error)
}

// MongoQuoteRepo implements QuoteRepository using MongoDB.
type MongoQuoteRepo struct {
	coll *mongo.Collection
}

// NewMongoQuoteRepo creates a new QuoteRepository using MongoDB.
func NewMongoQuoteRepo() QuoteRepository {
	return &MongoQuoteRepo{coll: database.DB().Collection("business_quotes")}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoQuoteRepo) Insert(q *models.BusinessQuote) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	q.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("failed to insert business quote: %w", err)
	}
	return nil
}

func (r *MongoQuoteRepo) List() ([]models.BusinessQuote, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list business quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []models.BusinessQuote
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode business quotes: %w", err)
	}
	return quotes, nil
}
