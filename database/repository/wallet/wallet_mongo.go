package walletRepo

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

// MongoWalletRepo implements WalletRepository using MongoDB.
type MongoWalletRepo struct {
	walletColl *mongo.Collection
	ledgerColl *mongo.Collection
}

// NewMongoWalletRepo creates a new WalletRepository using MongoDB.
func NewMongoWalletRepo() WalletRepository {
	db := database.DB()
	repo := &MongoWalletRepo{
		walletColl: db.Collection("wallets"),
		ledgerColl: db.Collection("wallet_ledger"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoWalletRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.walletColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create wallet index: %w", err)
	}

	// The unique key index is what makes retried adjustments single-shot even
	// if two retries race past the in-transaction lookup.
	ledgerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.ledgerColl.Indexes().CreateMany(ctx, ledgerIndexes); err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}
	return nil
}

// GetOrCreate returns the wallet for a uid, creating it on first access.
func (r *MongoWalletRepo) GetOrCreate(ctx context.Context, uid string) (*models.Wallet, error) {
	now := time.Now()
	filter := bson.M{"uid": uid}
	update := bson.M{"$setOnInsert": models.Wallet{
		UID:          uid,
		BalanceCents: 0,
		Currency:     "EUR",
		CreatedAt:    now,
		UpdatedAt:    now,
	}}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var w models.Wallet
	if err := r.walletColl.FindOneAndUpdate(ctx, filter, update, opts).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to get or create wallet for %s: %w", uid, err)
	}
	return &w, nil
}

// ListLedger returns the newest ledger entries for a uid.
func (r *MongoWalletRepo) ListLedger(ctx context.Context, uid string, limit int64) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.ledgerColl.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return entries, nil
}

// Delete removes a wallet document.
func (r *MongoWalletRepo) Delete(ctx context.Context, uid string) error {
	if _, err := r.walletColl.DeleteOne(ctx, bson.M{"uid": uid}); err != nil {
		return fmt.Errorf("failed to delete wallet for %s: %w", uid, err)
	}
	return nil
}
