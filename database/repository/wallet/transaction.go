package walletRepo

import (
	"context"
	"fmt"
	"time"

	"campusride/models"
	"campusride/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdjustBalance applies a single credit or debit inside a MongoDB transaction.
// The sequence is: look up the ledger entry by idempotency key (short-circuit
// when already applied), read the balance, compute the new balance, reject a
// negative result, then write wallet and ledger together.
func (r *MongoWalletRepo) AdjustBalance(ctx context.Context, uid string, amountCents int64, direction, idempotencyKey, kind, ref string) (*models.LedgerEntry, error) {
	if amountCents <= 0 {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "amount must be positive")
	}
	if direction != models.DirectionCredit && direction != models.DirectionDebit {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "unknown direction "+direction)
	}
	if idempotencyKey == "" {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "missing idempotency key")
	}

	var entry *models.LedgerEntry
	txnFn := func(sc mongo.SessionContext) error {
		existing, err := r.findLedgerEntry(sc, idempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			entry = existing
			return nil
		}

		applied, err := r.applyAdjustment(sc, uid, amountCents, direction, idempotencyKey, kind, ref)
		if err != nil {
			return err
		}
		entry = applied
		return nil
	}

	if err := r.runTransaction(ctx, txnFn); err != nil {
		return nil, err
	}
	return entry, nil
}

// TransferForRide moves fare money from passenger to driver in one
// transaction. The payer side carries amount + fee; the fee lands on its own
// ledger entry so statements show the platform cut explicitly.
func (r *MongoWalletRepo) TransferForRide(ctx context.Context, fromUID, toUID string, amountCents, feeCents int64, idempotencyKey, rideID string) error {
	if amountCents <= 0 || feeCents < 0 {
		return utils.NewServiceError(utils.CodeInvalidRequest, "invalid transfer amounts")
	}
	if idempotencyKey == "" {
		return utils.NewServiceError(utils.CodeInvalidRequest, "missing idempotency key")
	}

	debitKey := idempotencyKey + ":debit"
	creditKey := idempotencyKey + ":credit"
	feeKey := idempotencyKey + ":fee"

	txnFn := func(sc mongo.SessionContext) error {
		// The debit entry is written first, so its presence means the whole
		// transfer already committed once.
		existing, err := r.findLedgerEntry(sc, debitKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		if _, err := r.applyAdjustment(sc, fromUID, amountCents, models.DirectionDebit, debitKey, models.LedgerKindRidePay, rideID); err != nil {
			return err
		}
		if feeCents > 0 {
			if _, err := r.applyAdjustment(sc, fromUID, feeCents, models.DirectionDebit, feeKey, models.LedgerKindFee, rideID); err != nil {
				return err
			}
		}
		if _, err := r.applyAdjustment(sc, toUID, amountCents, models.DirectionCredit, creditKey, models.LedgerKindRideIncome, rideID); err != nil {
			return err
		}
		return nil
	}

	return r.runTransaction(ctx, txnFn)
}

// findLedgerEntry looks up a ledger entry by idempotency key within the session.
func (r *MongoWalletRepo) findLedgerEntry(sc mongo.SessionContext, key string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.ledgerColl.FindOne(sc, bson.M{"idempotency_key": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return &entry, nil
}

// applyAdjustment moves one wallet balance and appends the matching ledger
// entry. Must run inside a session.
func (r *MongoWalletRepo) applyAdjustment(sc mongo.SessionContext, uid string, amountCents int64, direction, key, kind, ref string) (*models.LedgerEntry, error) {
	wallet, err := r.GetOrCreate(sc, uid)
	if err != nil {
		return nil, err
	}

	delta := amountCents
	if direction == models.DirectionDebit {
		delta = -amountCents
	}
	newBalance := wallet.BalanceCents + delta
	if newBalance < 0 {
		return nil, utils.NewServiceError(utils.CodeInsufficientFunds, "insufficient wallet balance")
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{"balance_cents": newBalance, "updated_at": now}}
	result, err := r.walletColl.UpdateOne(sc, bson.M{"uid": uid, "balance_cents": wallet.BalanceCents}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}
	if result.MatchedCount == 0 {
		// Balance moved under us inside the transaction window; abort so the
		// driver retries the whole transaction.
		return nil, fmt.Errorf("wallet for %s changed concurrently", uid)
	}

	entry := &models.LedgerEntry{
		ID:             uuid.New().String(),
		UID:            uid,
		IdempotencyKey: key,
		Direction:      direction,
		AmountCents:    amountCents,
		Kind:           kind,
		Ref:            ref,
		BalanceAfter:   newBalance,
		CreatedAt:      now,
	}
	if _, err := r.ledgerColl.InsertOne(sc, entry); err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return entry, nil
}

// runTransaction wraps a function in a MongoDB session transaction.
func (r *MongoWalletRepo) runTransaction(ctx context.Context, txnFn func(mongo.SessionContext) error) error {
	client := r.walletColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}
	return nil
}
