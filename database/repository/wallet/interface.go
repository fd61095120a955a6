package walletRepo

import (
	"context"

	"campusride/models"
)

// WalletRepository defines methods for wallet and ledger data access. Balance
// moves only through AdjustBalance and TransferForRide, both of which run
// inside a MongoDB transaction and honor idempotency keys.
type WalletRepository interface {
	// GetOrCreate returns the wallet for a uid, creating a zero-balance wallet
	// on first access.
	GetOrCreate(ctx context.Context, uid string) (*models.Wallet, error)
	// ListLedger returns the newest ledger entries for a uid.
	ListLedger(ctx context.Context, uid string, limit int64) ([]models.LedgerEntry, error)
	// AdjustBalance applies a single credit or debit. A repeated call with the
	// same idempotency key returns the previously written entry untouched. A
	// debit that would push the balance negative fails with INSUFFICIENT_FUNDS.
	AdjustBalance(ctx context.Context, uid string, amountCents int64, direction, idempotencyKey, kind, ref string) (*models.LedgerEntry, error)
	// TransferForRide atomically debits the payer (amount + fee) and credits
	// the payee (amount), writing one ledger entry per side plus a fee entry.
	// The whole transfer aborts when the payer cannot cover amount + fee.
	TransferForRide(ctx context.Context, fromUID, toUID string, amountCents, feeCents int64, idempotencyKey, rideID string) error
	// Delete removes a wallet document (account deletion cascade).
	Delete(ctx context.Context, uid string) error
}
