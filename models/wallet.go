package models

import "time"

// Ledger entry directions.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Ledger entry kinds.
const (
	LedgerKindTopup      = "topup"
	LedgerKindRidePay    = "ridePayment"
	LedgerKindRideIncome = "rideIncome"
	LedgerKindRefund     = "refund"
	LedgerKindFee        = "fee"
	LedgerKindForfeit    = "forfeit"
)

// Wallet holds a user's balance in integer cents. The ledger lives in its own
// collection; the wallet document only carries the running balance.
type Wallet struct {
	UID          string    `bson:"uid" json:"uid"`
	BalanceCents int64     `bson:"balance_cents" json:"balanceCents"`
	Currency     string    `bson:"currency" json:"currency"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// LedgerEntry is one append-only wallet transaction. The idempotency key is
// unique across the collection: a retried adjustment with the same key reads
// back the existing entry instead of applying twice.
type LedgerEntry struct {
	ID             string    `bson:"id" json:"id"`
	UID            string    `bson:"uid" json:"uid"`
	IdempotencyKey string    `bson:"idempotency_key" json:"idempotencyKey"`
	Direction      string    `bson:"direction" json:"direction"`
	AmountCents    int64     `bson:"amount_cents" json:"amountCents"`
	Kind           string    `bson:"kind" json:"kind"`
	Ref            string    `bson:"ref,omitempty" json:"ref,omitempty"`
	BalanceAfter   int64     `bson:"balance_after" json:"balanceAfter"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// TopupIntent is returned when a card top-up payment intent is created.
type TopupIntent struct {
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
}
