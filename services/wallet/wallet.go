package wallet

import (
	"context"
	"fmt"

	walletRepo "campusride/database/repository/wallet"
	"campusride/models"
	"campusride/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Minimum and maximum card top-up amounts, in cents.
const (
	MinTopupCents = 500
	MaxTopupCents = 20000
)

// WalletService exposes balance reads and card top-ups. Ride payments and
// refunds go through the ledger directly from the booking flow.
type WalletService interface {
	GetWallet(ctx context.Context, uid string) (*models.Wallet, error)
	ListLedger(ctx context.Context, uid string, limit int64) ([]models.LedgerEntry, error)
	// CreateTopupIntent opens a Stripe payment intent for a card top-up and
	// returns its client secret for the app to confirm.
	CreateTopupIntent(ctx context.Context, uid string, amountCents int64) (*models.TopupIntent, error)
	// ConfirmTopup verifies a succeeded payment intent and credits the wallet.
	// The intent id doubles as the idempotency key, so confirming twice
	// credits once.
	ConfirmTopup(ctx context.Context, uid, intentID string) (*models.LedgerEntry, error)
}

// DefaultWalletService implements WalletService on the ledger repository and
// the Stripe API.
type DefaultWalletService struct {
	Repo walletRepo.WalletRepository
}

func (s *DefaultWalletService) GetWallet(ctx context.Context, uid string) (*models.Wallet, error) {
	return s.Repo.GetOrCreate(ctx, uid)
}

func (s *DefaultWalletService) ListLedger(ctx context.Context, uid string, limit int64) ([]models.LedgerEntry, error) {
	return s.Repo.ListLedger(ctx, uid, limit)
}

func (s *DefaultWalletService) CreateTopupIntent(ctx context.Context, uid string, amountCents int64) (*models.TopupIntent, error) {
	if amountCents < MinTopupCents || amountCents > MaxTopupCents {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest,
			fmt.Sprintf("top-up amount must be between %d and %d cents", MinTopupCents, MaxTopupCents))
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("uid", uid)
	params.AddMetadata("purpose", "wallet_topup")

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	utils.GetLogger().Info("top-up intent created",
		zap.String("uid", uid), zap.String("intentId", intent.ID), zap.Int64("amountCents", amountCents))

	return &models.TopupIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  amountCents,
		Currency:     "EUR",
	}, nil
}

func (s *DefaultWalletService) ConfirmTopup(ctx context.Context, uid, intentID string) (*models.LedgerEntry, error) {
	intent, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	if intent.Metadata["uid"] != uid || intent.Metadata["purpose"] != "wallet_topup" {
		return nil, utils.NewServiceError(utils.CodeForbidden, "payment intent does not belong to this wallet")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest,
			fmt.Sprintf("payment not completed (status %s)", intent.Status))
	}

	entry, err := s.Repo.AdjustBalance(ctx, uid, intent.Amount,
		models.DirectionCredit, intentID, models.LedgerKindTopup, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}
	return entry, nil
}
