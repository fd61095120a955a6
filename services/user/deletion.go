package user

import (
	"context"
	"fmt"

	"campusride/models"
	"campusride/utils"

	"go.uber.org/zap"
)

const deletionOperation = "account_deletion"

// DeleteAccount removes a user and everything tied to them. The cascade runs
// step by step, appending an audit entry after each one; the first failing
// step aborts so a retry resumes the remaining work. Already-completed steps
// are safe to repeat.
func (s *DefaultUserService) DeleteAccount(ctx context.Context, uid string) error {
	logger := utils.GetLogger()

	usr, err := s.Repo.GetByID(uid)
	if err != nil {
		return fmt.Errorf("failed to load user for deletion: %w", err)
	}
	if usr == nil {
		return utils.NewServiceError(utils.CodeNotFound, "user not found")
	}

	done, err := s.completedDeletionSteps(uid)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"bookings", func() error { return s.Bookings.DeleteByPassenger(uid) }},
		{"reservations", func() error { return s.Reservations.DeleteByPassenger(uid) }},
		{"rides", func() error { return s.deleteRides(ctx, uid) }},
		{"reviews", func() error { return s.Reviews.DeleteByPassenger(uid) }},
		{"wallet", func() error { return s.forfeitWallet(ctx, uid) }},
		{"messages", func() error { return s.Messages.DeleteByUID(uid) }},
		{"notifications", func() error { return s.clearNotifications(uid) }},
		{"files", func() error { return s.deleteFiles(ctx, uid, usr) }},
		{"user", func() error { return s.Repo.Delete(uid) }},
	}

	for _, step := range steps {
		if done[step.name] {
			logger.Info("skipping already-completed deletion step",
				zap.String("uid", uid), zap.String("step", step.name))
			continue
		}
		stepErr := step.run()
		if auditErr := s.Audit.Append(uid, deletionOperation, step.name, stepErr); auditErr != nil {
			logger.Error("failed to record deletion audit entry",
				zap.String("uid", uid), zap.String("step", step.name), zap.Error(auditErr))
		}
		if stepErr != nil {
			return fmt.Errorf("account deletion halted at step %q: %w", step.name, stepErr)
		}
	}

	if s.Mailer != nil && usr.Preferences.EmailEnabled {
		body := fmt.Sprintf("<p>Bonjour %s,</p><p>Votre compte CampusRide a bien été supprimé. Toutes vos données ont été effacées.</p>", usr.Name)
		if err := s.Mailer.Send(ctx, usr.Email, "Votre compte a été supprimé", body); err != nil {
			logger.Warn("failed to send deletion confirmation", zap.String("uid", uid), zap.Error(err))
		}
	}

	logger.Info("account deleted", zap.String("uid", uid))
	return nil
}

// completedDeletionSteps returns the step names a previous deletion attempt
// already finished, so a retried cascade only runs the remaining work.
func (s *DefaultUserService) completedDeletionSteps(uid string) (map[string]bool, error) {
	entries, err := s.Audit.ListByUID(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load deletion audit trail: %w", err)
	}
	done := make(map[string]bool)
	for _, entry := range entries {
		if entry.Operation == deletionOperation && entry.OK {
			done[entry.Step] = true
		}
	}
	return done, nil
}

// deleteRides notifies seated passengers of each still-published ride before
// removing the driver's rides.
func (s *DefaultUserService) deleteRides(ctx context.Context, uid string) error {
	rides, err := s.Rides.ListByDriver(uid)
	if err != nil {
		return fmt.Errorf("failed to list rides: %w", err)
	}
	for _, ride := range rides {
		if ride.Status != models.RideStatusPublished {
			continue
		}
		for _, pid := range ride.Passengers {
			if s.Notifier == nil {
				continue
			}
			if err := s.Notifier.Notify(ctx, pid, models.NotifRideCancelled,
				"Trajet annulé",
				fmt.Sprintf("Le trajet %s → %s du %s a été annulé par le conducteur.",
					ride.Depart, ride.Destination, ride.DepartureAt.Format("02/01 15:04")),
				map[string]string{"rideId": ride.ID}); err != nil {
				utils.GetLogger().Warn("failed to notify passenger of cancelled ride",
					zap.String("rideId", ride.ID), zap.String("passengerId", pid), zap.Error(err))
			}
		}
	}
	return s.Rides.DeleteByDriver(uid)
}

// forfeitWallet zeroes any remaining balance, then removes the wallet. The
// forfeit debit uses a uid-derived idempotency key so a retried cascade never
// double-debits.
func (s *DefaultUserService) forfeitWallet(ctx context.Context, uid string) error {
	wallet, err := s.Wallets.GetOrCreate(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet.BalanceCents > 0 {
		key := "deletion:" + uid
		if _, err := s.Wallets.AdjustBalance(ctx, uid, wallet.BalanceCents,
			models.DirectionDebit, key, models.LedgerKindForfeit, ""); err != nil {
			return fmt.Errorf("failed to forfeit balance: %w", err)
		}
	}
	return s.Wallets.Delete(ctx, uid)
}

// clearNotifications cancels queued reminder tasks, then drops the documents.
func (s *DefaultUserService) clearNotifications(uid string) error {
	keys, err := s.Notifications.ClearScheduled(uid)
	if err != nil {
		return fmt.Errorf("failed to clear scheduled reminders: %w", err)
	}
	for _, key := range keys {
		if s.Scheduler == nil {
			break
		}
		if err := s.Scheduler.Cancel(key); err != nil {
			utils.GetLogger().Warn("failed to cancel reminder task",
				zap.String("uid", uid), zap.String("taskId", key), zap.Error(err))
		}
	}
	return s.Notifications.DeleteByUID(uid)
}

// deleteFiles removes KYC documents and the avatar from object storage.
func (s *DefaultUserService) deleteFiles(ctx context.Context, uid string, usr *models.User) error {
	publicIDs, err := s.KYC.DeleteByUID(uid)
	if err != nil {
		return fmt.Errorf("failed to delete kyc documents: %w", err)
	}
	if s.Storage == nil {
		return nil
	}
	for _, id := range publicIDs {
		if err := s.Storage.DeleteFile(ctx, id); err != nil {
			utils.GetLogger().Warn("failed to delete kyc file",
				zap.String("uid", uid), zap.String("publicId", id), zap.Error(err))
		}
	}
	if usr.AvatarPublicID != "" {
		if err := s.Storage.DeleteFile(ctx, usr.AvatarPublicID); err != nil {
			utils.GetLogger().Warn("failed to delete avatar",
				zap.String("uid", uid), zap.Error(err))
		}
	}
	return nil
}
