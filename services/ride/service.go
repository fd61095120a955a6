package ride

import (
	"context"
	"fmt"
	"time"

	bookingRepo "campusride/database/repository/booking"
	rideRepo "campusride/database/repository/ride"
	userRepo "campusride/database/repository/user"
	walletRepo "campusride/database/repository/wallet"
	"campusride/models"
	notification "campusride/services/notification"
	"campusride/services/tasks"
	"campusride/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRideService implements RideService.
type DefaultRideService struct {
	Repo      rideRepo.RideRepository
	Users     userRepo.UserRepository
	Bookings  bookingRepo.BookingRepository
	Wallets   walletRepo.WalletRepository
	Notifier  notification.NotificationService
	Scheduler tasks.Scheduler
}

func (s *DefaultRideService) Publish(ctx context.Context, driverID string, req PublishRequest) (*models.Ride, error) {
	driver, err := s.Users.GetByID(driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch driver: %w", err)
	}
	if driver == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "driver not found")
	}
	if !driver.IsDriver || driver.KYCStatus != models.KYCApproved {
		return nil, utils.NewServiceError(utils.CodeForbidden, "publishing rides requires an approved driver profile")
	}

	departureAt, err := time.Parse(time.RFC3339, req.DepartureAt)
	if err != nil {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "departureAt must be RFC 3339")
	}
	if departureAt.Before(time.Now()) {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "departure must be in the future")
	}

	pricingMode := req.PricingMode
	switch pricingMode {
	case "":
		pricingMode = models.PricingPerSeat
	case models.PricingPerSeat, models.PricingFixed:
	default:
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "unknown pricing mode")
	}

	now := time.Now()
	ride := &models.Ride{
		ID:            uuid.New().String(),
		DriverID:      driver.ID,
		DriverEmail:   driver.Email,
		Depart:        req.Depart,
		Destination:   req.Destination,
		DepartureAt:   departureAt,
		Seats:         req.Seats,
		PriceCents:    req.PriceCents,
		PricingMode:   pricingMode,
		Passengers:    []string{},
		Cancellations: []string{},
		Status:        models.RideStatusPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ride); err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	utils.GetLogger().Info("ride published",
		zap.String("rideId", ride.ID), zap.String("driverId", driverID),
		zap.Time("departureAt", departureAt), zap.Int("seats", ride.Seats))
	return ride, nil
}

func (s *DefaultRideService) GetRide(id string) (*models.Ride, error) {
	ride, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	return ride, nil
}

func (s *DefaultRideService) Search(q models.RideSearchQuery) ([]models.Ride, error) {
	return s.Repo.Search(q)
}

func (s *DefaultRideService) ListByDriver(driverID string) ([]models.Ride, error) {
	return s.Repo.ListByDriver(driverID)
}

func (s *DefaultRideService) UpdateRide(ctx context.Context, driverID, rideID string, req UpdateRequest) (*models.Ride, error) {
	ride, err := s.GetRide(rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "only the driver can edit a ride")
	}
	if ride.Status != models.RideStatusPublished {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "only published rides can be edited")
	}

	if req.DepartureAt != nil {
		departureAt, err := time.Parse(time.RFC3339, *req.DepartureAt)
		if err != nil {
			return nil, utils.NewServiceError(utils.CodeInvalidRequest, "departureAt must be RFC 3339")
		}
		if departureAt.Before(time.Now()) {
			return nil, utils.NewServiceError(utils.CodeInvalidRequest, "departure must be in the future")
		}
		ride.DepartureAt = departureAt
	}
	if req.Seats != nil {
		if *req.Seats < len(ride.Passengers) {
			return nil, utils.NewServiceError(utils.CodeInvalidRequest,
				fmt.Sprintf("seats cannot drop below the %d passengers already seated", len(ride.Passengers)))
		}
		ride.Seats = *req.Seats
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, utils.NewServiceError(utils.CodeInvalidRequest, "price cannot be negative")
		}
		ride.PriceCents = *req.PriceCents
	}
	ride.UpdatedAt = time.Now()

	if err := s.Repo.Update(ride); err != nil {
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}
	return ride, nil
}

func (s *DefaultRideService) CancelRide(ctx context.Context, driverID, rideID string) error {
	logger := utils.GetLogger()

	ride, err := s.GetRide(rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return utils.NewServiceError(utils.CodeForbidden, "only the driver can cancel a ride")
	}
	if ride.Status != models.RideStatusPublished {
		return utils.NewServiceError(utils.CodeInvalidRequest, "ride is not published")
	}

	if err := s.Repo.SetStatus(rideID, models.RideStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel ride: %w", err)
	}

	bookings, err := s.Bookings.ListByRide(rideID)
	if err != nil {
		return fmt.Errorf("failed to list bookings for refund: %w", err)
	}
	for _, b := range bookings {
		if b.PaymentStatus != models.BookingPaid {
			continue
		}
		if err := s.refundBooking(ctx, ride, &b); err != nil {
			logger.Error("failed to refund booking on ride cancellation",
				zap.String("rideId", rideID), zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
	}

	for _, pid := range ride.Passengers {
		if s.Notifier == nil {
			break
		}
		if err := s.Notifier.Notify(ctx, pid, models.NotifRideCancelled,
			"Trajet annulé",
			fmt.Sprintf("Le trajet %s → %s du %s a été annulé. Votre paiement a été remboursé.",
				ride.Depart, ride.Destination, ride.DepartureAt.Format("02/01 15:04")),
			map[string]string{"rideId": rideID}); err != nil {
			logger.Warn("failed to notify passenger of cancellation",
				zap.String("rideId", rideID), zap.String("passengerId", pid), zap.Error(err))
		}
	}

	logger.Info("ride cancelled", zap.String("rideId", rideID), zap.Int("refunds", len(bookings)))
	return nil
}

// refundBooking credits a wallet refund and cancels the reminder. Card
// bookings are refunded to the wallet too, keeping the money inside the
// platform ledger.
func (s *DefaultRideService) refundBooking(ctx context.Context, ride *models.Ride, b *models.Booking) error {
	key := "refund:" + b.ID
	if _, err := s.Wallets.AdjustBalance(ctx, b.PassengerID, b.AmountCents,
		models.DirectionCredit, key, models.LedgerKindRefund, ride.ID); err != nil {
		return err
	}
	if err := s.Bookings.SetPaymentStatus(b.ID, models.BookingRefunded); err != nil {
		return err
	}
	if err := s.Bookings.SetTripStatus(b.ID, models.TripCancelled); err != nil {
		return err
	}
	if s.Scheduler != nil {
		taskID := fmt.Sprintf("reminder:%s:%s", b.PassengerID, ride.ID)
		if err := s.Scheduler.Cancel(taskID); err != nil {
			utils.GetLogger().Warn("failed to cancel reminder on refund",
				zap.String("taskId", taskID), zap.Error(err))
		}
	}
	return nil
}

// ArchiveDeparted archives rides whose departure time has passed and marks
// their bookings completed.
func (s *DefaultRideService) ArchiveDeparted(ctx context.Context) (int, error) {
	ids, err := s.Repo.ArchiveDeparted()
	if err != nil {
		return 0, fmt.Errorf("failed to archive departed rides: %w", err)
	}
	for _, rideID := range ids {
		bookings, err := s.Bookings.ListByRide(rideID)
		if err != nil {
			utils.GetLogger().Warn("failed to list bookings of archived ride",
				zap.String("rideId", rideID), zap.Error(err))
			continue
		}
		for _, b := range bookings {
			if b.TripStatus != models.TripUpcoming {
				continue
			}
			if err := s.Bookings.SetTripStatus(b.ID, models.TripCompleted); err != nil {
				utils.GetLogger().Warn("failed to complete booking",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
	}
	return len(ids), nil
}
