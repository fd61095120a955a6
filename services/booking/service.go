package booking

import (
	"context"
	"fmt"
	"time"

	"campusride/config"
	bookingRepo "campusride/database/repository/booking"
	reservationRepo "campusride/database/repository/reservation"
	rideRepo "campusride/database/repository/ride"
	userRepo "campusride/database/repository/user"
	walletRepo "campusride/database/repository/wallet"
	"campusride/models"
	"campusride/services/mailer"
	notification "campusride/services/notification"
	"campusride/services/tasks"
	"campusride/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Reminders fire this long before departure.
const reminderLead = time.Hour

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Rides        rideRepo.RideRepository
	Reservations reservationRepo.ReservationRepository
	Users        userRepo.UserRepository
	Wallets      walletRepo.WalletRepository
	Notifier     notification.NotificationService
	Mailer       mailer.Mailer
	Scheduler    tasks.Scheduler
}

func (s *DefaultBookingService) CreateCardIntent(ctx context.Context, passengerID, rideID string) (*models.TopupIntent, error) {
	ride, err := s.acceptedRide(passengerID, rideID)
	if err != nil {
		return nil, err
	}
	price := ride.SeatPriceCents()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(price),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("uid", passengerID)
	params.AddMetadata("purpose", "ride_booking")
	params.AddMetadata("rideId", rideID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &models.TopupIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  price,
		Currency:     "EUR",
	}, nil
}

func (s *DefaultBookingService) Confirm(ctx context.Context, passengerID string, req ConfirmRequest) (*models.Booking, error) {
	logger := utils.GetLogger()

	ride, err := s.acceptedRide(passengerID, req.RideID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findBooking(req.RideID, passengerID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.PaymentStatus == models.BookingPaid {
		return existing, nil
	}

	passenger, err := s.Users.GetByID(passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch passenger: %w", err)
	}
	if passenger == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "passenger not found")
	}

	price := ride.SeatPriceCents()
	fee := price * int64(config.AppConfig.WalletFeePct) / 100
	driverNet := price - fee

	switch req.PaymentMethod {
	case models.PaymentMethodWallet:
	case models.PaymentMethodCard:
		if err := s.landCardPayment(ctx, passengerID, req.IntentID, req.RideID, price); err != nil {
			return nil, err
		}
	default:
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "unknown payment method")
	}

	// The booking record is created pending before the debit runs, so its id
	// can serve as the transfer's idempotency key. A retried confirmation
	// resumes the pending record and replays the transfer under the same key;
	// a fresh booking after a refund gets a fresh key and is charged again.
	booking := existing
	if booking == nil {
		now := time.Now()
		booking = &models.Booking{
			ID:             uuid.New().String(),
			RideID:         ride.ID,
			PassengerID:    passengerID,
			PassengerEmail: passenger.Email,
			AmountCents:    price,
			PaymentMethod:  req.PaymentMethod,
			PaymentStatus:  models.BookingPending,
			MeetingPoint:   utils.ResolveMeetingPoint(passenger.Campus, ride.Depart),
			TripStatus:     models.TripUpcoming,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.Repo.Create(booking); err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}
	}
	transferKey := "ridepay:" + booking.ID

	// Payer is debited driverNet + fee = the full seat price.
	if err := s.Wallets.TransferForRide(ctx, passengerID, ride.DriverID, driverNet, fee, transferKey, req.RideID); err != nil {
		return nil, err
	}

	if err := s.Repo.SetPaymentStatus(booking.ID, models.BookingPaid); err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}
	booking.PaymentStatus = models.BookingPaid

	s.afterConfirm(ctx, ride, passenger, booking)

	logger.Info("booking confirmed",
		zap.String("bookingId", booking.ID), zap.String("rideId", ride.ID),
		zap.String("passengerId", passengerID), zap.Int64("amountCents", price),
		zap.String("method", req.PaymentMethod))
	return booking, nil
}

// landCardPayment verifies the Stripe intent and credits the charged amount to
// the passenger's wallet, from where the regular transfer debits it. The
// intent id is the idempotency key, so a retried confirmation credits once.
func (s *DefaultBookingService) landCardPayment(ctx context.Context, passengerID, intentID, rideID string, price int64) error {
	if intentID == "" {
		return utils.NewServiceError(utils.CodeInvalidRequest, "card payments require an intentId")
	}
	intent, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	if intent.Metadata["uid"] != passengerID || intent.Metadata["rideId"] != rideID {
		return utils.NewServiceError(utils.CodeForbidden, "payment intent does not match this booking")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return utils.NewServiceError(utils.CodeInvalidRequest,
			fmt.Sprintf("payment not completed (status %s)", intent.Status))
	}
	if intent.Amount < price {
		return utils.NewServiceError(utils.CodeInvalidRequest, "payment amount does not cover the seat price")
	}
	_, err = s.Wallets.AdjustBalance(ctx, passengerID, intent.Amount,
		models.DirectionCredit, intentID, models.LedgerKindTopup, rideID)
	return err
}

// afterConfirm handles the non-critical follow-ups: reminder, notifications
// and receipt mail. Failures are logged, never returned; the booking stands.
func (s *DefaultBookingService) afterConfirm(ctx context.Context, ride *models.Ride, passenger *models.User, b *models.Booking) {
	logger := utils.GetLogger()

	if s.Notifier != nil {
		fireAt := ride.DepartureAt.Add(-reminderLead)
		if fireAt.After(time.Now()) {
			if err := s.Notifier.ScheduleRideReminder(ctx, passenger.ID, ride.ID,
				"Départ dans une heure",
				fmt.Sprintf("Votre trajet %s → %s part à %s. Rendez-vous : %s.",
					ride.Depart, ride.Destination, ride.DepartureAt.Format("15:04"), b.MeetingPoint.Label),
				fireAt); err != nil {
				logger.Warn("failed to schedule departure reminder",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}

		if err := s.Notifier.Notify(ctx, ride.DriverID, models.NotifPaymentConfirmation,
			"Place payée",
			fmt.Sprintf("%s a payé sa place sur votre trajet %s → %s.",
				passenger.Name, ride.Depart, ride.Destination),
			map[string]string{"rideId": ride.ID, "bookingId": b.ID}); err != nil {
			logger.Warn("failed to notify driver of payment", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	if s.Mailer != nil && passenger.Preferences.EmailEnabled {
		body := fmt.Sprintf(
			"<p>Bonjour %s,</p><p>Votre réservation est confirmée.</p>"+
				"<ul><li>Trajet : %s → %s</li><li>Départ : %s</li><li>Point de rendez-vous : %s</li><li>Montant : %.2f €</li></ul>",
			passenger.Name, ride.Depart, ride.Destination,
			ride.DepartureAt.Format("02/01/2006 15:04"), b.MeetingPoint.Label,
			float64(b.AmountCents)/100)
		if err := s.Mailer.Send(ctx, passenger.Email, "Réservation confirmée", body); err != nil {
			logger.Warn("failed to send receipt", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
}

func (s *DefaultBookingService) GetBooking(uid, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "booking not found")
	}
	if b.PassengerID != uid {
		ride, err := s.Rides.GetByID(b.RideID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch ride: %w", err)
		}
		if ride == nil || ride.DriverID != uid {
			return nil, utils.NewServiceError(utils.CodeForbidden, "booking belongs to another user")
		}
	}
	return b, nil
}

func (s *DefaultBookingService) ListByPassenger(passengerID string) ([]models.Booking, error) {
	return s.Repo.ListByPassenger(passengerID)
}

func (s *DefaultBookingService) ListByRide(driverID, rideID string) ([]models.Booking, error) {
	ride, err := s.Rides.GetByID(rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	if ride.DriverID != driverID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "only the driver can list a ride's bookings")
	}
	return s.Repo.ListByRide(rideID)
}

func (s *DefaultBookingService) CancelByPassenger(ctx context.Context, passengerID, bookingID string) error {
	logger := utils.GetLogger()

	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return fmt.Errorf("failed to fetch booking: %w", err)
	}
	if b == nil {
		return utils.NewServiceError(utils.CodeNotFound, "booking not found")
	}
	if b.PassengerID != passengerID {
		return utils.NewServiceError(utils.CodeForbidden, "booking belongs to another user")
	}
	if b.TripStatus != models.TripUpcoming {
		return utils.NewServiceError(utils.CodeInvalidRequest, "only upcoming trips can be cancelled")
	}

	ride, err := s.Rides.GetByID(b.RideID)
	if err != nil {
		return fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride != nil && !ride.DepartureAt.After(time.Now()) {
		return utils.NewServiceError(utils.CodeInvalidRequest, "departure has already passed")
	}

	if err := s.Rides.UnseatPassenger(ctx, b.RideID, passengerID); err != nil {
		return fmt.Errorf("failed to free the seat: %w", err)
	}

	// The reservation is consumed with the booking. Booking the ride again
	// means requesting a seat again, which re-runs the capacity check.
	resv, err := s.Reservations.FindActive(b.RideID, passengerID)
	if err != nil {
		return fmt.Errorf("failed to check reservation: %w", err)
	}
	if resv != nil {
		if err := s.Reservations.SetStatus(resv.ID, models.ReservationCancelled, passengerID); err != nil {
			return fmt.Errorf("failed to close reservation: %w", err)
		}
	}

	if b.PaymentStatus == models.BookingPaid {
		key := "refund:" + b.ID
		if _, err := s.Wallets.AdjustBalance(ctx, passengerID, b.AmountCents,
			models.DirectionCredit, key, models.LedgerKindRefund, b.RideID); err != nil {
			return fmt.Errorf("failed to refund booking: %w", err)
		}
		if err := s.Repo.SetPaymentStatus(bookingID, models.BookingRefunded); err != nil {
			return fmt.Errorf("failed to mark booking refunded: %w", err)
		}
	}
	if err := s.Repo.SetTripStatus(bookingID, models.TripCancelled); err != nil {
		return fmt.Errorf("failed to mark trip cancelled: %w", err)
	}

	if s.Scheduler != nil {
		taskID := fmt.Sprintf("reminder:%s:%s", passengerID, b.RideID)
		if err := s.Scheduler.Cancel(taskID); err != nil {
			logger.Warn("failed to cancel reminder", zap.String("taskId", taskID), zap.Error(err))
		}
	}

	if ride != nil && s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, ride.DriverID, models.NotifRideCancelled,
			"Passager désisté",
			fmt.Sprintf("Un passager a annulé sa place sur votre trajet %s → %s. La place est de nouveau disponible.",
				ride.Depart, ride.Destination),
			map[string]string{"rideId": b.RideID, "bookingId": bookingID}); err != nil {
			logger.Warn("failed to notify driver of passenger cancellation",
				zap.String("bookingId", bookingID), zap.Error(err))
		}
	}

	logger.Info("booking cancelled by passenger",
		zap.String("bookingId", bookingID), zap.String("passengerId", passengerID))
	return nil
}

// acceptedRide loads the ride and checks that the passenger holds an accepted
// reservation on it.
func (s *DefaultBookingService) acceptedRide(passengerID, rideID string) (*models.Ride, error) {
	ride, err := s.Rides.GetByID(rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	if ride.Status != models.RideStatusPublished {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "ride is not open for booking")
	}

	req, err := s.Reservations.FindActive(rideID, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reservation: %w", err)
	}
	if req == nil || req.Status != models.ReservationAccepted {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "booking requires an accepted reservation")
	}

	seated := false
	for _, pid := range ride.Passengers {
		if pid == passengerID {
			seated = true
			break
		}
	}
	if !seated {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "no seat held on this ride")
	}
	return ride, nil
}

// findBooking returns the passenger's live booking on a ride: paid, or a
// pending record left by an interrupted confirmation. Refunded and cancelled
// bookings stay in the history and are skipped, so a new booking after a
// cancellation gets a fresh record.
func (s *DefaultBookingService) findBooking(rideID, passengerID string) (*models.Booking, error) {
	bookings, err := s.Repo.ListByPassenger(passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	for i := range bookings {
		b := &bookings[i]
		if b.RideID != rideID {
			continue
		}
		if b.PaymentStatus == models.BookingRefunded || b.TripStatus == models.TripCancelled {
			continue
		}
		return b, nil
	}
	return nil, nil
}
