package reservation

import (
	"context"
	"fmt"
	"time"

	"campusride/config"
	reservationRepo "campusride/database/repository/reservation"
	rideRepo "campusride/database/repository/ride"
	"campusride/models"
	notification "campusride/services/notification"
	"campusride/services/tasks"
	"campusride/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AutoDecider is the DecidedBy marker of the auto-accept task.
const AutoDecider = "auto"

// DefaultReservationService implements ReservationService.
type DefaultReservationService struct {
	Repo      reservationRepo.ReservationRepository
	Rides     rideRepo.RideRepository
	Notifier  notification.NotificationService
	Scheduler tasks.Scheduler
}

func (s *DefaultReservationService) Request(ctx context.Context, passengerID, rideID string) (*models.ReservationRequest, error) {
	logger := utils.GetLogger()

	ride, err := s.Rides.GetByID(rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	if ride.Status != models.RideStatusPublished {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "ride is not open for requests")
	}
	if ride.DriverID == passengerID {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "drivers cannot request a seat on their own ride")
	}
	if ride.SeatsLeft() <= 0 {
		return nil, utils.NewServiceError(utils.CodeRideFull, "no seats left on this ride")
	}
	for _, pid := range ride.Passengers {
		if pid == passengerID {
			return nil, utils.NewServiceError(utils.CodeInvalidRequest, "already seated on this ride")
		}
	}

	existing, err := s.Repo.FindActive(rideID, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}
	if existing != nil {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "an active request for this ride already exists")
	}

	req := &models.ReservationRequest{
		ID:          uuid.New().String(),
		RideID:      rideID,
		PassengerID: passengerID,
		Status:      models.ReservationPending,
		AutoAccept:  true,
		RequestedAt: time.Now(),
	}
	if err := s.Repo.Create(req); err != nil {
		return nil, fmt.Errorf("failed to create reservation request: %w", err)
	}

	delay := time.Duration(config.AppConfig.AutoAcceptSec) * time.Second
	if s.Scheduler != nil {
		if _, err := s.Scheduler.ScheduleAutoAccept(req.ID, req.RequestedAt.Add(delay)); err != nil {
			logger.Error("failed to schedule auto-accept",
				zap.String("reservationId", req.ID), zap.Error(err))
		}
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, ride.DriverID, models.NotifReservationRequested,
			"Nouvelle demande de place",
			fmt.Sprintf("Un passager demande une place sur votre trajet %s → %s.", ride.Depart, ride.Destination),
			map[string]string{"rideId": rideID, "reservationId": req.ID}); err != nil {
			logger.Warn("failed to notify driver of request", zap.String("rideId", rideID), zap.Error(err))
		}
	}

	logger.Info("reservation requested",
		zap.String("reservationId", req.ID), zap.String("rideId", rideID),
		zap.String("passengerId", passengerID), zap.Duration("autoAcceptIn", delay))
	return req, nil
}

func (s *DefaultReservationService) Accept(ctx context.Context, driverID, reservationID string) error {
	req, ride, err := s.loadPair(reservationID)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return utils.NewServiceError(utils.CodeForbidden, "only the driver can accept requests")
	}
	return s.accept(ctx, req, ride, driverID)
}

func (s *DefaultReservationService) Reject(ctx context.Context, driverID, reservationID string) error {
	req, ride, err := s.loadPair(reservationID)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return utils.NewServiceError(utils.CodeForbidden, "only the driver can reject requests")
	}

	applied, err := s.Repo.TransitionFromPending(reservationID, models.ReservationRejected, driverID)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	if !applied {
		return utils.NewServiceError(utils.CodeInvalidRequest, "request is no longer pending")
	}
	s.cancelAutoAccept(reservationID)

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, req.PassengerID, models.NotifReservationRejected,
			"Demande refusée",
			fmt.Sprintf("Votre demande pour le trajet %s → %s a été refusée.", ride.Depart, ride.Destination),
			map[string]string{"rideId": ride.ID, "reservationId": reservationID}); err != nil {
			utils.GetLogger().Warn("failed to notify passenger of rejection",
				zap.String("reservationId", reservationID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultReservationService) Cancel(ctx context.Context, passengerID, reservationID string) error {
	req, err := s.Repo.GetByID(reservationID)
	if err != nil {
		return fmt.Errorf("failed to fetch request: %w", err)
	}
	if req == nil {
		return utils.NewServiceError(utils.CodeNotFound, "request not found")
	}
	if req.PassengerID != passengerID {
		return utils.NewServiceError(utils.CodeForbidden, "only the requesting passenger can cancel")
	}

	applied, err := s.Repo.TransitionFromPending(reservationID, models.ReservationCancelled, passengerID)
	if err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	if !applied {
		return utils.NewServiceError(utils.CodeInvalidRequest, "request is no longer pending")
	}
	s.cancelAutoAccept(reservationID)
	return nil
}

func (s *DefaultReservationService) ListByRide(driverID, rideID string) ([]models.ReservationRequest, error) {
	ride, err := s.Rides.GetByID(rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	if ride.DriverID != driverID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "only the driver can list a ride's requests")
	}
	return s.Repo.ListByRide(rideID)
}

func (s *DefaultReservationService) ListByPassenger(passengerID string) ([]models.ReservationRequest, error) {
	return s.Repo.ListByPassenger(passengerID)
}

// HandleAutoAccept accepts the request if nobody decided first.
func (s *DefaultReservationService) HandleAutoAccept(ctx context.Context, reservationID string) error {
	req, err := s.Repo.GetByID(reservationID)
	if err != nil {
		return fmt.Errorf("failed to fetch request: %w", err)
	}
	if req == nil || req.Status != models.ReservationPending {
		return nil
	}
	ride, err := s.Rides.GetByID(req.RideID)
	if err != nil {
		return fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil || ride.Status != models.RideStatusPublished {
		// Ride went away before the task fired; leave the request pending so
		// the passenger sees why nothing happened.
		return nil
	}
	return s.accept(ctx, req, ride, AutoDecider)
}

// accept performs the pending→accepted transition and seats the passenger.
// The transition is conditional on the status still being pending and the
// seating is conditional on free capacity, so concurrent deciders and
// redelivered tasks converge on one outcome.
func (s *DefaultReservationService) accept(ctx context.Context, req *models.ReservationRequest, ride *models.Ride, decidedBy string) error {
	logger := utils.GetLogger()

	applied, err := s.Repo.TransitionFromPending(req.ID, models.ReservationAccepted, decidedBy)
	if err != nil {
		return fmt.Errorf("failed to accept request: %w", err)
	}
	if !applied {
		if decidedBy == AutoDecider {
			return nil
		}
		return utils.NewServiceError(utils.CodeInvalidRequest, "request is no longer pending")
	}

	seated, err := s.Rides.SeatPassenger(ctx, ride.ID, req.PassengerID)
	if err != nil {
		return fmt.Errorf("failed to seat passenger: %w", err)
	}
	if !seated {
		// The ride filled up between request and decision; roll the request
		// over to rejected so the passenger is not left believing they have a
		// seat.
		if err := s.Repo.SetStatus(req.ID, models.ReservationRejected, decidedBy); err != nil {
			logger.Error("failed to mark overbooked request rejected",
				zap.String("reservationId", req.ID), zap.Error(err))
		}
		if s.Notifier != nil {
			_ = s.Notifier.Notify(ctx, req.PassengerID, models.NotifReservationRejected,
				"Trajet complet",
				fmt.Sprintf("Le trajet %s → %s est complet.", ride.Depart, ride.Destination),
				map[string]string{"rideId": ride.ID})
		}
		return utils.NewServiceError(utils.CodeRideFull, "ride filled up before the request was accepted")
	}

	if decidedBy != AutoDecider {
		s.cancelAutoAccept(req.ID)
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, req.PassengerID, models.NotifReservationAccepted,
			"Demande acceptée",
			fmt.Sprintf("Votre place sur le trajet %s → %s est confirmée. Vous pouvez procéder au paiement.",
				ride.Depart, ride.Destination),
			map[string]string{"rideId": ride.ID, "reservationId": req.ID}); err != nil {
			logger.Warn("failed to notify passenger of acceptance",
				zap.String("reservationId", req.ID), zap.Error(err))
		}
		if decidedBy == AutoDecider {
			_ = s.Notifier.Notify(ctx, ride.DriverID, models.NotifReservationAccepted,
				"Demande acceptée automatiquement",
				fmt.Sprintf("La demande d'un passager sur votre trajet %s → %s a été acceptée automatiquement.",
					ride.Depart, ride.Destination),
				map[string]string{"rideId": ride.ID, "reservationId": req.ID})
		}
	}

	logger.Info("reservation accepted",
		zap.String("reservationId", req.ID), zap.String("decidedBy", decidedBy))
	return nil
}

func (s *DefaultReservationService) loadPair(reservationID string) (*models.ReservationRequest, *models.Ride, error) {
	req, err := s.Repo.GetByID(reservationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	if req == nil {
		return nil, nil, utils.NewServiceError(utils.CodeNotFound, "request not found")
	}
	ride, err := s.Rides.GetByID(req.RideID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch ride: %w", err)
	}
	if ride == nil {
		return nil, nil, utils.NewServiceError(utils.CodeNotFound, "ride not found")
	}
	return req, ride, nil
}

func (s *DefaultReservationService) cancelAutoAccept(reservationID string) {
	if s.Scheduler == nil {
		return
	}
	if err := s.Scheduler.Cancel("autoaccept:" + reservationID); err != nil {
		utils.GetLogger().Warn("failed to cancel auto-accept task",
			zap.String("reservationId", reservationID), zap.Error(err))
	}
}
