package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"campusride/config"
	"campusride/models"

	"github.com/hibiken/asynq"
)

// Task type names handled by the background worker.
const (
	TypeReservationAutoAccept = "reservation:autoAccept"
	TypeReminderSend          = "reminder:send"
)

// QueueName is the asynq queue all CampusRide tasks run on.
const QueueName = "default"

// AutoAcceptPayload is the asynq payload for a scheduled reservation
// auto-accept.
type AutoAcceptPayload struct {
	ReservationID string `json:"reservationId"`
}

// Scheduler enqueues and cancels delayed tasks. Implemented over asynq; the
// fake in tests mirrors this contract.
type Scheduler interface {
	// ScheduleAutoAccept queues the auto-accept transition for a reservation
	// and returns the task id.
	ScheduleAutoAccept(reservationID string, at time.Time) (string, error)
	// ScheduleReminder queues a ride reminder push and returns the task id,
	// which is stored as the notification's schedule key.
	ScheduleReminder(payload models.ReminderPayload, at time.Time) (string, error)
	// Cancel drops a queued task by id. Cancelling an already-processed task
	// is not an error.
	Cancel(taskID string) error
}

// AsynqScheduler is the production Scheduler.
type AsynqScheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// RedisOpt builds the asynq Redis connection options from config.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}
}

// NewAsynqScheduler creates the production Scheduler.
func NewAsynqScheduler() *AsynqScheduler {
	opt := RedisOpt()
	return &AsynqScheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

func (s *AsynqScheduler) ScheduleAutoAccept(reservationID string, at time.Time) (string, error) {
	b, err := json.Marshal(AutoAcceptPayload{ReservationID: reservationID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal auto-accept payload: %w", err)
	}

	task := asynq.NewTask(TypeReservationAutoAccept, b)
	// One task per reservation: a retried request reuses the same id.
	info, err := s.client.Enqueue(task,
		asynq.ProcessAt(at),
		asynq.TaskID("autoaccept:"+reservationID),
		asynq.Queue(QueueName),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue auto-accept task: %w", err)
	}
	return info.ID, nil
}

func (s *AsynqScheduler) ScheduleReminder(payload models.ReminderPayload, at time.Time) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	task := asynq.NewTask(TypeReminderSend, b)
	info, err := s.client.Enqueue(task,
		asynq.ProcessAt(at),
		asynq.TaskID(fmt.Sprintf("reminder:%s:%s", payload.UID, payload.RideID)),
		asynq.Queue(QueueName),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue reminder task: %w", err)
	}
	return info.ID, nil
}

func (s *AsynqScheduler) Cancel(taskID string) error {
	err := s.inspector.DeleteTask(QueueName, taskID)
	if err == asynq.ErrTaskNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to cancel task %s: %w", taskID, err)
	}
	return nil
}
