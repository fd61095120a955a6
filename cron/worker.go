package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"campusride/models"
	"campusride/services/notification"
	"campusride/services/reservation"
	"campusride/services/ride"
	"campusride/services/tasks"

	"github.com/hibiken/asynq"
)

// InitWorker runs the async worker in background.
func InitWorker(reservationSvc reservation.ReservationService, notifSvc notification.NotificationService) {
	srv := asynq.NewServer(
		tasks.RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueName: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReservationAutoAccept, handleAutoAcceptTask(reservationSvc))
	mux.HandleFunc(tasks.TypeReminderSend, handleReminderTask(notifSvc))

	go func() {
		log.Println("[Worker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// InitRideArchiver periodically archives departed rides so they fall out of
// search results and their bookings complete.
func InitRideArchiver(rideSvc ride.RideService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			n, err := rideSvc.ArchiveDeparted(context.Background())
			if err != nil {
				log.Printf("[RideArchiver] ❌ Archive pass failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[RideArchiver] 📦 Archived %d departed ride(s)", n)
			}
		}
	}()
}

func handleAutoAcceptTask(svc reservation.ReservationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.AutoAcceptPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[AutoAcceptHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[AutoAcceptHandler] ⏰ Auto-accept firing for reservation %s", p.ReservationID)
		if err := svc.HandleAutoAccept(ctx, p.ReservationID); err != nil {
			log.Printf("[AutoAcceptHandler] ❌ Auto-accept failed: %v", err)
			return err
		}
		return nil
	}
}

func handleReminderTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[ReminderHandler] ⏰ Triggering reminder for %s on ride %s: %s", p.UID, p.RideID, p.Title)
		if err := notifSvc.DeliverScheduled(ctx, p); err != nil {
			log.Printf("[ReminderHandler] ❌ Failed to deliver reminder: %v", err)
			return err
		}
		return nil
	}
}
