package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fixify/services/booking"
	"fixify/services/notification"

	"github.com/hibiken/asynq"
)

// InitWorker runs the async worker in background. It drains the status
// push queue and fires pending-window expiries.
func InitWorker(bookingSvc booking.Service, notifSvc notification.NotificationService) {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeStatusPush, handleStatusPush(notifSvc))
	mux.HandleFunc(TypeBookingExpire, handleExpire(bookingSvc))

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleStatusPush(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p StatusPushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[StatusPush] invalid payload: %v", err)
			return err
		}

		title, body := pushText(p)
		data := map[string]string{
			"bookingId": p.BookingID,
			"status":    p.Status,
			"event":     p.Event,
		}

		// The customer always hears about transitions. The professional
		// hears about cancellations they did not initiate.
		err := notifSvc.NotifyCustomer(ctx, p.CustomerID, title, body, data)
		if err != nil {
			log.Printf("[StatusPush] customer push failed: %v", err)
		}

		if p.Event == "cancelled" && p.ProfessionalID != "" && p.CancelledBy != p.ProfessionalID {
			if perr := notifSvc.NotifyProfessional(ctx, p.ProfessionalID, title, body, data); perr != nil {
				log.Printf("[StatusPush] professional push failed: %v", perr)
			}
		}
		return err
	}
}

func pushText(p StatusPushPayload) (title, body string) {
	switch p.Event {
	case "accepted":
		return "Booking accepted", "A professional accepted your booking and is on the way."
	case "started":
		return "Service started", "Your professional has started the job."
	case "completed":
		return "Service completed", "Your booking is complete. Thanks for using Fixify."
	case "cancelled":
		return "Booking cancelled", "This booking has been cancelled."
	}
	return "Booking update", "Your booking status is now " + p.Status + "."
}

func handleExpire(bookingSvc booking.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[Expire] invalid payload: %v", err)
			return err
		}
		if err := bookingSvc.ExpirePending(ctx, p.BookingID); err != nil {
			log.Printf("[Expire] booking %s: %v", p.BookingID, err)
			return err
		}
		return nil
	}
}

var _ booking.TaskQueue = (*Queue)(nil)
