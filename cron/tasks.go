package cron

import (
	"encoding/json"
	"time"

	"fixify/config"
	"fixify/models"

	"github.com/hibiken/asynq"
)

const (
	TypeStatusPush    = "notify:push"
	TypeBookingExpire = "booking:expire"
)

// StatusPushPayload carries one lifecycle event to the push worker.
type StatusPushPayload struct {
	BookingID      string `json:"bookingId"`
	CustomerID     string `json:"customerId"`
	ProfessionalID string `json:"professionalId,omitempty"`
	Status         string `json:"status"`
	Event          string `json:"event"`
	CancelledBy    string `json:"cancelledBy,omitempty"`
}

// ExpirePayload names the booking whose pending window has lapsed.
type ExpirePayload struct {
	BookingID string `json:"bookingId"`
}

func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Queue enqueues background work over asynq. It implements the booking
// service's TaskQueue.
type Queue struct {
	client *asynq.Client
}

func NewQueue() *Queue {
	return &Queue{client: asynq.NewClient(queueRedisOpt())}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// EnqueueStatusPush queues a push notification about a lifecycle event.
func (q *Queue) EnqueueStatusPush(b *models.Booking, event string) error {
	payload, err := json.Marshal(StatusPushPayload{
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		ProfessionalID: b.ProfessionalID,
		Status:         string(b.Status),
		Event:          event,
		CancelledBy:    b.CancelledBy,
	})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeStatusPush, payload)
	_, err = q.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	return err
}

// ScheduleExpiry queues the pending-window check to fire after delay.
func (q *Queue) ScheduleExpiry(bookingID string, delay time.Duration) error {
	payload, err := json.Marshal(ExpirePayload{BookingID: bookingID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeBookingExpire, payload)
	_, err = q.client.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(5))
	return err
}
