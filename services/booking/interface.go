package booking

import (
	"context"
	"time"

	"fixify/models"
	"fixify/services/dispatch"
)

// CodeChannel is the external one-time-code delivery channel. Calls are
// fallible and possibly slow; implementations must honor the context
// deadline.
type CodeChannel interface {
	Send(ctx context.Context, phoneNumber string) (sessionID string, err error)
	Check(ctx context.Context, phoneNumber, code string) (bool, error)
}

// TaskQueue hands best-effort work to a background worker so the critical
// path never blocks on it.
type TaskQueue interface {
	EnqueueStatusPush(b *models.Booking, event string) error
	ScheduleExpiry(bookingID string, delay time.Duration) error
}

// CreateRequest is the input for a new booking.
type CreateRequest struct {
	CustomerID    string
	ServiceID     string
	Lat           float64
	Lng           float64
	Address       string
	ScheduledTime time.Time
	IsEmergency   bool
}

// AvailableBooking is a pending booking offered to a professional,
// annotated with the travel estimate from their current position.
type AvailableBooking struct {
	Booking    models.Booking `json:"booking"`
	DistanceKm float64        `json:"distanceKm"`
	ETAMinutes int            `json:"etaMinutes"`
}

// Service owns the booking lifecycle: creation, the assignment race,
// progress transitions, completion verification and settlement.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.Booking, []dispatch.Candidate, error)
	Accept(ctx context.Context, bookingID, professionalID string) (*models.Booking, error)
	Start(ctx context.Context, bookingID, professionalID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID string, role models.Role, reason string) (*models.Booking, error)
	AddCharge(ctx context.Context, bookingID, professionalID, description string, amount float64) (*models.Booking, error)

	IssueCompletionCode(ctx context.Context, bookingID, professionalID string) (string, error)
	VerifyCompletionCode(ctx context.Context, bookingID, professionalID, code string) (*models.Booking, *models.PayoutBreakdown, error)

	ActiveBooking(ctx context.Context, actorID string, role models.Role) (*models.Booking, error)
	AvailableBookings(ctx context.Context, professionalID string, radiusKm float64) ([]AvailableBooking, error)
	History(ctx context.Context, actorID string, role models.Role, status models.BookingStatus) ([]models.Booking, error)

	// ExpirePending is invoked by the background worker once a booking's
	// pending window lapses.
	ExpirePending(ctx context.Context, bookingID string) error
}
