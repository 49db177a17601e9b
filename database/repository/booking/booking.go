package bookingRepo

import (
	"context"
	"time"

	"fixify/models"
)

// AcceptParams carries the precomputed assignment details into the accept
// transaction. Distance and ETA are estimates taken from the professional's
// last known position just before the transaction opens.
type AcceptParams struct {
	ProfessionalID string
	DistanceKm     float64
	ETAMinutes     int
	Now            time.Time
}

// CancelParams identifies who cancelled and why.
type CancelParams struct {
	ActorID   string
	ActorRole models.Role
	Reason    string
	Now       time.Time
}

// Repository is the storage contract for bookings. Accept, Cancel and
// Complete are transactional over the booking and professional records:
// either both writes land or neither does.
type Repository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// Accept atomically assigns a professional to a pending booking and
	// locks the professional. Exactly one concurrent caller succeeds;
	// the rest receive repository.ErrAlreadyAssigned or
	// repository.ErrProfessionalUnavailable.
	Accept(ctx context.Context, bookingID string, p AcceptParams) (*models.Booking, error)

	// Start moves an accepted booking into in_progress and activates
	// tracking. It fails with repository.ErrInvalidTransition unless the
	// booking is accepted and assigned to the given professional.
	Start(ctx context.Context, bookingID, professionalID string, now time.Time) (*models.Booking, error)

	// Cancel terminalizes a pending, accepted or in_progress booking and,
	// when a professional was assigned, releases the lock in the same
	// transaction.
	Cancel(ctx context.Context, bookingID string, p CancelParams) (*models.Booking, error)

	// Complete terminalizes an in_progress booking, deactivates tracking,
	// settles payment fields and releases the professional, all in one
	// transaction.
	Complete(ctx context.Context, bookingID string, totalAmount float64, now time.Time) (*models.Booking, error)

	UpdateTracking(ctx context.Context, bookingID string, t models.Tracking) error
	SetVerification(ctx context.Context, bookingID string, v *models.VerificationSession) error
	IncrementVerificationAttempts(ctx context.Context, bookingID string) (int, error)
	AppendCharge(ctx context.Context, bookingID string, charge models.AdditionalCharge, newTotal float64) error

	ActiveByCustomer(ctx context.Context, customerID string) (*models.Booking, error)
	ActiveByProfessional(ctx context.Context, professionalID string) (*models.Booking, error)
	PendingByCategories(ctx context.Context, categories []string) ([]models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string, status models.BookingStatus) ([]models.Booking, error)
	ListByProfessional(ctx context.Context, professionalID string, status models.BookingStatus) ([]models.Booking, error)
}
