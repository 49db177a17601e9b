package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bookingRepo "fixify/database/repository/booking"
	customerRepo "fixify/database/repository/customer"
	professionalRepo "fixify/database/repository/professional"
	serviceRepo "fixify/database/repository/service"
	"fixify/database/repository"
	"fixify/models"
	"fixify/services/dispatch"
	"fixify/services/tracking"
	"fixify/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Repo             bookingRepo.Repository
	ProfessionalRepo professionalRepo.Repository
	ServiceRepo      serviceRepo.Repository
	CustomerRepo     customerRepo.Repository
	Matcher          dispatch.MatcherService
	Tracker          tracking.Service
	Codes            CodeChannel
	Queue            TaskQueue

	SpeedKmh       float64
	CommissionRate float64
	MinLeadTime    time.Duration
	PendingTTL     time.Duration // 0 = pending bookings never auto-cancel
}

// Create validates the request, persists a pending booking seeded from the
// service catalog, schedules the expiry policy if one is configured, and
// returns the ranked candidates.
func (s *DefaultBookingService) Create(ctx context.Context, req CreateRequest) (*models.Booking, []dispatch.Candidate, error) {
	point := models.NewGeoPoint(req.Lat, req.Lng)
	if !point.Valid() {
		return nil, nil, ValidationError{Field: "location", Reason: "coordinates out of range"}
	}
	if req.Address == "" {
		return nil, nil, ValidationError{Field: "address", Reason: "must not be empty"}
	}

	if _, err := s.CustomerRepo.GetByID(ctx, req.CustomerID); err != nil {
		return nil, nil, err
	}
	svc, err := s.ServiceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	scheduled := req.ScheduledTime
	if req.IsEmergency {
		// Emergencies bypass the scheduling window and dispatch immediately.
		scheduled = now
	} else {
		if scheduled.Before(now.Add(s.MinLeadTime)) {
			return nil, nil, ValidationError{
				Field:  "scheduledTime",
				Reason: fmt.Sprintf("must be at least %d minutes from now", int(s.MinLeadTime.Minutes())),
			}
		}
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    req.CustomerID,
		ServiceID:     svc.ID,
		Category:      svc.Category,
		Status:        models.BookingPending,
		Location:      point,
		Address:       req.Address,
		ScheduledTime: scheduled,
		IsEmergency:   req.IsEmergency,
		ServiceAmount: svc.BasePrice,
		TotalAmount:   svc.BasePrice,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, nil, err
	}

	if s.PendingTTL > 0 && s.Queue != nil {
		if err := s.Queue.ScheduleExpiry(b.ID, s.PendingTTL); err != nil {
			utils.GetLogger().Warn("failed to schedule pending expiry",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	candidates, err := s.Matcher.FindCandidates(ctx, b)
	if err != nil {
		// The booking is already persisted; matching can be retried.
		utils.GetLogger().Warn("candidate matching failed",
			zap.String("bookingId", b.ID), zap.Error(err))
		candidates = []dispatch.Candidate{}
	}
	return b, candidates, nil
}

// Accept resolves the assignment race for one booking. The repository
// transaction guarantees exactly one concurrent caller succeeds; everyone
// else gets a specific conflict error and no partial writes survive.
func (s *DefaultBookingService) Accept(ctx context.Context, bookingID, professionalID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	prof, err := s.ProfessionalRepo.GetByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	// Initial distance/ETA from the professional's last known position.
	distanceKm := 0.0
	etaMinutes := 0
	if prof.CurrentLocation != nil {
		distanceKm = dispatch.Distance(b.Location, prof.CurrentLocation.Point)
		etaMinutes = dispatch.ETAMinutes(distanceKm, s.SpeedKmh)
	}

	accepted, err := s.Repo.Accept(ctx, bookingID, bookingRepo.AcceptParams{
		ProfessionalID: professionalID,
		DistanceKm:     distanceKm,
		ETAMinutes:     etaMinutes,
		Now:            time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, accepted, "accepted")
	return accepted, nil
}

// Start moves an accepted booking into in_progress and activates live
// tracking.
func (s *DefaultBookingService) Start(ctx context.Context, bookingID, professionalID string) (*models.Booking, error) {
	started, err := s.Repo.Start(ctx, bookingID, professionalID, time.Now())
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, started, "started")
	return started, nil
}

// Cancel terminalizes a booking on behalf of a party to it. Cancelling an
// assigned booking releases the professional lock in the same transaction.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actorID string, role models.Role, reason string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !mayCancel(b, actorID, role) {
		return nil, ErrNotAllowed
	}

	cancelled, err := s.Repo.Cancel(ctx, bookingID, bookingRepo.CancelParams{
		ActorID:   actorID,
		ActorRole: role,
		Reason:    reason,
		Now:       time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, cancelled, "cancelled")
	return cancelled, nil
}

func mayCancel(b *models.Booking, actorID string, role models.Role) bool {
	switch role {
	case models.RoleCustomer:
		return b.CustomerID == actorID
	case models.RoleProfessional:
		return b.ProfessionalID == actorID
	case models.RoleAdmin:
		return true
	}
	return false
}

// AddCharge appends an extra line item to an in_progress booking.
func (s *DefaultBookingService) AddCharge(ctx context.Context, bookingID, professionalID, description string, amount float64) (*models.Booking, error) {
	if amount <= 0 {
		return nil, ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if description == "" {
		return nil, ValidationError{Field: "description", Reason: "must not be empty"}
	}

	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProfessionalID != professionalID {
		return nil, ErrNotAllowed
	}
	if b.Status != models.BookingInProgress {
		return nil, repository.ErrInvalidTransition
	}

	charge := models.AdditionalCharge{
		Description: description,
		Amount:      amount,
		AddedAt:     time.Now(),
	}
	newTotal := round2(b.TotalAmount + amount)
	if err := s.Repo.AppendCharge(ctx, bookingID, charge, newTotal); err != nil {
		return nil, err
	}

	b.AdditionalCharges = append(b.AdditionalCharges, charge)
	b.TotalAmount = newTotal
	return b, nil
}

// ActiveBooking returns the caller's current non-terminal booking.
func (s *DefaultBookingService) ActiveBooking(ctx context.Context, actorID string, role models.Role) (*models.Booking, error) {
	switch role {
	case models.RoleCustomer:
		return s.Repo.ActiveByCustomer(ctx, actorID)
	case models.RoleProfessional:
		return s.Repo.ActiveByProfessional(ctx, actorID)
	}
	return nil, ErrNotAllowed
}

// AvailableBookings lists pending bookings within the radius of the
// professional's current position that match their specializations,
// emergencies first, then nearest first.
func (s *DefaultBookingService) AvailableBookings(ctx context.Context, professionalID string, radiusKm float64) ([]AvailableBooking, error) {
	prof, err := s.ProfessionalRepo.GetByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if prof.CurrentLocation == nil {
		return nil, ValidationError{Field: "location", Reason: "no known position; send a location update first"}
	}

	pending, err := s.Repo.PendingByCategories(ctx, prof.Specializations)
	if err != nil {
		return nil, err
	}

	available := make([]AvailableBooking, 0, len(pending))
	for _, b := range pending {
		distanceKm := dispatch.Distance(b.Location, prof.CurrentLocation.Point)
		if distanceKm > radiusKm {
			continue
		}
		available = append(available, AvailableBooking{
			Booking:    b,
			DistanceKm: distanceKm,
			ETAMinutes: dispatch.ETAMinutes(distanceKm, s.SpeedKmh),
		})
	}

	sort.Slice(available, func(i, j int) bool {
		a, b := available[i], available[j]
		if a.Booking.IsEmergency != b.Booking.IsEmergency {
			return a.Booking.IsEmergency
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.Booking.ID < b.Booking.ID
	})
	return available, nil
}

// History returns the caller's bookings, optionally filtered by status.
func (s *DefaultBookingService) History(ctx context.Context, actorID string, role models.Role, status models.BookingStatus) ([]models.Booking, error) {
	switch role {
	case models.RoleCustomer:
		return s.Repo.ListByCustomer(ctx, actorID, status)
	case models.RoleProfessional:
		return s.Repo.ListByProfessional(ctx, actorID, status)
	}
	return nil, ErrNotAllowed
}

// ExpirePending applies the configured pending-window policy: a booking
// still pending at expiry is cancelled only when re-matching finds no
// remaining candidates.
func (s *DefaultBookingService) ExpirePending(ctx context.Context, bookingID string) error {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if b.Status != models.BookingPending {
		return nil
	}

	candidates, err := s.Matcher.FindCandidates(ctx, b)
	if err == nil && len(candidates) > 0 {
		// Someone can still take it; leave the booking pending.
		return nil
	}

	_, err = s.Repo.Cancel(ctx, bookingID, bookingRepo.CancelParams{
		ActorID:   "system",
		ActorRole: models.RoleAdmin,
		Reason:    "no professional accepted within the pending window",
		Now:       time.Now(),
	})
	if err != nil && !errors.Is(err, repository.ErrInvalidTransition) {
		return err
	}
	return nil
}

// afterTransition fans out the best-effort side effects of a committed
// state change: a pub/sub status event for live subscribers and a queued
// push to the counterpart. Neither may fail the caller's request.
func (s *DefaultBookingService) afterTransition(ctx context.Context, b *models.Booking, event string) {
	if s.Tracker != nil {
		s.Tracker.PublishStatus(ctx, b)
	}
	if s.Queue != nil {
		if err := s.Queue.EnqueueStatusPush(b, event); err != nil {
			utils.GetLogger().Warn("failed to enqueue status push",
				zap.String("bookingId", b.ID), zap.String("event", event), zap.Error(err))
		}
	}
}
