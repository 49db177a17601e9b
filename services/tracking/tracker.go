package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingRepo "fixify/database/repository/booking"
	professionalRepo "fixify/database/repository/professional"
	"fixify/database/repository"
	"fixify/models"
	"fixify/services/dispatch"
)

// IngestRequest is one position ping from an assigned professional.
type IngestRequest struct {
	BookingID      string
	ProfessionalID string
	Lat            float64
	Lng            float64
	AccuracyM      float64
	HeadingDeg     float64
	SpeedKmh       float64
}

// Service ingests position pings for assigned bookings and fans the
// recomputed distance/ETA out to live subscribers.
type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (*models.Tracking, error)
	PublishStatus(ctx context.Context, b *models.Booking)
}

// DefaultTrackingService implements Service.
type DefaultTrackingService struct {
	BookingRepo      bookingRepo.Repository
	ProfessionalRepo professionalRepo.Repository
	Cache            dispatch.LocationCache
	Publisher        Publisher
	SpeedKmh         float64
}

// Ingest overwrites the booking's last known professional position,
// recomputes distance and ETA against the booking location, persists the
// tracking sub-record and publishes an update. Publication is
// fire-and-forget.
func (s *DefaultTrackingService) Ingest(ctx context.Context, req IngestRequest) (*models.Tracking, error) {
	point := models.NewGeoPoint(req.Lat, req.Lng)
	if !point.Valid() {
		return nil, fmt.Errorf("invalid coordinates (%f, %f)", req.Lat, req.Lng)
	}

	b, err := s.BookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingAccepted && b.Status != models.BookingInProgress {
		return nil, repository.ErrInvalidTransition
	}
	if b.ProfessionalID != req.ProfessionalID {
		return nil, repository.ErrProfessionalUnavailable
	}

	now := time.Now()
	loc := models.LiveLocation{
		Point:      point,
		AccuracyM:  req.AccuracyM,
		HeadingDeg: req.HeadingDeg,
		SpeedKmh:   req.SpeedKmh,
		RecordedAt: now,
	}

	distanceKm := dispatch.Distance(b.Location, point)
	t := b.Tracking
	t.LastKnownLocation = &loc
	t.DistanceKm = distanceKm
	t.ETAMinutes = dispatch.ETAMinutes(distanceKm, s.SpeedKmh)
	if b.Status == models.BookingInProgress {
		t.IsActive = true
	}

	if err := s.BookingRepo.UpdateTracking(ctx, b.ID, t); err != nil {
		return nil, err
	}

	// Keep the durable record and the matching cache in step with the ping.
	if err := s.ProfessionalRepo.UpdateLocation(ctx, req.ProfessionalID, loc); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, req.ProfessionalID, loc)
	}

	payload, err := json.Marshal(Update{
		Kind:       "location",
		BookingID:  b.ID,
		Status:     b.Status,
		Location:   &loc,
		DistanceKm: t.DistanceKm,
		ETAMinutes: t.ETAMinutes,
		At:         now,
	})
	if err == nil {
		publish(ctx, s.Publisher, Topic(b.ID), payload)
	}

	return &t, nil
}

// PublishStatus broadcasts a lifecycle transition to the booking's
// subscribers, fire-and-forget.
func (s *DefaultTrackingService) PublishStatus(ctx context.Context, b *models.Booking) {
	payload, err := json.Marshal(Update{
		Kind:       "status",
		BookingID:  b.ID,
		Status:     b.Status,
		DistanceKm: b.Tracking.DistanceKm,
		ETAMinutes: b.Tracking.ETAMinutes,
		At:         time.Now(),
	})
	if err != nil {
		return
	}
	publish(ctx, s.Publisher, Topic(b.ID), payload)
}
