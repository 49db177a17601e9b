package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	bookingRepo "fixify/database/repository/booking"
	professionalRepo "fixify/database/repository/professional"
	"fixify/database/repository"
	"fixify/models"
)

// stubBookingRepo overrides only the methods the tracker touches; calling
// anything else panics through the nil embedded interface.
type stubBookingRepo struct {
	bookingRepo.Repository
	mu      sync.Mutex
	booking *models.Booking
	saved   *models.Tracking
}

func (s *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booking == nil || s.booking.ID != id {
		return nil, repository.ErrNotFound
	}
	b := *s.booking
	return &b, nil
}

func (s *stubBookingRepo) UpdateTracking(ctx context.Context, bookingID string, t models.Tracking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = &t
	return nil
}

type stubProfRepo struct {
	professionalRepo.Repository
	mu    sync.Mutex
	saved *models.LiveLocation
}

func (s *stubProfRepo) UpdateLocation(ctx context.Context, id string, loc models.LiveLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := loc
	s.saved = &l
	return nil
}

type recPublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
}

func (p *recPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

type recCache struct {
	mu   sync.Mutex
	locs map[string]models.LiveLocation
}

func (c *recCache) Get(ctx context.Context, professionalID string) (*models.LiveLocation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.locs[professionalID]
	if !ok {
		return nil, false
	}
	l := loc
	return &l, true
}

func (c *recCache) Set(ctx context.Context, professionalID string, loc models.LiveLocation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locs[professionalID] = loc
}

func trackedBooking(status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:             "bk-1",
		CustomerID:     "cust-1",
		ProfessionalID: "pro-1",
		Status:         status,
		Location:       models.NewGeoPoint(12.9716, 77.5946),
	}
}

func newTracker(b *models.Booking) (*DefaultTrackingService, *stubBookingRepo, *stubProfRepo, *recPublisher, *recCache) {
	bRepo := &stubBookingRepo{booking: b}
	pRepo := &stubProfRepo{}
	pub := &recPublisher{}
	cache := &recCache{locs: make(map[string]models.LiveLocation)}
	svc := &DefaultTrackingService{
		BookingRepo:      bRepo,
		ProfessionalRepo: pRepo,
		Cache:            cache,
		Publisher:        pub,
		SpeedKmh:         30,
	}
	return svc, bRepo, pRepo, pub, cache
}

func TestIngestRecomputesAndPublishes(t *testing.T) {
	b := trackedBooking(models.BookingAccepted)
	svc, bRepo, pRepo, pub, cache := newTracker(b)

	got, err := svc.Ingest(context.Background(), IngestRequest{
		BookingID:      "bk-1",
		ProfessionalID: "pro-1",
		Lat:            12.9352,
		Lng:            77.6245,
		SpeedKmh:       25,
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if math.Abs(got.DistanceKm-5.18) > 0.05 {
		t.Errorf("distance = %v km, want 5.18 +/- 0.05", got.DistanceKm)
	}
	if got.ETAMinutes != 10 {
		t.Errorf("eta = %d, want 10", got.ETAMinutes)
	}
	if got.LastKnownLocation == nil || got.LastKnownLocation.SpeedKmh != 25 {
		t.Errorf("last known location not recorded: %+v", got.LastKnownLocation)
	}

	if bRepo.saved == nil {
		t.Errorf("tracking not persisted")
	}
	if pRepo.saved == nil {
		t.Errorf("professional position not persisted")
	}
	if _, ok := cache.Get(context.Background(), "pro-1"); !ok {
		t.Errorf("position not cached")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.topics) != 1 || pub.topics[0] != Topic("bk-1") {
		t.Fatalf("topics = %v, want [%s]", pub.topics, Topic("bk-1"))
	}
	var upd Update
	if err := json.Unmarshal(pub.payloads[0], &upd); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if upd.Kind != "location" || upd.BookingID != "bk-1" {
		t.Errorf("payload = %+v, want a location update for bk-1", upd)
	}
}

func TestIngestActivatesDuringInProgress(t *testing.T) {
	b := trackedBooking(models.BookingInProgress)
	svc, _, _, _, _ := newTracker(b)

	got, err := svc.Ingest(context.Background(), IngestRequest{
		BookingID: "bk-1", ProfessionalID: "pro-1", Lat: 12.95, Lng: 77.60,
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !got.IsActive {
		t.Errorf("tracking inactive during in_progress")
	}
}

func TestIngestGuards(t *testing.T) {
	for _, status := range []models.BookingStatus{
		models.BookingPending, models.BookingCompleted, models.BookingCancelled,
	} {
		svc, _, _, _, _ := newTracker(trackedBooking(status))
		_, err := svc.Ingest(context.Background(), IngestRequest{
			BookingID: "bk-1", ProfessionalID: "pro-1", Lat: 12.95, Lng: 77.60,
		})
		if !errors.Is(err, repository.ErrInvalidTransition) {
			t.Errorf("status %s: got %v, want ErrInvalidTransition", status, err)
		}
	}

	svc, _, _, _, _ := newTracker(trackedBooking(models.BookingAccepted))
	if _, err := svc.Ingest(context.Background(), IngestRequest{
		BookingID: "bk-1", ProfessionalID: "stranger", Lat: 12.95, Lng: 77.60,
	}); !errors.Is(err, repository.ErrProfessionalUnavailable) {
		t.Errorf("wrong professional: got %v, want ErrProfessionalUnavailable", err)
	}

	if _, err := svc.Ingest(context.Background(), IngestRequest{
		BookingID: "bk-1", ProfessionalID: "pro-1", Lat: 120, Lng: 200,
	}); err == nil {
		t.Errorf("invalid coordinates accepted")
	}

	if _, err := svc.Ingest(context.Background(), IngestRequest{
		BookingID: "missing", ProfessionalID: "pro-1", Lat: 12.95, Lng: 77.60,
	}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown booking: got %v, want ErrNotFound", err)
	}
}

func TestPublishStatus(t *testing.T) {
	b := trackedBooking(models.BookingAccepted)
	b.Tracking.DistanceKm = 3.1
	b.Tracking.ETAMinutes = 6
	svc, _, _, pub, _ := newTracker(b)

	svc.PublishStatus(context.Background(), b)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.payloads) != 1 {
		t.Fatalf("published %d payloads, want 1", len(pub.payloads))
	}
	var upd Update
	if err := json.Unmarshal(pub.payloads[0], &upd); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if upd.Kind != "status" || upd.Status != models.BookingAccepted {
		t.Errorf("payload = %+v, want a status update", upd)
	}
	if upd.DistanceKm != 3.1 || upd.ETAMinutes != 6 {
		t.Errorf("travel estimate = %v/%v, want 3.1/6", upd.DistanceKm, upd.ETAMinutes)
	}
}
