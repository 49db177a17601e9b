package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingRepo "fixify/database/repository/booking"
	professionalRepo "fixify/database/repository/professional"
	"fixify/database/repository"
	"fixify/models"
	"fixify/services/dispatch"
	"fixify/services/tracking"
)

// memStore backs the in-memory repositories. A single mutex covers both
// entity maps so accept/release stay atomic, mirroring the transactional
// contract of the Mongo implementation.
type memStore struct {
	mu            sync.Mutex
	bookings      map[string]*models.Booking
	professionals map[string]*models.Professional
	customers     map[string]*models.Customer
	services      map[string]*models.Service
}

func newMemStore() *memStore {
	return &memStore{
		bookings:      make(map[string]*models.Booking),
		professionals: make(map[string]*models.Professional),
		customers:     make(map[string]*models.Customer),
		services:      make(map[string]*models.Service),
	}
}

func copyBooking(b *models.Booking) *models.Booking {
	c := *b
	if b.Verification != nil {
		v := *b.Verification
		c.Verification = &v
	}
	if b.Tracking.LastKnownLocation != nil {
		l := *b.Tracking.LastKnownLocation
		c.Tracking.LastKnownLocation = &l
	}
	c.AdditionalCharges = append([]models.AdditionalCharge(nil), b.AdditionalCharges...)
	return &c
}

func copyProfessional(p *models.Professional) *models.Professional {
	c := *p
	if p.CurrentLocation != nil {
		l := *p.CurrentLocation
		c.CurrentLocation = &l
	}
	if p.CurrentBooking != nil {
		r := *p.CurrentBooking
		c.CurrentBooking = &r
	}
	c.Specializations = append([]string(nil), p.Specializations...)
	return &c
}

// memBookingRepo implements bookingRepo.Repository over a memStore.
type memBookingRepo struct {
	store *memStore
}

var _ bookingRepo.Repository = (*memBookingRepo)(nil)

func (r *memBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.bookings[b.ID]; exists {
		return fmt.Errorf("duplicate booking id %s", b.ID)
	}
	r.store.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyBooking(b), nil
}

func (r *memBookingRepo) Accept(ctx context.Context, bookingID string, p bookingRepo.AcceptParams) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	prof, ok := r.store.professionals[p.ProfessionalID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if b.Status != models.BookingPending || b.ProfessionalID != "" {
		return nil, repository.ErrAlreadyAssigned
	}
	if !prof.IsAvailable || prof.CurrentBooking != nil {
		return nil, repository.ErrProfessionalUnavailable
	}
	if !prof.HasSpecialization(b.Category) {
		return nil, repository.ErrCapabilityMismatch
	}

	b.Status = models.BookingAccepted
	b.ProfessionalID = p.ProfessionalID
	b.AcceptedAt = &p.Now
	b.Tracking.DistanceKm = p.DistanceKm
	b.Tracking.ETAMinutes = p.ETAMinutes
	b.UpdatedAt = p.Now

	prof.IsAvailable = false
	prof.CurrentBooking = &models.BookingRef{BookingID: bookingID, AcceptedAt: p.Now}
	prof.UpdatedAt = p.Now

	return copyBooking(b), nil
}

func (r *memBookingRepo) Start(ctx context.Context, bookingID, professionalID string, now time.Time) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.ProfessionalID != professionalID {
		return nil, repository.ErrProfessionalUnavailable
	}
	if b.Status != models.BookingAccepted {
		return nil, repository.ErrInvalidTransition
	}

	b.Status = models.BookingInProgress
	b.Tracking.StartedAt = &now
	b.Tracking.IsActive = true
	b.UpdatedAt = now
	return copyBooking(b), nil
}

func (r *memBookingRepo) Cancel(ctx context.Context, bookingID string, p bookingRepo.CancelParams) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch b.Status {
	case models.BookingPending, models.BookingAccepted, models.BookingInProgress:
	default:
		return nil, repository.ErrInvalidTransition
	}

	b.Status = models.BookingCancelled
	b.PaymentStatus = models.PaymentVoided
	b.CancelledAt = &p.Now
	b.CancelledBy = p.ActorID
	b.CancelReason = p.Reason
	b.Tracking.IsActive = false
	b.UpdatedAt = p.Now

	r.release(b.ProfessionalID, bookingID, p.Now, false)
	return copyBooking(b), nil
}

func (r *memBookingRepo) Complete(ctx context.Context, bookingID string, totalAmount float64, now time.Time) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Status != models.BookingInProgress {
		return nil, repository.ErrInvalidTransition
	}

	b.Status = models.BookingCompleted
	b.PaymentStatus = models.PaymentSettled
	b.TotalAmount = totalAmount
	b.Tracking.IsActive = false
	b.Tracking.CompletedAt = &now
	b.Tracking.EndedAt = &now
	if b.Tracking.StartedAt != nil {
		b.Tracking.TotalServiceMins = int(now.Sub(*b.Tracking.StartedAt).Minutes())
	}
	b.UpdatedAt = now

	r.release(b.ProfessionalID, bookingID, now, true)
	return copyBooking(b), nil
}

// release clears the professional lock held for bookingID. Caller holds
// the store mutex.
func (r *memBookingRepo) release(professionalID, bookingID string, now time.Time, completed bool) {
	if professionalID == "" {
		return
	}
	prof, ok := r.store.professionals[professionalID]
	if !ok || prof.CurrentBooking == nil || prof.CurrentBooking.BookingID != bookingID {
		return
	}
	prof.CurrentBooking = nil
	prof.IsAvailable = true
	if completed {
		prof.CompletedJobs++
	}
	prof.UpdatedAt = now
}

func (r *memBookingRepo) UpdateTracking(ctx context.Context, bookingID string, t models.Tracking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.Tracking = t
	return nil
}

func (r *memBookingRepo) SetVerification(ctx context.Context, bookingID string, v *models.VerificationSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.Verification = v
	return nil
}

func (r *memBookingRepo) IncrementVerificationAttempts(ctx context.Context, bookingID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if b.Verification == nil {
		return 0, repository.ErrNotFound
	}
	b.Verification.Attempts++
	return b.Verification.Attempts, nil
}

func (r *memBookingRepo) AppendCharge(ctx context.Context, bookingID string, charge models.AdditionalCharge, newTotal float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status != models.BookingInProgress {
		return repository.ErrInvalidTransition
	}
	b.AdditionalCharges = append(b.AdditionalCharges, charge)
	b.TotalAmount = newTotal
	return nil
}

func (r *memBookingRepo) ActiveByCustomer(ctx context.Context, customerID string) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.bookings {
		if b.CustomerID == customerID && !b.Status.Terminal() {
			return copyBooking(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memBookingRepo) ActiveByProfessional(ctx context.Context, professionalID string) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.bookings {
		if b.ProfessionalID == professionalID && !b.Status.Terminal() {
			return copyBooking(b), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memBookingRepo) PendingByCategories(ctx context.Context, categories []string) ([]models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	var out []models.Booking
	for _, b := range r.store.bookings {
		if b.Status == models.BookingPending && b.ProfessionalID == "" && set[b.Category] {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memBookingRepo) ListByCustomer(ctx context.Context, customerID string, status models.BookingStatus) ([]models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Booking
	for _, b := range r.store.bookings {
		if b.CustomerID == customerID && (status == "" || b.Status == status) {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memBookingRepo) ListByProfessional(ctx context.Context, professionalID string, status models.BookingStatus) ([]models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Booking
	for _, b := range r.store.bookings {
		if b.ProfessionalID == professionalID && (status == "" || b.Status == status) {
			out = append(out, *copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// memProfessionalRepo implements professionalRepo.Repository.
type memProfessionalRepo struct {
	store *memStore
}

var _ professionalRepo.Repository = (*memProfessionalRepo)(nil)

func (r *memProfessionalRepo) Create(ctx context.Context, p *models.Professional) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.professionals[p.ID] = copyProfessional(p)
	return nil
}

func (r *memProfessionalRepo) GetByID(ctx context.Context, id string) (*models.Professional, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.professionals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyProfessional(p), nil
}

func (r *memProfessionalRepo) UpdateLocation(ctx context.Context, id string, loc models.LiveLocation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.professionals[id]
	if !ok {
		return repository.ErrNotFound
	}
	l := loc
	p.CurrentLocation = &l
	p.LocationGeo = loc.Point
	return nil
}

func (r *memProfessionalRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.professionals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if available && p.CurrentBooking != nil {
		return repository.ErrProfessionalUnavailable
	}
	p.IsAvailable = available
	return nil
}

func (r *memProfessionalRepo) NearbyAvailable(ctx context.Context, criteria professionalRepo.SearchCriteria) ([]professionalRepo.Nearby, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []professionalRepo.Nearby
	for _, p := range r.store.professionals {
		if !p.IsAvailable || p.CurrentBooking != nil {
			continue
		}
		if criteria.Category != "" && !p.HasSpecialization(criteria.Category) {
			continue
		}
		if !p.LocationGeo.Valid() {
			continue
		}
		distKm := dispatch.Distance(criteria.Location, p.LocationGeo)
		if distKm > criteria.RadiusKm {
			continue
		}
		out = append(out, professionalRepo.Nearby{
			Professional:   *copyProfessional(p),
			DistanceMeters: distKm * 1000,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out, nil
}

// memCustomerRepo and memServiceRepo are trivial read fakes.
type memCustomerRepo struct{ store *memStore }

func (r *memCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

type memServiceRepo struct{ store *memStore }

func (r *memServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sc := *s
	return &sc, nil
}

// fakeCodeChannel delivers codes into memory instead of over SMS.
type fakeCodeChannel struct {
	mu       sync.Mutex
	codes    map[string]string // phone -> code
	sent     int
	sendErr  error
	checkErr error
}

func newFakeCodeChannel() *fakeCodeChannel {
	return &fakeCodeChannel{codes: make(map[string]string)}
}

func (f *fakeCodeChannel) Send(ctx context.Context, phoneNumber string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent++
	f.codes[phoneNumber] = "482915"
	return fmt.Sprintf("session-%d", f.sent), nil
}

func (f *fakeCodeChannel) Check(ctx context.Context, phoneNumber, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return false, f.checkErr
	}
	want, ok := f.codes[phoneNumber]
	if !ok || want != code {
		return false, nil
	}
	delete(f.codes, phoneNumber)
	return true, nil
}

// fakeQueue records enqueued work.
type fakeQueue struct {
	mu      sync.Mutex
	pushes  []string // events
	expires []string // booking ids
}

func (q *fakeQueue) EnqueueStatusPush(b *models.Booking, event string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushes = append(q.pushes, event)
	return nil
}

func (q *fakeQueue) ScheduleExpiry(bookingID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.expires = append(q.expires, bookingID)
	return nil
}

// fakeCache is an in-memory dispatch.LocationCache.
type fakeCache struct {
	mu   sync.Mutex
	locs map[string]models.LiveLocation
}

func newFakeCache() *fakeCache {
	return &fakeCache{locs: make(map[string]models.LiveLocation)}
}

func (c *fakeCache) Get(ctx context.Context, professionalID string) (*models.LiveLocation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	loc, ok := c.locs[professionalID]
	if !ok {
		return nil, false
	}
	l := loc
	return &l, true
}

func (c *fakeCache) Set(ctx context.Context, professionalID string, loc models.LiveLocation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locs[professionalID] = loc
}

// fakePublisher records published payloads per topic.
type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

var _ tracking.Publisher = (*fakePublisher)(nil)

func (p *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}
