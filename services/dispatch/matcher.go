package dispatch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	professionalRepo "fixify/database/repository/professional"
	"fixify/models"
)

// Candidate is a ranked match for a pending booking, exposed for
// acceptance.
type Candidate struct {
	ProfessionalID string  `json:"professionalId"`
	Name           string  `json:"name"`
	Rating         float64 `json:"rating"`
	CompletedJobs  int     `json:"completedJobs"`
	DistanceKm     float64 `json:"distanceKm"`
	ETAMinutes     int     `json:"etaMinutes"`
	Score          float64 `json:"-"`
	Preferred      bool    `json:"preferred"`
}

// MatcherService finds and ranks eligible professionals for a booking.
type MatcherService interface {
	FindCandidates(ctx context.Context, b *models.Booking) ([]Candidate, error)
}

// DefaultMatcherService implements MatcherService over the professional
// geo index, overlaid with the short-TTL location cache.
type DefaultMatcherService struct {
	ProfessionalRepo professionalRepo.Repository
	Cache            LocationCache
	RadiusKm         float64
	SpeedKmh         float64
}

const maxCandidates = 20

// FindCandidates queries the geo index around the booking location and
// ranks the results. An empty result is not an error: the booking simply
// stays pending for re-matching.
func (s *DefaultMatcherService) FindCandidates(ctx context.Context, b *models.Booking) ([]Candidate, error) {
	if !b.Location.Valid() {
		return nil, fmt.Errorf("booking %s has no usable location", b.ID)
	}

	nearby, err := s.ProfessionalRepo.NearbyAvailable(ctx, professionalRepo.SearchCriteria{
		Location: b.Location,
		RadiusKm: s.RadiusKm,
		Category: b.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("nearby search failed: %w", err)
	}
	if len(nearby) == 0 {
		return []Candidate{}, nil
	}

	resultsCh := make(chan Candidate, len(nearby))
	var wg sync.WaitGroup

	for _, n := range nearby {
		wg.Add(1)
		go func(n professionalRepo.Nearby) {
			defer wg.Done()
			resultsCh <- s.scoreCandidate(ctx, b, n)
		}(n)
	}

	wg.Wait()
	close(resultsCh)

	candidates := make([]Candidate, 0, len(nearby))
	for c := range resultsCh {
		candidates = append(candidates, c)
	}

	s.rank(candidates, b.IsEmergency)

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	if len(candidates) > 0 {
		candidates[0].Preferred = true
	}
	return candidates, nil
}

// scoreCandidate computes the exact distance from the freshest known
// position and the composite ranking score.
func (s *DefaultMatcherService) scoreCandidate(ctx context.Context, b *models.Booking, n professionalRepo.Nearby) Candidate {
	distanceKm := n.DistanceMeters / 1000
	if loc, ok := s.freshestLocation(ctx, &n.Professional); ok {
		distanceKm = Distance(b.Location, loc.Point)
	}

	const (
		maxLocationPts  = 45.0
		maxCompletedPts = 20.0
		maxRatingPts    = 15.0
	)

	locScore := 0.0
	if distanceKm < s.RadiusKm {
		locScore = maxLocationPts * (1 - distanceKm/s.RadiusKm)
	}
	compScore := math.Log10(float64(n.CompletedJobs+1)) * maxCompletedPts / math.Log10(101)
	rating := math.Min(n.Rating, 5)
	ratingScore := (rating / 5) * maxRatingPts

	return Candidate{
		ProfessionalID: n.ID,
		Name:           n.Name,
		Rating:         n.Rating,
		CompletedJobs:  n.CompletedJobs,
		DistanceKm:     distanceKm,
		ETAMinutes:     ETAMinutes(distanceKm, s.SpeedKmh),
		Score:          locScore + compScore + ratingScore,
	}
}

// freshestLocation prefers the cached position when it is newer than the
// durable one.
func (s *DefaultMatcherService) freshestLocation(ctx context.Context, p *models.Professional) (*models.LiveLocation, bool) {
	durable := p.CurrentLocation
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, p.ID); ok {
			if durable == nil || cached.RecordedAt.After(durable.RecordedAt) {
				return cached, true
			}
		}
	}
	if durable != nil {
		return durable, true
	}
	return nil, false
}

// rank orders candidates. Emergency bookings rank strictly by proximity;
// otherwise the composite score wins. Ties always fall back to distance
// and then professional id so the ordering is deterministic.
func (s *DefaultMatcherService) rank(candidates []Candidate, emergency bool) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !emergency && a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.ProfessionalID < b.ProfessionalID
	})
}
