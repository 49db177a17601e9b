package professionalRepo

import (
	"context"

	"fixify/models"
)

// SearchCriteria narrows a nearby-availability query.
type SearchCriteria struct {
	Location models.GeoPoint
	RadiusKm float64
	Category string // required capability; empty matches any
	Limit    int64  // 0 means the default limit
}

// Nearby pairs a professional with the store-computed distance to the
// query point, in meters.
type Nearby struct {
	models.Professional `bson:",inline"`
	DistanceMeters      float64 `bson:"distance"`
}

// Repository is the storage contract for professionals. The assignment
// lock (isAvailable/currentBooking) is written only by the booking
// repository's transactions; everything here is read or heartbeat traffic.
type Repository interface {
	Create(ctx context.Context, p *models.Professional) error
	GetByID(ctx context.Context, id string) (*models.Professional, error)
	UpdateLocation(ctx context.Context, id string, loc models.LiveLocation) error
	SetAvailability(ctx context.Context, id string, available bool) error

	// NearbyAvailable answers "who is within radius R of point P, holds
	// capability C, and is free right now", nearest first.
	NearbyAvailable(ctx context.Context, criteria SearchCriteria) ([]Nearby, error)
}
