package professionalRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultSearchLimit = 50

// NearbyAvailable runs a $geoNear pipeline over the live positions.
// Only professionals that are available and hold no assignment lock are
// eligible; the index sorts nearest first and the caller applies the
// deterministic tiebreak.
func (r *MongoProfessionalRepo) NearbyAvailable(ctx context.Context, criteria SearchCriteria) ([]Nearby, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if !criteria.Location.Valid() {
		return nil, fmt.Errorf("invalid search center coordinates")
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// $geoNear must come first to filter and sort by distance.
	pipeline := mongo.Pipeline{
		bson.D{
			{Key: "$geoNear", Value: bson.D{
				{Key: "near", Value: bson.D{
					{Key: "type", Value: "Point"},
					{Key: "coordinates", Value: criteria.Location.Coordinates},
				}},
				{Key: "key", Value: "locationGeo"},
				{Key: "distanceField", Value: "distance"},
				{Key: "spherical", Value: true},
				{Key: "maxDistance", Value: criteria.RadiusKm * 1000},
			}},
		},
	}

	matchFilter := bson.M{
		"isAvailable":    true,
		"currentBooking": nil,
	}
	if criteria.Category != "" {
		matchFilter["specializations"] = criteria.Category
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: matchFilter}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("geo search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []Nearby
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode geo search results: %w", err)
	}
	return results, nil
}
