package dispatch

import (
	"math"

	"fixify/models"
)

// EarthRadiusKm is the mean earth radius used by the great-circle formula.
const EarthRadiusKm = 6371

// DefaultSpeedKmh is the assumed average travel speed for ETA estimates.
const DefaultSpeedKmh = 30

// Haversine returns the great-circle distance in kilometers between two
// latitude/longitude pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance returns the great-circle distance in kilometers between two
// GeoJSON points.
func Distance(a, b models.GeoPoint) float64 {
	return Haversine(a.Lat(), a.Lng(), b.Lat(), b.Lng())
}

// ETAMinutes converts a distance into an arrival estimate at the given
// average speed. A non-positive speed falls back to the default.
func ETAMinutes(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}
