package models

import "time"

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}
	return p.Coordinates[0]
}

// Valid reports whether the point carries a usable coordinate pair.
func (p GeoPoint) Valid() bool {
	return len(p.Coordinates) == 2 &&
		p.Lat() >= -90 && p.Lat() <= 90 &&
		p.Lng() >= -180 && p.Lng() <= 180
}

// LiveLocation is a single position report from a professional's device.
// Accuracy, heading and speed are optional and zero when the device
// does not report them.
type LiveLocation struct {
	Point      GeoPoint  `bson:"point" json:"point"`
	AccuracyM  float64   `bson:"accuracyM,omitempty" json:"accuracyM,omitempty"`
	HeadingDeg float64   `bson:"headingDeg,omitempty" json:"headingDeg,omitempty"`
	SpeedKmh   float64   `bson:"speedKmh,omitempty" json:"speedKmh,omitempty"`
	RecordedAt time.Time `bson:"recordedAt" json:"recordedAt"`
}
