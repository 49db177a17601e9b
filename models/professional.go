package models

import "time"

// BookingRef is the single-owner lock a professional holds while assigned.
// At most one booking may hold this lock at a time; it is set atomically by
// the accept transaction and cleared when the booking terminalizes.
type BookingRef struct {
	BookingID  string    `bson:"bookingId" json:"bookingId"`
	AcceptedAt time.Time `bson:"acceptedAt" json:"acceptedAt"`
}

// Professional is the capability and availability record of a field worker.
type Professional struct {
	ID              string        `bson:"id" json:"id"`
	Name            string        `bson:"name" json:"name"`
	PhoneNumber     string        `bson:"phoneNumber" json:"phoneNumber"`
	Specializations []string      `bson:"specializations" json:"specializations"`
	IsAvailable     bool          `bson:"isAvailable" json:"isAvailable"`
	CurrentLocation *LiveLocation `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	CurrentBooking  *BookingRef   `bson:"currentBooking,omitempty" json:"currentBooking,omitempty"`

	// LocationGeo mirrors CurrentLocation.Point for the 2dsphere index.
	LocationGeo GeoPoint `bson:"locationGeo" json:"locationGeo"`

	Rating        float64 `bson:"rating" json:"rating"`
	CompletedJobs int     `bson:"completedJobs" json:"completedJobs"`
	FCMToken      string  `bson:"fcmToken,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasSpecialization reports whether the professional covers the category.
func (p *Professional) HasSpecialization(category string) bool {
	for _, s := range p.Specializations {
		if s == category {
			return true
		}
	}
	return false
}
