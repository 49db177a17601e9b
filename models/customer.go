package models

import "time"

// Customer is the requesting party of a booking. Only the fields the
// dispatch engine needs are kept here; profile management lives elsewhere.
type Customer struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	PhoneNumber string    `bson:"phoneNumber" json:"phoneNumber"`
	FCMToken    string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
