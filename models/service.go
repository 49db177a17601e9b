package models

// Service is a catalog entry: what can be booked, under which capability
// category, and at what base price (decimal major units).
type Service struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Category  string  `bson:"category" json:"category"`
	BasePrice float64 `bson:"basePrice" json:"basePrice"`
}
