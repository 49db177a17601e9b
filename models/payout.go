package models

// PayoutBreakdown is the commission/payout split computed when a booking
// completes. All amounts are decimal major units rounded to 2 places.
type PayoutBreakdown struct {
	ServiceAmount      float64 `json:"serviceAmount"`
	AdditionalAmount   float64 `json:"additionalAmount"`
	TotalAmount        float64 `json:"totalAmount"`
	PlatformCommission float64 `json:"platformCommission"`
	ProfessionalPayout float64 `json:"professionalPayout"`
}
