package booking

import (
	"math"

	"fixify/models"
)

// DefaultCommissionRate is the platform's cut of the total amount.
const DefaultCommissionRate = 0.15

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Breakdown computes the commission/payout split for a completed booking.
// It is a pure function: the same inputs always yield the same split.
// Commission is taken on the total amount, service plus additional charges.
// All amounts are decimal major units rounded to 2 places.
func Breakdown(serviceAmount float64, charges []models.AdditionalCharge, commissionRate float64) models.PayoutBreakdown {
	if commissionRate <= 0 {
		commissionRate = DefaultCommissionRate
	}

	additional := 0.0
	for _, c := range charges {
		additional += c.Amount
	}
	additional = round2(additional)

	total := round2(serviceAmount + additional)
	commission := round2(total * commissionRate)

	return models.PayoutBreakdown{
		ServiceAmount:      round2(serviceAmount),
		AdditionalAmount:   additional,
		TotalAmount:        total,
		PlatformCommission: commission,
		ProfessionalPayout: round2(total - commission),
	}
}
