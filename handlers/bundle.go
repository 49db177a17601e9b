package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct so routing
// stays declarative.
type HandlerBundle struct {
	// Booking lifecycle
	CreateBooking  gin.HandlerFunc
	AcceptBooking  gin.HandlerFunc
	StartBooking   gin.HandlerFunc
	CancelBooking  gin.HandlerFunc
	AddCharge      gin.HandlerFunc
	IssueCode      gin.HandlerFunc
	VerifyCode     gin.HandlerFunc
	ActiveBooking  gin.HandlerFunc
	AvailableList  gin.HandlerFunc
	BookingHistory gin.HandlerFunc

	// Live tracking
	IngestLocation gin.HandlerFunc
	TrackBooking   gin.HandlerFunc

	// Professional presence
	SetAvailability   gin.HandlerFunc
	LocationHeartbeat gin.HandlerFunc
}

// NewHandlerBundle wires the concrete handlers into the bundle.
func NewHandlerBundle(b *BookingHandler, t *TrackingHandler, p *ProfessionalHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateBooking:  b.Create,
		AcceptBooking:  b.Accept,
		StartBooking:   b.Start,
		CancelBooking:  b.Cancel,
		AddCharge:      b.AddCharge,
		IssueCode:      b.IssueCode,
		VerifyCode:     b.VerifyCode,
		ActiveBooking:  b.Active,
		AvailableList:  b.Available,
		BookingHistory: b.History,

		IngestLocation: t.Ingest,
		TrackBooking:   t.Subscribe,

		SetAvailability:   p.SetAvailability,
		LocationHeartbeat: p.LocationHeartbeat,
	}
}
