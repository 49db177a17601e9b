package models

import "time"

// BookingStatus enumerates the booking lifecycle states.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAccepted   BookingStatus = "accepted"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingRejected   BookingStatus = "rejected"
)

// Terminal reports whether no further transition is permitted from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingRejected
}

// Assigned reports whether the status implies a non-null professional.
func (s BookingStatus) Assigned() bool {
	return s == BookingAccepted || s == BookingInProgress || s == BookingCompleted
}

// PaymentStatus values for a booking.
const (
	PaymentPending = "pending"
	PaymentSettled = "settled"
	PaymentVoided  = "voided"
)

// AdditionalCharge is an extra line item added by the professional while
// the service is in progress.
type AdditionalCharge struct {
	Description string    `bson:"description" json:"description"`
	Amount      float64   `bson:"amount" json:"amount"`
	AddedAt     time.Time `bson:"addedAt" json:"addedAt"`
}

// Tracking is the mutable live-tracking sub-record of a booking.
type Tracking struct {
	LastKnownLocation *LiveLocation `bson:"lastKnownLocation,omitempty" json:"lastKnownLocation,omitempty"`
	DistanceKm        float64       `bson:"distanceKm" json:"distanceKm"`
	ETAMinutes        int           `bson:"etaMinutes" json:"etaMinutes"`
	StartedAt         *time.Time    `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	ArrivedAt         *time.Time    `bson:"arrivedAt,omitempty" json:"arrivedAt,omitempty"`
	CompletedAt       *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	EndedAt           *time.Time    `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	TotalServiceMins  int           `bson:"totalServiceMins,omitempty" json:"totalServiceMins,omitempty"`
	IsActive          bool          `bson:"isActive" json:"isActive"`
}

// VerificationSession is the ephemeral one-time-code session embedded in a
// booking. It expires logically 10 minutes after SentAt or after 3 failed
// attempts; nothing clears it physically.
type VerificationSession struct {
	SessionID string    `bson:"sessionId" json:"sessionId"`
	SentAt    time.Time `bson:"sentAt" json:"sentAt"`
	Attempts  int       `bson:"attempts" json:"attempts"`
}

// Booking is the central entity: one customer request for a service at a
// location and time, tracked through its lifecycle. Bookings are never
// deleted, only terminalized.
type Booking struct {
	ID             string        `bson:"id" json:"id"`
	CustomerID     string        `bson:"customerId" json:"customerId"`
	ServiceID      string        `bson:"serviceId" json:"serviceId"`
	Category       string        `bson:"category" json:"category"`
	ProfessionalID string        `bson:"professionalId,omitempty" json:"professionalId,omitempty"`
	Status         BookingStatus `bson:"status" json:"status"`

	// Location and address are immutable once created.
	Location GeoPoint `bson:"location" json:"location"`
	Address  string   `bson:"address" json:"address"`

	ScheduledTime time.Time `bson:"scheduledTime" json:"scheduledTime"`
	IsEmergency   bool      `bson:"isEmergency" json:"isEmergency"`

	Tracking     Tracking             `bson:"tracking" json:"tracking"`
	Verification *VerificationSession `bson:"verification,omitempty" json:"verification,omitempty"`

	ServiceAmount     float64            `bson:"serviceAmount" json:"serviceAmount"`
	AdditionalCharges []AdditionalCharge `bson:"additionalCharges,omitempty" json:"additionalCharges,omitempty"`
	TotalAmount       float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentStatus     string             `bson:"paymentStatus" json:"paymentStatus"`

	AcceptedAt   *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	CancelledAt  *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy  string     `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelReason string     `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
