package models

// Role identifies who is looking at a booking.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// BookingView is the role-shaped projection of a booking returned by the
// API. Fields the viewer's role is not entitled to stay zero and are
// omitted from the JSON encoding.
type BookingView struct {
	ID             string        `json:"id"`
	Status         BookingStatus `json:"status"`
	ServiceID      string        `json:"serviceId"`
	Category       string        `json:"category"`
	ScheduledTime  string        `json:"scheduledTime"`
	IsEmergency    bool          `json:"isEmergency"`
	Address        string        `json:"address,omitempty"`
	Location       *GeoPoint     `json:"location,omitempty"`
	CustomerID     string        `json:"customerId,omitempty"`
	ProfessionalID string        `json:"professionalId,omitempty"`

	Tracking *Tracking `json:"tracking,omitempty"`

	ServiceAmount     float64              `json:"serviceAmount,omitempty"`
	AdditionalCharges []AdditionalCharge   `json:"additionalCharges,omitempty"`
	TotalAmount       float64              `json:"totalAmount,omitempty"`
	PaymentStatus     string               `json:"paymentStatus,omitempty"`
	Verification      *VerificationSession `json:"verification,omitempty"`

	CancelledBy  string `json:"cancelledBy,omitempty"`
	CancelReason string `json:"cancelReason,omitempty"`
}

// bookingFieldVisibility is the role→field table behind ToBookingView.
// Fields absent from the table are visible to every authenticated viewer.
var bookingFieldVisibility = map[string][]Role{
	"customerId":     {RoleProfessional, RoleAdmin},
	"professionalId": {RoleCustomer, RoleAdmin},
	"location":       {RoleProfessional, RoleAdmin},
	"address":        {RoleCustomer, RoleProfessional, RoleAdmin},
	"tracking":       {RoleCustomer, RoleAdmin},
	"amounts":        {RoleCustomer, RoleProfessional, RoleAdmin},
	"verification":   {RoleAdmin},
	"cancellation":   {RoleCustomer, RoleProfessional, RoleAdmin},
}

func visibleTo(field string, role Role) bool {
	roles, ok := bookingFieldVisibility[field]
	if !ok {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// ToBookingView shapes a booking for the given viewer role. All role-based
// response shaping funnels through this one table-driven function.
func ToBookingView(b *Booking, role Role) BookingView {
	v := BookingView{
		ID:            b.ID,
		Status:        b.Status,
		ServiceID:     b.ServiceID,
		Category:      b.Category,
		ScheduledTime: b.ScheduledTime.Format("2006-01-02T15:04:05Z07:00"),
		IsEmergency:   b.IsEmergency,
	}
	if visibleTo("customerId", role) {
		v.CustomerID = b.CustomerID
	}
	if visibleTo("professionalId", role) {
		v.ProfessionalID = b.ProfessionalID
	}
	if visibleTo("address", role) {
		v.Address = b.Address
	}
	if visibleTo("location", role) {
		loc := b.Location
		v.Location = &loc
	}
	if visibleTo("tracking", role) {
		t := b.Tracking
		v.Tracking = &t
	}
	if visibleTo("amounts", role) {
		v.ServiceAmount = b.ServiceAmount
		v.AdditionalCharges = b.AdditionalCharges
		v.TotalAmount = b.TotalAmount
		v.PaymentStatus = b.PaymentStatus
	}
	if visibleTo("verification", role) && b.Verification != nil {
		s := *b.Verification
		v.Verification = &s
	}
	if visibleTo("cancellation", role) {
		v.CancelledBy = b.CancelledBy
		v.CancelReason = b.CancelReason
	}
	return v
}
