package models

import "time"

// Booking statuses mirrored on the booking row.
const (
	BookingStatusPending        = "pending"
	BookingStatusPendingPayment = "pending_payment"
	BookingStatusPaid           = "paid"
	BookingStatusConfirmed      = "confirmed"
	BookingStatusInProgress     = "in_progress"
	BookingStatusCompleted      = "completed"
	BookingStatusCancelled      = "cancelled"
	BookingStatusRescheduled    = "rescheduled"
)

// Payment statuses mirrored from the payment processor.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Booking is the database-owned booking row. Status is authoritative here only.
type Booking struct {
	ID              string     `bson:"id" json:"id"`
	Status          string     `bson:"status" json:"status"`
	PreviousStatus  string     `bson:"previous_status,omitempty" json:"previous_status,omitempty"`
	BookingStatus   string     `bson:"booking_status,omitempty" json:"booking_status,omitempty"`
	PaymentStatus   string     `bson:"payment_status,omitempty" json:"payment_status,omitempty"`
	CustomerID      string     `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	ProviderID      string     `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	BusinessID      string     `bson:"business_id,omitempty" json:"business_id,omitempty"`
	LocationID      string     `bson:"location_id,omitempty" json:"location_id,omitempty"`
	ServiceName     string     `bson:"service_name,omitempty" json:"service_name,omitempty"`
	BusinessName    string     `bson:"business_name,omitempty" json:"business_name,omitempty"`
	ScheduledDate   string     `bson:"scheduled_date,omitempty" json:"scheduled_date,omitempty"` // "YYYY-MM-DD"
	ScheduledTime   string     `bson:"scheduled_time,omitempty" json:"scheduled_time,omitempty"` // "HH:MM"
	TotalAmount     float64    `bson:"total_amount,omitempty" json:"total_amount,omitempty"`
	PaymentIntentID string     `bson:"payment_intent_id,omitempty" json:"payment_intent_id,omitempty"`
	StatusEventAt   *time.Time `bson:"status_event_at,omitempty" json:"status_event_at,omitempty"`
	StatusSource    string     `bson:"status_source,omitempty" json:"status_source,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
}

// StatusMirror is a vendor-originated status write. EventAt is the ordering
// token: a mirror older than the one already applied is dropped.
type StatusMirror struct {
	BookingStatus string
	PaymentStatus string
	Source        string
	EventID       string
	EventAt       time.Time
}
