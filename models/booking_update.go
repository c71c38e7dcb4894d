package models

import "time"

// BookingUpdate is the transient projection of a booking change event.
type BookingUpdate struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
	CustomerID     string    `json:"customer_id,omitempty"`
	ProviderID     string    `json:"provider_id,omitempty"`
	BusinessID     string    `json:"business_id,omitempty"`
	ServiceName    string    `json:"service_name,omitempty"`
	BusinessName   string    `json:"business_name,omitempty"`
	ScheduledDate  string    `json:"scheduled_date,omitempty"`
	ScheduledTime  string    `json:"scheduled_time,omitempty"`
}

// NewBookingUpdate normalizes a booking row into an update.
func NewBookingUpdate(b Booking, previousStatus string) BookingUpdate {
	updatedAt := b.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = b.CreatedAt
	}
	return BookingUpdate{
		ID:             b.ID,
		Status:         b.Status,
		PreviousStatus: previousStatus,
		UpdatedAt:      updatedAt,
		CustomerID:     b.CustomerID,
		ProviderID:     b.ProviderID,
		BusinessID:     b.BusinessID,
		ServiceName:    b.ServiceName,
		BusinessName:   b.BusinessName,
		ScheduledDate:  b.ScheduledDate,
		ScheduledTime:  b.ScheduledTime,
	}
}

// ListenerRole scopes which foreign key a booking subscription filters on.
type ListenerRole string

const (
	ListenerRoleCustomer ListenerRole = "customer"
	ListenerRoleProvider ListenerRole = "provider"
	ListenerRoleBusiness ListenerRole = "business"
	ListenerRoleAny      ListenerRole = ""
)

// BookingScope identifies whose bookings a subscription or query covers.
// With ListenerRoleAny a booking is in scope when any of its three party keys
// matches: customer_id against UserID, provider_id against ProviderID and
// business_id against BusinessID. An empty ProviderID or BusinessID falls back
// to UserID. ListenerRoleAny with no UserID covers every booking.
type BookingScope struct {
	UserID     string
	Role       ListenerRole
	ProviderID string
	BusinessID string
}

// ScopeLeg is one foreign key a scope matches on.
type ScopeLeg struct {
	Role ListenerRole
	ID   string
}

// AllBookings reports whether the scope is unfiltered.
func (s BookingScope) AllBookings() bool {
	return s.Role == ListenerRoleAny && s.UserID == ""
}

// Legs lists the party keys the scope matches, in customer, provider,
// business order. An unfiltered scope has none.
func (s BookingScope) Legs() []ScopeLeg {
	if s.Role != ListenerRoleAny {
		return []ScopeLeg{{Role: s.Role, ID: s.UserID}}
	}
	if s.UserID == "" {
		return nil
	}
	providerID, businessID := s.ProviderID, s.BusinessID
	if providerID == "" {
		providerID = s.UserID
	}
	if businessID == "" {
		businessID = s.UserID
	}
	return []ScopeLeg{
		{Role: ListenerRoleCustomer, ID: s.UserID},
		{Role: ListenerRoleProvider, ID: providerID},
		{Role: ListenerRoleBusiness, ID: businessID},
	}
}

// ChangeOperation is the kind of row change delivered by the change feed.
type ChangeOperation string

const (
	ChangeInsert ChangeOperation = "insert"
	ChangeUpdate ChangeOperation = "update"
)

// BookingChange is one change-feed event on the bookings collection.
type BookingChange struct {
	Operation ChangeOperation
	Booking   Booking
	// Before is the pre-image when the database provides one.
	Before *Booking
	// StatusTouched reports whether the update wrote the status field.
	StatusTouched bool
}
