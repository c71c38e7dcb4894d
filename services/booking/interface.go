package booking

import (
	"context"

	"bookinghub/models"
)

// BookingService covers the staff-facing booking operations.
type BookingService interface {
	// Recent lists the caller's newest bookings in the given role's scope.
	Recent(ctx context.Context, caller *models.AuthUser, role models.ListenerRole, limit int) ([]models.Booking, error)
	// Reassign moves a booking of the caller's business to another provider.
	Reassign(ctx context.Context, caller *models.AuthUser, bookingID, providerID string) (*models.Booking, error)
}

// BookingStore is the slice of the booking repository the service uses.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Recent(ctx context.Context, scope models.BookingScope, limit int) ([]models.Booking, error)
	Reassign(ctx context.Context, id, providerID string) (*models.Booking, error)
}

// ProviderStore reads provider records.
type ProviderStore interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
}
