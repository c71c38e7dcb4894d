package providerRepo

import (
	"context"

	"bookinghub/models"
)

// ProviderRepository defines data access for provider records.
type ProviderRepository interface {
	// GetByUserID returns the provider record bound to an auth account.
	GetByUserID(ctx context.Context, userID string) (*models.Provider, error)
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// ListByBusiness returns the active providers of a business.
	ListByBusiness(ctx context.Context, businessID string) ([]models.Provider, error)
	// SetIdentityVerified flips the provider's verified flag.
	SetIdentityVerified(ctx context.Context, userID string, verified bool) error
}
