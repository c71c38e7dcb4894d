package userRepo

import (
	"context"

	"bookinghub/models"
)

// UserRepository defines data access for auth accounts.
type UserRepository interface {
	// GetByID retrieves an account by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// GetByEmail retrieves an account by email. Returns utils.ErrNotFound when missing.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// Create inserts a new account.
	Create(ctx context.Context, account *models.Account) error
	// SetDeviceToken stores the FCM registration token for the account.
	SetDeviceToken(ctx context.Context, id, token string) error
}
