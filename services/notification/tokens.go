package notification

import (
	"context"
	"errors"
	"fmt"

	"bookinghub/models"
	"bookinghub/utils"
)

// AccountLookup reads auth accounts, which carry the device token.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// ProviderLookup reads provider records.
type ProviderLookup interface {
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	ListByBusiness(ctx context.Context, businessID string) ([]models.Provider, error)
}

// TokenResolver maps a booking scope to the device tokens it should reach.
type TokenResolver struct {
	accounts  AccountLookup
	providers ProviderLookup
}

func NewTokenResolver(accounts AccountLookup, providers ProviderLookup) *TokenResolver {
	return &TokenResolver{accounts: accounts, providers: providers}
}

// Resolve returns the distinct non-empty tokens for the scope. A scope with
// nobody registered resolves to no tokens and no error.
func (r *TokenResolver) Resolve(ctx context.Context, role models.ListenerRole, id string) ([]string, error) {
	var accountIDs []string
	switch role {
	case models.ListenerRoleCustomer:
		accountIDs = []string{id}
	case models.ListenerRoleProvider:
		p, err := r.providers.GetByID(ctx, id)
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		accountIDs = []string{p.UserID}
	case models.ListenerRoleBusiness:
		staff, err := r.providers.ListByBusiness(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, p := range staff {
			accountIDs = append(accountIDs, p.UserID)
		}
	default:
		return nil, fmt.Errorf("no push audience for role %q", role)
	}

	seen := make(map[string]bool, len(accountIDs))
	var tokens []string
	for _, accountID := range accountIDs {
		acct, err := r.accounts.GetByID(ctx, accountID)
		if errors.Is(err, utils.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if acct.DeviceToken == "" || seen[acct.DeviceToken] {
			continue
		}
		seen[acct.DeviceToken] = true
		tokens = append(tokens, acct.DeviceToken)
	}
	return tokens, nil
}
