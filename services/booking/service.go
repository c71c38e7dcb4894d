package booking

import (
	"context"
	"errors"
	"strings"

	"bookinghub/models"
	"bookinghub/utils"

	"go.uber.org/zap"
)

// MaxRecent caps a recent-bookings page.
const MaxRecent = 50

type DefaultBookingService struct {
	bookings  BookingStore
	providers ProviderStore
	logger    *zap.Logger
}

func NewDefaultBookingService(bookings BookingStore, providers ProviderStore, logger *zap.Logger) *DefaultBookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{bookings: bookings, providers: providers, logger: logger}
}

// ScopeFor maps a caller and a requested role to the booking scope it may
// read. Customers are keyed by account, providers by provider record and
// business views by the caller's business. No role means any of the three.
func ScopeFor(caller *models.AuthUser, role models.ListenerRole) (models.BookingScope, error) {
	switch role {
	case models.ListenerRoleCustomer:
		return models.BookingScope{UserID: caller.ID, Role: role}, nil
	case models.ListenerRoleAny:
		return models.BookingScope{
			UserID:     caller.ID,
			Role:       models.ListenerRoleAny,
			ProviderID: caller.ProviderID,
			BusinessID: caller.BusinessID,
		}, nil
	case models.ListenerRoleProvider:
		if caller.ProviderID == "" {
			return models.BookingScope{}, utils.Forbidden("caller has no provider record")
		}
		return models.BookingScope{UserID: caller.ProviderID, Role: models.ListenerRoleProvider}, nil
	case models.ListenerRoleBusiness:
		if caller.BusinessID == "" {
			return models.BookingScope{}, utils.Forbidden("caller has no business")
		}
		return models.BookingScope{UserID: caller.BusinessID, Role: role}, nil
	default:
		return models.BookingScope{}, utils.NewValidationError("role", "role must be customer, provider or business")
	}
}

func (s *DefaultBookingService) Recent(ctx context.Context, caller *models.AuthUser, role models.ListenerRole, limit int) ([]models.Booking, error) {
	if caller == nil {
		return nil, utils.Unauthorized("authentication required")
	}
	scope, err := ScopeFor(caller, role)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	rows, err := s.bookings.Recent(ctx, scope, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Booking{}
	}
	return rows, nil
}

// Reassign requires both the booking and the target provider to belong to the
// caller's business, and the target to be active. Permission is checked by
// the route.
func (s *DefaultBookingService) Reassign(ctx context.Context, caller *models.AuthUser, bookingID, providerID string) (*models.Booking, error) {
	if caller == nil {
		return nil, utils.Unauthorized("authentication required")
	}
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, utils.NewValidationError("provider_id", "provider_id is required")
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.BusinessID != caller.BusinessID {
		return nil, utils.Forbidden("booking belongs to another business")
	}
	if current.ProviderID == providerID {
		return current, nil
	}

	target, err := s.providers.GetByID(ctx, providerID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NewValidationError("provider_id", "unknown provider")
	}
	if err != nil {
		return nil, err
	}
	if target.BusinessID != caller.BusinessID || !target.IsActive {
		return nil, utils.NewValidationError("provider_id", "provider is not active in this business")
	}

	updated, err := s.bookings.Reassign(ctx, bookingID, providerID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Booking reassigned",
		zap.String("bookingID", bookingID),
		zap.String("from", current.ProviderID),
		zap.String("to", providerID),
		zap.String("by", caller.ID))
	return updated, nil
}
