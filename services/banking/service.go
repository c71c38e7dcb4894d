package banking

import (
	"context"
	"errors"
	"strings"

	"bookinghub/models"
	"bookinghub/utils"

	"go.uber.org/zap"
)

// LinkStore persists linked bank items.
type LinkStore interface {
	Save(ctx context.Context, link *models.BankLink) error
	GetByUserID(ctx context.Context, userID string) ([]models.BankLink, error)
}

// ExchangeRequest is the body of the exchange endpoint.
type ExchangeRequest struct {
	PublicToken     string `json:"public_token"`
	InstitutionName string `json:"institution_name"`
}

type Service struct {
	linker   Linker
	links    LinkStore
	tokenKey string
	logger   *zap.Logger
}

// NewService wires the banking flow. linker may be nil when the vendor is not
// configured; every call then fails with a configuration error.
func NewService(linker Linker, links LinkStore, tokenKey string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{linker: linker, links: links, tokenKey: tokenKey, logger: logger}
}

func (s *Service) CreateLinkToken(ctx context.Context, caller *models.AuthUser) (*LinkToken, error) {
	if caller == nil {
		return nil, utils.Unauthorized("authentication required")
	}
	if s.linker == nil {
		return nil, utils.NotConfigured("banking service")
	}
	token, err := s.linker.CreateLinkToken(ctx, caller.ID)
	if err != nil {
		s.logger.Error("Failed to create link token", zap.String("userID", caller.ID), zap.Error(err))
		return nil, err
	}
	return token, nil
}

// Exchange trades a public token for a durable item and stores the access
// token encrypted. The plaintext token never leaves this call.
func (s *Service) Exchange(ctx context.Context, caller *models.AuthUser, req ExchangeRequest) (*models.BankLink, error) {
	if caller == nil {
		return nil, utils.Unauthorized("authentication required")
	}
	publicToken := strings.TrimSpace(req.PublicToken)
	if publicToken == "" {
		return nil, utils.NewValidationError("public_token", "public_token is required")
	}
	if s.linker == nil {
		return nil, utils.NotConfigured("banking service")
	}
	if s.tokenKey == "" {
		return nil, utils.NotConfigured("bank token encryption key")
	}

	exchanged, err := s.linker.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		s.logger.Error("Failed to exchange public token", zap.String("userID", caller.ID), zap.Error(err))
		return nil, err
	}
	sealed, err := utils.EncryptString(exchanged.AccessToken, s.tokenKey)
	if err != nil {
		return nil, err
	}

	link := &models.BankLink{
		UserID:               caller.ID,
		BusinessID:           caller.BusinessID,
		ItemID:               exchanged.ItemID,
		InstitutionName:      strings.TrimSpace(req.InstitutionName),
		EncryptedAccessToken: sealed,
	}
	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}
	s.logger.Info("Bank item linked", zap.String("userID", caller.ID), zap.String("itemID", link.ItemID))
	return link, nil
}

// Links lists the caller's linked items. No links is an empty list.
func (s *Service) Links(ctx context.Context, caller *models.AuthUser) ([]models.BankLink, error) {
	if caller == nil {
		return nil, utils.Unauthorized("authentication required")
	}
	links, err := s.links.GetByUserID(ctx, caller.ID)
	if errors.Is(err, utils.ErrNotFound) {
		return []models.BankLink{}, nil
	}
	return links, err
}
