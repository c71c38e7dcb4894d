package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookinghub/database/repository"
	"bookinghub/models"
	"bookinghub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.AuthUser `json:"user"`
}

// SessionStore issues and resolves bearer sessions. Sessions live in Redis
// keyed by the SHA-256 of the token, so a leaked cache never yields tokens.
// A session has a fixed lifetime: the cache entry never outlives the token's
// exp claim and lookups do not extend it.
type SessionStore struct {
	users     repository.UserRepository
	providers repository.ProviderRepository
	cache     *redis.Client
	ttl       time.Duration
	logger    *zap.Logger
}

func NewSessionStore(
	users repository.UserRepository,
	providers repository.ProviderRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger *zap.Logger,
) *SessionStore {
	return &SessionStore{users: users, providers: providers, cache: cache, ttl: ttl, logger: logger}
}

func sessionKey(token string) string {
	return utils.SessionCachePrefix + utils.HashToken(token)
}

// SignIn checks the password and joins the account to its provider record.
// No session is issued unless the provider record exists and is active.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, utils.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, utils.NewValidationError("password", "password is required")
	}

	account, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, utils.Unauthorized("invalid email or password")
	}

	user, err := s.join(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(account.ID, account.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	expiresAt, err := utils.TokenExpiry(token)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := s.store(ctx, token, user, expiresAt); err != nil {
		return nil, err
	}

	s.logger.Info("Session issued", zap.String("userID", user.ID), zap.String("role", user.ProviderRole))
	return &Session{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Lookup resolves a bearer token to its user. A cache miss on a still-valid
// token re-joins the provider record; a missing or inactive provider ends
// the session.
func (s *SessionStore) Lookup(ctx context.Context, token string) (*models.AuthUser, error) {
	if token == "" {
		return nil, utils.Unauthorized("missing bearer token")
	}
	userID, err := utils.ExtractIDFromToken(token)
	if err != nil {
		var cfg *utils.ConfigError
		if errors.As(err, &cfg) {
			return nil, err
		}
		return nil, utils.Unauthorized("invalid or expired session")
	}

	raw, err := s.cache.Get(ctx, sessionKey(token)).Result()
	switch {
	case err == nil:
		var user models.AuthUser
		if jsonErr := json.Unmarshal([]byte(raw), &user); jsonErr == nil && user.ID == userID {
			return &user, nil
		}
		s.logger.Warn("Discarding unreadable session entry", zap.String("userID", userID))
	case errors.Is(err, redis.Nil):
	default:
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			_ = s.SignOut(ctx, token)
			return nil, utils.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	user, err := s.join(ctx, account)
	if err != nil {
		_ = s.SignOut(ctx, token)
		return nil, err
	}
	expiresAt, err := utils.TokenExpiry(token)
	if err != nil {
		return nil, utils.Unauthorized("invalid or expired session")
	}
	if err := s.store(ctx, token, user, expiresAt); err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut deletes the session. Signing out an unknown token is not an error.
func (s *SessionStore) SignOut(ctx context.Context, token string) error {
	if err := s.cache.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (s *SessionStore) join(ctx context.Context, account *models.Account) (*models.AuthUser, error) {
	provider, err := s.providers.GetByUserID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logger.Warn("No provider record for account", zap.String("userID", account.ID))
			return nil, utils.Unauthorized("provider profile not found")
		}
		return nil, fmt.Errorf("provider lookup: %w", err)
	}
	if !provider.IsActive {
		s.logger.Warn("Provider record is inactive", zap.String("userID", account.ID))
		return nil, utils.Unauthorized("provider profile is inactive")
	}
	return &models.AuthUser{
		ID:           account.ID,
		Email:        account.Email,
		ProviderID:   provider.ID,
		BusinessID:   provider.BusinessID,
		LocationID:   provider.LocationID,
		ProviderRole: provider.ProviderRole,
		FirstName:    provider.FirstName,
		LastName:     provider.LastName,
	}, nil
}

func (s *SessionStore) store(ctx context.Context, token string, user *models.AuthUser, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return utils.Unauthorized("invalid or expired session")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
