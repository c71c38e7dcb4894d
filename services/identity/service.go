package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"go.uber.org/zap"
)

// WebhookSource namespaces identity events in the event ledger.
const WebhookSource = "stripe-identity"

// VerificationStore persists the local verification row.
type VerificationStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.ProviderVerification, error)
	Upsert(ctx context.Context, v *models.ProviderVerification) error
	ApplyStatus(ctx context.Context, sessionID, status, lastError string, eventAt time.Time) (bool, error)
}

// ProviderFlags flips the verified flag on the provider profile.
type ProviderFlags interface {
	SetIdentityVerified(ctx context.Context, userID string, verified bool) error
}

// Ledger deduplicates webhook deliveries.
type Ledger interface {
	Claim(ctx context.Context, source, eventID string) (bool, error)
	Release(ctx context.Context, source, eventID string) error
}

// SessionRequest is the body of the verification-session endpoint.
type SessionRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// SessionResult is the session handed back to the client.
type SessionResult struct {
	models.VerificationSession
	Resumed bool `json:"resumed"`
}

type Service struct {
	verifier      Verifier
	store         VerificationStore
	providers     ProviderFlags
	ledger        Ledger
	webhookSecret string
	logger        *zap.Logger
}

func NewService(verifier Verifier, store VerificationStore, providers ProviderFlags, ledger Ledger, webhookSecret string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		verifier:      verifier,
		store:         store,
		providers:     providers,
		ledger:        ledger,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateSession resumes the caller's open verification session or starts a
// new one. The caller may only verify themselves.
func (s *Service) CreateSession(ctx context.Context, caller *models.AuthUser, req SessionRequest) (*SessionResult, error) {
	if caller == nil {
		return nil, utils.Unauthorized("authentication required")
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, utils.NewValidationError("user_id", "user_id is required")
	}
	if userID != caller.ID {
		return nil, utils.Forbidden("cannot start verification for another user")
	}
	if s.verifier == nil {
		return nil, utils.NotConfigured("identity verification")
	}

	if resumed := s.resume(ctx, userID); resumed != nil {
		return &SessionResult{VerificationSession: *resumed, Resumed: true}, nil
	}

	email := req.Email
	if email == "" {
		email = caller.Email
	}
	sess, err := s.verifier.Create(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	row := &models.ProviderVerification{
		UserID:                userID,
		VerificationSessionID: sess.ID,
		Status:                sess.Status,
		LastError:             sess.LastError,
	}
	if err := s.store.Upsert(ctx, row); err != nil {
		// The vendor already holds the session; the webhook will repair the row.
		s.logger.Error("Failed to record verification session",
			zap.String("userID", userID), zap.String("sessionID", sess.ID), zap.Error(err))
	}

	s.logger.Info("Verification session created", zap.String("userID", userID), zap.String("sessionID", sess.ID))
	return &SessionResult{VerificationSession: *sess}, nil
}

// resume returns the user's open session if the vendor still has it. Any
// failure along the way means a new session is created instead.
func (s *Service) resume(ctx context.Context, userID string) *models.VerificationSession {
	existing, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			s.logger.Warn("Verification row lookup failed", zap.String("userID", userID), zap.Error(err))
		}
		return nil
	}
	if existing.VerificationSessionID == "" ||
		(existing.Status != models.VerificationRequiresInput && existing.Status != models.VerificationProcessing) {
		return nil
	}

	sess, err := s.verifier.Retrieve(ctx, existing.VerificationSessionID)
	if err != nil {
		s.logger.Warn("Stale verification session, creating a new one",
			zap.String("userID", userID), zap.String("sessionID", existing.VerificationSessionID), zap.Error(err))
		return nil
	}
	if sess.Status == models.VerificationCanceled {
		return nil
	}
	return sess
}

// WebhookResult is the acknowledgement returned to the vendor.
type WebhookResult struct {
	EventID   string `json:"eventId"`
	SessionID string `json:"sessionId,omitempty"`
	Status    string `json:"status,omitempty"`
	Applied   bool   `json:"applied"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// HandleWebhook verifies and reconciles one identity webhook delivery.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.webhookSecret == "" {
		return nil, utils.NotConfigured("identity webhook secret")
	}
	if signature == "" {
		return nil, fmt.Errorf("%w: missing signature header", utils.ErrInvalidSignature)
	}
	event, err := ParseEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Warn("Rejected identity webhook", zap.Error(err))
		return nil, err
	}

	ref := event.Ref()
	result := &WebhookResult{EventID: ref.ID, SessionID: ref.SessionID}
	status, ok := Status(event)
	if !ok {
		return result, nil
	}
	result.Status = status

	if s.ledger != nil {
		fresh, err := s.ledger.Claim(ctx, WebhookSource, ref.ID)
		if err != nil {
			return nil, err
		}
		if !fresh {
			result.Duplicate = true
			return result, nil
		}
	}

	applied, err := s.reconcile(ctx, event, status)
	if err != nil {
		if s.ledger != nil {
			if relErr := s.ledger.Release(ctx, WebhookSource, ref.ID); relErr != nil {
				s.logger.Warn("Could not release webhook claim", zap.String("eventId", ref.ID), zap.Error(relErr))
			}
		}
		return nil, err
	}
	result.Applied = applied
	return result, nil
}

func (s *Service) reconcile(ctx context.Context, event Event, status string) (bool, error) {
	ref := event.Ref()
	lastError := ""
	if ri, ok := event.(VerificationRequiresInput); ok {
		lastError = ri.LastError
	}

	applied, err := s.store.ApplyStatus(ctx, ref.SessionID, status, lastError, ref.At)
	if errors.Is(err, utils.ErrNotFound) {
		if ref.UserID == "" {
			s.logger.Warn("Identity event for unknown session", zap.String("sessionID", ref.SessionID))
			return false, nil
		}
		// The row write at session creation was lost; rebuild it from the event.
		err = s.store.Upsert(ctx, &models.ProviderVerification{
			UserID:                ref.UserID,
			VerificationSessionID: ref.SessionID,
			Status:                models.VerificationRequiresInput,
		})
		if err == nil {
			applied, err = s.store.ApplyStatus(ctx, ref.SessionID, status, lastError, ref.At)
		}
	}
	if err != nil {
		return false, err
	}
	if !applied {
		s.logger.Info("Stale identity event skipped", zap.String("sessionID", ref.SessionID), zap.String("eventId", ref.ID))
	}

	// verified is terminal; the flag is set even when the row write was stale.
	if _, verified := event.(VerificationVerified); verified {
		if ref.UserID == "" {
			s.logger.Warn("Verified session carries no user id", zap.String("sessionID", ref.SessionID))
			return applied, nil
		}
		if err := s.providers.SetIdentityVerified(ctx, ref.UserID, true); err != nil {
			return applied, fmt.Errorf("flag provider %s verified: %w", ref.UserID, err)
		}
		s.logger.Info("Provider identity verified", zap.String("userID", ref.UserID))
	}
	return applied, nil
}
