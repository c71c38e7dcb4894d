package identity

import (
	"context"

	"bookinghub/models"
	"bookinghub/services/payment"
	"bookinghub/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Verifier is the identity-verification vendor.
type Verifier interface {
	Retrieve(ctx context.Context, sessionID string) (*models.VerificationSession, error)
	Create(ctx context.Context, userID, email string) (*models.VerificationSession, error)
}

// StripeVerifier creates document verification sessions that require a live
// ID capture, an ID number and a matching selfie.
type StripeVerifier struct {
	api       *client.API
	returnURL string
}

func NewStripeVerifier(secretKey, returnURL string) (*StripeVerifier, error) {
	if secretKey == "" {
		return nil, utils.NotConfigured("identity verification")
	}
	return &StripeVerifier{api: client.New(secretKey, nil), returnURL: returnURL}, nil
}

func (v *StripeVerifier) Retrieve(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	params := &stripe.IdentityVerificationSessionParams{}
	params.Context = ctx
	vs, err := v.api.IdentityVerificationSessions.Get(sessionID, params)
	if err != nil {
		return nil, payment.StripeError(err)
	}
	return toSession(vs), nil
}

func (v *StripeVerifier) Create(ctx context.Context, userID, email string) (*models.VerificationSession, error) {
	params := &stripe.IdentityVerificationSessionParams{
		Type: stripe.String(string(stripe.IdentityVerificationSessionTypeDocument)),
		Options: &stripe.IdentityVerificationSessionOptionsParams{
			Document: &stripe.IdentityVerificationSessionOptionsDocumentParams{
				RequireMatchingSelfie: stripe.Bool(true),
				RequireIDNumber:       stripe.Bool(true),
				RequireLiveCapture:    stripe.Bool(true),
			},
		},
	}
	params.Context = ctx
	if v.returnURL != "" {
		params.ReturnURL = stripe.String(v.returnURL)
	}
	params.AddMetadata("user_id", userID)
	if email != "" {
		params.AddMetadata("email", email)
	}

	vs, err := v.api.IdentityVerificationSessions.New(params)
	if err != nil {
		return nil, payment.StripeError(err)
	}
	return toSession(vs), nil
}

func toSession(vs *stripe.IdentityVerificationSession) *models.VerificationSession {
	out := &models.VerificationSession{
		ID:           vs.ID,
		Status:       string(vs.Status),
		ClientSecret: vs.ClientSecret,
		URL:          vs.URL,
		UserID:       vs.Metadata["user_id"],
	}
	if vs.LastError != nil {
		out.LastError = vs.LastError.Reason
	}
	return out
}
