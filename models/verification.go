package models

import "time"

// Verification session statuses, as reported by the identity vendor.
const (
	VerificationRequiresInput = "requires_input"
	VerificationProcessing    = "processing"
	VerificationVerified      = "verified"
	VerificationCanceled      = "canceled"
)

// ProviderVerification is the local verification-status row, one per user.
type ProviderVerification struct {
	UserID                string     `bson:"user_id" json:"user_id"`
	VerificationSessionID string     `bson:"verification_session_id" json:"verification_session_id"`
	Status                string     `bson:"status" json:"status"`
	LastError             string     `bson:"last_error,omitempty" json:"last_error,omitempty"`
	VerifiedAt            *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	StatusEventAt         *time.Time `bson:"status_event_at,omitempty" json:"-"`
	CreatedAt             time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `bson:"updated_at" json:"updated_at"`
}

// VerificationSession is the vendor's view of a verification workflow.
type VerificationSession struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
	URL          string `json:"url,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	LastError    string `json:"last_error,omitempty"`
}
