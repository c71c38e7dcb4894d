package verificationRepo

import (
	"context"
	"time"

	"bookinghub/database"
	"bookinghub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// VerificationRepository persists the local identity-verification row.
type VerificationRepository interface {
	// GetByUserID returns the user's row, or utils.ErrNotFound.
	GetByUserID(ctx context.Context, userID string) (*models.ProviderVerification, error)
	// Upsert writes the row keyed by user_id.
	Upsert(ctx context.Context, v *models.ProviderVerification) error
	// ApplyStatus records a webhook status for a session, dropping events older
	// than the last one applied. A same-second event applies unless it would
	// move a verified row back. Reports whether the write took effect.
	ApplyStatus(ctx context.Context, sessionID, status, lastError string, eventAt time.Time) (bool, error)
}

type mongoVerificationRepo struct {
	coll *mongo.Collection
}

// NewMongoVerificationRepo returns a VerificationRepository backed by MongoDB.
func NewMongoVerificationRepo() VerificationRepository {
	return &mongoVerificationRepo{coll: database.DB().Collection("provider_verifications")}
}
