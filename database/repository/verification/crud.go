package verificationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoVerificationRepo) GetByUserID(ctx context.Context, userID string) (*models.ProviderVerification, error) {
	var v models.ProviderVerification
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch verification for %s: %w", userID, err)
	}
	return &v, nil
}

func (r *mongoVerificationRepo) Upsert(ctx context.Context, v *models.ProviderVerification) error {
	now := time.Now().UTC()
	v.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"verification_session_id": v.VerificationSessionID,
			"status":                  v.Status,
			"last_error":              v.LastError,
			"updated_at":              now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": v.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert verification for %s: %w", v.UserID, err)
	}
	return nil
}

func (r *mongoVerificationRepo) ApplyStatus(ctx context.Context, sessionID, status, lastError string, eventAt time.Time) (bool, error) {
	eventAt = eventAt.UTC()
	// Event times have one-second resolution. A same-second event applies
	// unless it would move a verified row back.
	sameSecond := bson.M{"status_event_at": eventAt}
	if status != models.VerificationVerified {
		sameSecond["status"] = bson.M{"$ne": models.VerificationVerified}
	}
	filter := bson.M{
		"verification_session_id": sessionID,
		"$or": bson.A{
			bson.M{"status_event_at": bson.M{"$exists": false}},
			bson.M{"status_event_at": nil},
			bson.M{"status_event_at": bson.M{"$lt": eventAt}},
			sameSecond,
		},
	}
	set := bson.M{
		"status":          status,
		"last_error":      lastError,
		"status_event_at": eventAt,
		"updated_at":      time.Now().UTC(),
	}
	if status == models.VerificationVerified {
		set["verified_at"] = eventAt
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to apply verification status for %s: %w", sessionID, err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"verification_session_id": sessionID})
	if err != nil {
		return false, fmt.Errorf("failed to check verification %s: %w", sessionID, err)
	}
	if count == 0 {
		return false, utils.ErrNotFound
	}
	return false, nil
}
