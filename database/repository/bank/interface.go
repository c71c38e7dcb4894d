package bankRepo

import (
	"context"
	"fmt"
	"time"

	"bookinghub/database"
	"bookinghub/models"
	"bookinghub/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BankLinkRepository stores linked bank items.
type BankLinkRepository interface {
	// Save upserts a link keyed by item_id.
	Save(ctx context.Context, link *models.BankLink) error
	GetByUserID(ctx context.Context, userID string) ([]models.BankLink, error)
}

type mongoBankRepo struct {
	coll *mongo.Collection
}

// NewMongoBankRepo returns a BankLinkRepository backed by MongoDB.
func NewMongoBankRepo() BankLinkRepository {
	return &mongoBankRepo{coll: database.DB().Collection("bank_links")}
}

func (r *mongoBankRepo) Save(ctx context.Context, link *models.BankLink) error {
	now := time.Now().UTC()
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	link.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"user_id":                link.UserID,
			"business_id":            link.BusinessID,
			"institution_name":       link.InstitutionName,
			"encrypted_access_token": link.EncryptedAccessToken,
			"updated_at":             now,
		},
		"$setOnInsert": bson.M{"id": link.ID, "created_at": now},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"item_id": link.ItemID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save bank link: %w", err)
	}
	return nil
}

func (r *mongoBankRepo) GetByUserID(ctx context.Context, userID string) ([]models.BankLink, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bank links: %w", err)
	}
	defer cursor.Close(ctx)

	var links []models.BankLink
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, utils.ErrNotFound
	}
	return links, nil
}

