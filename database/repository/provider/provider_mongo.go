package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookinghub/database"
	"bookinghub/models"
	"bookinghub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo() ProviderRepository {
	repo := &MongoProviderRepo{coll: database.DB().Collection("providers")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create provider indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoProviderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "is_active", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoProviderRepo) findOne(ctx context.Context, filter bson.M) (*models.Provider, error) {
	var provider models.Provider
	if err := r.coll.FindOne(ctx, filter).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider: %w", err)
	}
	return &provider, nil
}

func (r *MongoProviderRepo) GetByUserID(ctx context.Context, userID string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoProviderRepo) ListByBusiness(ctx context.Context, businessID string) ([]models.Provider, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"business_id": businessID, "is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list providers for business %s: %w", businessID, err)
	}
	defer cursor.Close(ctx)

	var providers []models.Provider
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) SetIdentityVerified(ctx context.Context, userID string, verified bool) error {
	update := bson.M{"$set": bson.M{"identity_verified": verified, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update identity flag for %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
