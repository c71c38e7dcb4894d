package recordsRepo

import (
	"context"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new submission and returns its ID.
func (r *mongoRecordRepo) Create(ctx context.Context, submission *models.ContactSubmission) (string, error) {
	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	submission.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, submission); err != nil {
		return "", err
	}
	return submission.ID, nil
}

// MarkDelivered flags a submission once the notification email went out.
func (r *mongoRecordRepo) MarkDelivered(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"delivered": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
