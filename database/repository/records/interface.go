package recordsRepo

import (
	"context"

	"bookinghub/database"
	"bookinghub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ContactRecordRepository stores contact-form submissions.
type ContactRecordRepository interface {
	Create(ctx context.Context, submission *models.ContactSubmission) (string, error)
	MarkDelivered(ctx context.Context, id string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a ContactRecordRepository backed by MongoDB.
func NewMongoRecordRepo() ContactRecordRepository {
	return &mongoRecordRepo{coll: database.DB().Collection("contact_submissions")}
}
