package bookingRepo

import (
	"context"
	"fmt"

	"bookinghub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// changeEvent is the subset of a change stream document we decode.
type changeEvent struct {
	OperationType            string          `bson:"operationType"`
	FullDocument             *models.Booking `bson:"fullDocument"`
	FullDocumentBeforeChange *models.Booking `bson:"fullDocumentBeforeChange"`
	UpdateDescription        struct {
		UpdatedFields bson.M `bson:"updatedFields"`
	} `bson:"updateDescription"`
}

type mongoSubscription struct {
	stream  *mongo.ChangeStream
	current models.BookingChange
	err     error
}

// Subscribe opens a change stream filtered to the scope's party keys. Inserts
// and updates are delivered; the post-image is always looked up and the
// pre-image is used when the collection has pre-images enabled.
func (r *MongoBookingRepo) Subscribe(ctx context.Context, scope models.BookingScope) (Subscription, error) {
	match := scopeFilter(scope, "fullDocument.")
	match["operationType"] = bson.M{"$in": bson.A{"insert", "update", "replace"}}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}

	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open booking change stream: %w", err)
	}
	return &mongoSubscription{stream: stream}, nil
}

func (s *mongoSubscription) Next(ctx context.Context) bool {
	for s.stream.Next(ctx) {
		var ev changeEvent
		if err := s.stream.Decode(&ev); err != nil {
			s.err = fmt.Errorf("failed to decode booking change: %w", err)
			return false
		}
		if ev.FullDocument == nil {
			// The row was deleted before the post-image lookup ran.
			continue
		}
		s.current = toBookingChange(ev)
		return true
	}
	return false
}

func (s *mongoSubscription) Current() models.BookingChange { return s.current }

func (s *mongoSubscription) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.stream.Err()
}

func (s *mongoSubscription) Close(ctx context.Context) error {
	return s.stream.Close(ctx)
}

func toBookingChange(ev changeEvent) models.BookingChange {
	change := models.BookingChange{Booking: *ev.FullDocument}
	if ev.OperationType == "insert" {
		change.Operation = models.ChangeInsert
		return change
	}

	change.Operation = models.ChangeUpdate
	if ev.OperationType == "replace" {
		// A replace carries no field list; only a pre-image can show the status moved.
		change.StatusTouched = ev.FullDocumentBeforeChange != nil &&
			ev.FullDocumentBeforeChange.Status != ev.FullDocument.Status
	} else {
		_, change.StatusTouched = ev.UpdateDescription.UpdatedFields["status"]
	}

	switch {
	case ev.FullDocumentBeforeChange != nil:
		change.Before = ev.FullDocumentBeforeChange
	case change.StatusTouched && ev.FullDocument.PreviousStatus != "":
		// Without pre-images, status writers carry the prior value in previous_status.
		change.Before = &models.Booking{ID: ev.FullDocument.ID, Status: ev.FullDocument.PreviousStatus}
	}
	return change
}
