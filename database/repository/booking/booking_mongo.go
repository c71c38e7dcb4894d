package bookingRepo

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

// GetByID retrieves a booking by its ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// Recent returns up to limit bookings in scope, newest update first.
func (r *MongoBookingRepo) Recent(ctx context.Context, scope models.BookingScope, limit int) ([]models.Booking, error) {
	filter := scopeFilter(scope, "")
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode recent bookings: %w", err)
	}
	return bookings, nil
}

// ApplyStatus sets status, booking_status and payment_status in one pipeline
// update, carrying the old status into previous_status. Vendor event times
// have one-second resolution, so a mirror from the same second still applies
// unless the row is already paid and this mirror is not. Older mirrors match
// nothing and cannot regress the row; redeliveries are caught earlier by the
// event ledger.
func (r *MongoBookingRepo) ApplyStatus(ctx context.Context, id string, mirror models.StatusMirror) (bool, error) {
	eventAt := mirror.EventAt.UTC()
	filter := bson.M{"id": id, "$or": orderingGuard(eventAt, mirror.PaymentStatus)}

	set := bson.M{
		"previous_status": "$status",
		"status_event_at": eventAt,
		"status_source":   mirror.Source,
		"updated_at":      time.Now().UTC(),
	}
	if mirror.BookingStatus != "" {
		set["status"] = mirror.BookingStatus
		set["booking_status"] = mirror.BookingStatus
	}
	if mirror.PaymentStatus != "" {
		set["payment_status"] = mirror.PaymentStatus
	}
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to apply status to booking %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// Either the booking does not exist or a newer event already landed.
	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to check booking %s: %w", id, err)
	}
	if count == 0 {
		return false, utils.ErrNotFound
	}
	return false, nil
}

// orderingGuard matches rows with no ordering token, an older token, or the
// same token when the tie may be taken.
func orderingGuard(eventAt time.Time, paymentStatus string) bson.A {
	sameSecond := bson.M{"status_event_at": eventAt}
	if paymentStatus != models.PaymentStatusPaid {
		sameSecond["payment_status"] = bson.M{"$ne": models.PaymentStatusPaid}
	}
	return bson.A{
		bson.M{"status_event_at": bson.M{"$exists": false}},
		bson.M{"status_event_at": nil},
		bson.M{"status_event_at": bson.M{"$lt": eventAt}},
		sameSecond,
	}
}

// SetPaymentIntent records the payment intent created for the booking and
// marks payment pending unless a payment status is already set.
func (r *MongoBookingRepo) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"payment_intent_id": paymentIntentID,
		"payment_status":    bson.M{"$ifNull": bson.A{"$payment_status", models.PaymentStatusPending}},
		"updated_at":        time.Now().UTC(),
	}}}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to link payment intent to booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// Reassign moves a booking to providerID and returns the updated row.
func (r *MongoBookingRepo) Reassign(ctx context.Context, id, providerID string) (*models.Booking, error) {
	update := bson.M{"$set": bson.M{
		"provider_id": providerID,
		"updated_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to reassign booking %s: %w", id, err)
	}
	return &booking, nil
}
