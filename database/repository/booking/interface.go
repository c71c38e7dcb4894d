package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"bookinghub/database"
	"bookinghub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository defines data access for booking rows.
type BookingRepository interface {
	// GetByID retrieves a booking by its ID. Returns utils.ErrNotFound when missing.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Recent returns the newest bookings in scope ordered by updated_at desc.
	Recent(ctx context.Context, scope models.BookingScope, limit int) ([]models.Booking, error)
	// ApplyStatus writes a vendor status mirror unless a newer one was already
	// applied. It reports whether the write took effect.
	ApplyStatus(ctx context.Context, id string, mirror models.StatusMirror) (bool, error)
	// SetPaymentIntent links a payment intent to the booking.
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
	// Reassign moves the booking to another provider.
	Reassign(ctx context.Context, id, providerID string) (*models.Booking, error)
	// Subscribe opens a change feed on bookings visible to scope.
	Subscribe(ctx context.Context, scope models.BookingScope) (Subscription, error)
}

// Subscription is an open change feed. It follows the cursor protocol of the
// mongo driver: call Next until it returns false, then check Err.
type Subscription interface {
	Next(ctx context.Context) bool
	Current() models.BookingChange
	Err() error
	Close(ctx context.Context) error
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a booking repository on the application database.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{coll: database.DB().Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// scopeField maps a listener role to the foreign key it filters on.
func scopeField(role models.ListenerRole) string {
	switch role {
	case models.ListenerRoleCustomer:
		return "customer_id"
	case models.ListenerRoleProvider:
		return "provider_id"
	case models.ListenerRoleBusiness:
		return "business_id"
	default:
		return ""
	}
}

// scopeFilter builds the row filter for scope. prefix is prepended to every
// field, "fullDocument." for change streams. A role-unset scope matches any of
// the three party keys; only the unfiltered scope yields an empty filter.
func scopeFilter(scope models.BookingScope, prefix string) bson.M {
	legs := scope.Legs()
	switch len(legs) {
	case 0:
		return bson.M{}
	case 1:
		return bson.M{prefix + scopeField(legs[0].Role): legs[0].ID}
	}
	or := make(bson.A, 0, len(legs))
	for _, leg := range legs {
		or = append(or, bson.M{prefix + scopeField(leg.Role): leg.ID})
	}
	return bson.M{"$or": or}
}
