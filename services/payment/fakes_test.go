package payment

import (
	"context"
	"sync"
	"time"

	"bookinghub/models"
	"bookinghub/utils"
)

type fakeGateway struct {
	customerErr error
	intents     []IntentInput
	checkouts   []CheckoutInput
}

func (g *fakeGateway) FindOrCreateCustomer(context.Context, string, string) (string, error) {
	if g.customerErr != nil {
		return "", g.customerErr
	}
	return "cus_123", nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, in IntentInput) (*models.PaymentIntentResult, error) {
	g.intents = append(g.intents, in)
	return &models.PaymentIntentResult{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1", Amount: in.Amount, Currency: in.Currency}, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, in CheckoutInput) (*models.CheckoutSessionResult, error) {
	g.checkouts = append(g.checkouts, in)
	return &models.CheckoutSessionResult{SessionID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

// memoryBookings applies status mirrors with the same ordering rule as the
// Mongo repository.
type memoryBookings struct {
	mu       sync.Mutex
	rows     map[string]*models.Booking
	writes   int
	intentOf map[string]string
}

func newMemoryBookings(ids ...string) *memoryBookings {
	m := &memoryBookings{rows: map[string]*models.Booking{}, intentOf: map[string]string{}}
	for _, id := range ids {
		m.rows[id] = &models.Booking{ID: id, Status: models.BookingStatusPendingPayment, PaymentStatus: models.PaymentStatusPending}
	}
	return m
}

func (m *memoryBookings) ApplyStatus(_ context.Context, id string, mirror models.StatusMirror) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return false, utils.ErrNotFound
	}
	if at := row.StatusEventAt; at != nil && !at.Before(mirror.EventAt) {
		tie := at.Equal(mirror.EventAt) &&
			(mirror.PaymentStatus == models.PaymentStatusPaid || row.PaymentStatus != models.PaymentStatusPaid)
		if !tie {
			return false, nil
		}
	}
	m.writes++
	at := mirror.EventAt
	row.PreviousStatus = row.Status
	row.Status = mirror.BookingStatus
	row.BookingStatus = mirror.BookingStatus
	row.PaymentStatus = mirror.PaymentStatus
	row.StatusEventAt = &at
	row.StatusSource = mirror.Source
	row.UpdatedAt = time.Now()
	return true, nil
}

func (m *memoryBookings) SetPaymentIntent(_ context.Context, id, paymentIntentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return utils.ErrNotFound
	}
	m.intentOf[id] = paymentIntentID
	return nil
}

func (m *memoryBookings) get(id string) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}
