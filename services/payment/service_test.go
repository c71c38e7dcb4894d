package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const testSecret = "whsec_test"

func amount(v float64) *float64 { return &v }

func newTestService(t *testing.T, gateway Gateway, bookings BookingStore) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	ledger := utils.NewEventLedger(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	return NewService(gateway, bookings, ledger, Options{
		WebhookSecret: testSecret,
		SuccessURL:    "https://app.example/success",
		CancelURL:     "https://app.example/cancel",
	}, zap.NewNop())
}

func signedEvent(t *testing.T, id, eventType string, created time.Time, object string) ([]byte, string) {
	t.Helper()
	payload := []byte(fmt.Sprintf(
		`{"id":%q,"object":"event","api_version":"2023-10-16","type":%q,"created":%d,"data":{"object":%s}}`,
		id, eventType, created.Unix(), object))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: testSecret})
	return signed.Payload, signed.Header
}

func intentObject(bookingID string) string {
	return fmt.Sprintf(`{"id":"pi_1","object":"payment_intent","metadata":{"booking_id":%q}}`, bookingID)
}

func TestCreateIntentRoundsToMinorUnits(t *testing.T) {
	gateway := &fakeGateway{}
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, gateway, bookings)

	res, err := svc.CreateIntent(context.Background(), models.PaymentIntentRequest{
		BookingID:     "b1",
		TotalAmount:   amount(125.50),
		CustomerEmail: "cara@example.com",
		BusinessName:  "Glow Studio",
		ServiceName:   "Facial",
		ServiceFee:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12550), res.Amount)
	assert.Equal(t, "usd", res.Currency)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)

	require.Len(t, gateway.intents, 1)
	in := gateway.intents[0]
	assert.Equal(t, "cus_123", in.CustomerID)
	assert.Equal(t, "b1", in.Metadata["booking_id"])
	assert.Equal(t, "5.00", in.Metadata["service_fee"])
	assert.Equal(t, "Glow Studio", in.Metadata["business_name"])
	assert.Equal(t, "pi_1", bookings.intentOf["b1"])
}

func TestToMinorUnitsRoundsRatherThanTruncates(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(101), ToMinorUnits(1.005+0.000001))
	assert.Equal(t, int64(29), ToMinorUnits(0.29))
}

func TestCreateIntentCustomerFailureIsBestEffort(t *testing.T) {
	gateway := &fakeGateway{customerErr: errors.New("customer API down")}
	svc := newTestService(t, gateway, newMemoryBookings("b1"))

	_, err := svc.CreateIntent(context.Background(), models.PaymentIntentRequest{
		BookingID: "b1", TotalAmount: amount(10), CustomerEmail: "cara@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, gateway.intents[0].CustomerID)
}

func TestCreateIntentRetryAfterCustomerRecoveryUsesNewKey(t *testing.T) {
	gateway := &fakeGateway{customerErr: errors.New("customer API down")}
	svc := newTestService(t, gateway, newMemoryBookings("b1"))
	req := models.PaymentIntentRequest{BookingID: "b1", TotalAmount: amount(125.50), CustomerEmail: "cara@example.com"}

	_, err := svc.CreateIntent(context.Background(), req)
	require.NoError(t, err)
	gateway.customerErr = nil
	_, err = svc.CreateIntent(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.CreateIntent(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, gateway.intents, 3)
	assert.Empty(t, gateway.intents[0].CustomerID)
	assert.Equal(t, "cus_123", gateway.intents[1].CustomerID)
	assert.NotEqual(t, gateway.intents[0].IdempotencyID, gateway.intents[1].IdempotencyID)
	assert.Equal(t, gateway.intents[1].IdempotencyID, gateway.intents[2].IdempotencyID)
	assert.Contains(t, gateway.intents[1].IdempotencyID, "intent:b1:")
}

func TestCreateIntentKeyChangesWithMetadata(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newTestService(t, gateway, newMemoryBookings("b1"))
	req := models.PaymentIntentRequest{BookingID: "b1", TotalAmount: amount(50), CustomerEmail: "cara@example.com", ServiceName: "Cut"}

	_, err := svc.CreateIntent(context.Background(), req)
	require.NoError(t, err)
	req.ServiceName = "Colour"
	_, err = svc.CreateIntent(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, gateway.intents[0].IdempotencyID, gateway.intents[1].IdempotencyID)
}

func TestCreateIntentValidation(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newTestService(t, gateway, nil)

	for _, req := range []models.PaymentIntentRequest{
		{TotalAmount: amount(10), CustomerEmail: "a@b.c"},
		{BookingID: "b1", CustomerEmail: "a@b.c"},
		{BookingID: "b1", TotalAmount: amount(0), CustomerEmail: "a@b.c"},
		{BookingID: "b1", TotalAmount: amount(-3), CustomerEmail: "a@b.c"},
		{BookingID: "b1", TotalAmount: amount(10)},
	} {
		_, err := svc.CreateIntent(context.Background(), req)
		assert.Equal(t, 400, utils.StatusFor(err))
	}
	assert.Empty(t, gateway.intents)
}

func TestCreateIntentWithoutGatewayIsConfigError(t *testing.T) {
	svc := NewService(nil, nil, nil, Options{}, zap.NewNop())
	_, err := svc.CreateIntent(context.Background(), models.PaymentIntentRequest{
		BookingID: "b1", TotalAmount: amount(10), CustomerEmail: "a@b.c",
	})
	assert.Equal(t, 500, utils.StatusFor(err))
	assert.Contains(t, err.Error(), "not configured")
}

func TestWebhookSucceededMarksPaidConfirmed(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)

	payload, header := signedEvent(t, "evt_1", "payment_intent.succeeded", time.Now(), intentObject("b1"))
	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	row := bookings.get("b1")
	assert.Equal(t, models.PaymentStatusPaid, row.PaymentStatus)
	assert.Equal(t, models.BookingStatusConfirmed, row.BookingStatus)
	assert.Equal(t, models.BookingStatusConfirmed, row.Status)
}

func TestWebhookFailedMarksFailedCancelled(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)

	object := `{"id":"pi_1","object":"payment_intent","metadata":{"booking_id":"b1"},"last_payment_error":{"message":"card declined"}}`
	payload, header := signedEvent(t, "evt_2", "payment_intent.payment_failed", time.Now(), object)
	_, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)

	row := bookings.get("b1")
	assert.Equal(t, models.PaymentStatusFailed, row.PaymentStatus)
	assert.Equal(t, models.BookingStatusCancelled, row.BookingStatus)
}

func TestWebhookInvalidSignatureNeverMutates(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)

	payload, _ := signedEvent(t, "evt_3", "payment_intent.succeeded", time.Now(), intentObject("b1"))
	forged := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_wrong"})

	for _, header := range []string{forged.Header, "", "t=1,v1=deadbeef"} {
		_, err := svc.HandleWebhook(context.Background(), payload, header)
		require.Error(t, err)
		assert.True(t, errors.Is(err, utils.ErrInvalidSignature))
		assert.Equal(t, 400, utils.StatusFor(err))
	}
	assert.Zero(t, bookings.writes)
	assert.Equal(t, models.PaymentStatusPending, bookings.get("b1").PaymentStatus)
}

func TestWebhookRedeliveryIsDeduplicated(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)

	payload, header := signedEvent(t, "evt_4", "payment_intent.succeeded", time.Now(), intentObject("b1"))
	_, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)

	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 1, bookings.writes)
}

func TestWebhookOutOfOrderEventIsNoOp(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)
	now := time.Now()

	payload, header := signedEvent(t, "evt_new", "payment_intent.succeeded", now, intentObject("b1"))
	_, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)

	payload, header = signedEvent(t, "evt_old", "payment_intent.payment_failed", now.Add(-time.Minute), intentObject("b1"))
	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, models.PaymentStatusPaid, bookings.get("b1").PaymentStatus)
}

func TestWebhookSameSecondSuccessAfterFailureApplies(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)
	second := time.Unix(time.Now().Unix(), 0)

	payload, header := signedEvent(t, "evt_fail", "payment_intent.payment_failed", second, intentObject("b1"))
	_, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, bookings.get("b1").PaymentStatus)

	payload, header = signedEvent(t, "evt_ok", "payment_intent.succeeded", second.Add(400*time.Millisecond), intentObject("b1"))
	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	row := bookings.get("b1")
	assert.Equal(t, models.PaymentStatusPaid, row.PaymentStatus)
	assert.Equal(t, models.BookingStatusConfirmed, row.BookingStatus)
}

func TestWebhookSameSecondFailureDoesNotUndoPaid(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)
	second := time.Unix(time.Now().Unix(), 0)

	payload, header := signedEvent(t, "evt_ok", "payment_intent.succeeded", second, intentObject("b1"))
	_, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)

	payload, header = signedEvent(t, "evt_fail", "payment_intent.payment_failed", second, intentObject("b1"))
	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, models.PaymentStatusPaid, bookings.get("b1").PaymentStatus)
}

func TestWebhookIgnoresOtherEventsAndUnknownBookings(t *testing.T) {
	bookings := newMemoryBookings("b1")
	svc := newTestService(t, &fakeGateway{}, bookings)

	payload, header := signedEvent(t, "evt_5", "customer.created", time.Now(), `{"id":"cus_1","object":"customer"}`)
	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.False(t, res.Applied)

	payload, header = signedEvent(t, "evt_6", "payment_intent.succeeded", time.Now(), intentObject("missing"))
	res, err = svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Zero(t, bookings.writes)
}

func TestCheckoutCompletedUsesClientReference(t *testing.T) {
	bookings := newMemoryBookings("b2")
	svc := newTestService(t, &fakeGateway{}, bookings)

	object := `{"id":"cs_1","object":"checkout.session","client_reference_id":"b2","metadata":{}}`
	payload, header := signedEvent(t, "evt_7", "checkout.session.completed", time.Now(), object)
	res, err := svc.HandleWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, "b2", res.BookingID)
	assert.Equal(t, models.PaymentStatusPaid, bookings.get("b2").PaymentStatus)
}

func TestCreateCheckoutSession(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newTestService(t, gateway, nil)

	res, err := svc.CreateCheckoutSession(context.Background(), models.CheckoutSessionRequest{PriceID: "price_1", BusinessID: "biz1"})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", res.SessionID)

	in := gateway.checkouts[0]
	assert.Equal(t, "subscription", in.Mode)
	assert.Equal(t, int64(1), in.Quantity)
	assert.Equal(t, "biz1", in.Metadata["business_id"])
	assert.Equal(t, "https://app.example/success", in.SuccessURL)

	_, err = svc.CreateCheckoutSession(context.Background(), models.CheckoutSessionRequest{PriceID: "price_1", Mode: "rental"})
	assert.Equal(t, 400, utils.StatusFor(err))
}
