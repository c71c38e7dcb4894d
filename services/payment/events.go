package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"bookinghub/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Vendor event types the webhook acts on.
const (
	eventPaymentSucceeded  = "payment_intent.succeeded"
	eventPaymentFailed     = "payment_intent.payment_failed"
	eventCheckoutCompleted = "checkout.session.completed"
)

// Event is a verified payment webhook event. The concrete type says what
// happened; Ignored covers every type the service does not act on.
type Event interface {
	EventID() string
	OccurredAt() time.Time
	Type() string
}

type eventMeta struct {
	ID   string
	At   time.Time
	Kind string
}

func (m eventMeta) EventID() string       { return m.ID }
func (m eventMeta) OccurredAt() time.Time { return m.At }
func (m eventMeta) Type() string          { return m.Kind }

type PaymentSucceeded struct {
	eventMeta
	PaymentIntentID string
	BookingID       string
}

type PaymentFailed struct {
	eventMeta
	PaymentIntentID string
	BookingID       string
	Reason          string
}

type CheckoutCompleted struct {
	eventMeta
	SessionID  string
	BookingID  string
	BusinessID string
}

type Ignored struct {
	eventMeta
}

// ParseEvent verifies the signature header over the raw payload and decodes
// the event into its variant. Any verification failure wraps
// utils.ErrInvalidSignature.
func ParseEvent(payload []byte, signature, secret string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSignature, err)
	}

	meta := eventMeta{ID: ev.ID, At: time.Unix(ev.Created, 0).UTC(), Kind: string(ev.Type)}
	switch string(ev.Type) {
	case eventPaymentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		return PaymentSucceeded{eventMeta: meta, PaymentIntentID: pi.ID, BookingID: pi.Metadata["booking_id"]}, nil

	case eventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		failed := PaymentFailed{eventMeta: meta, PaymentIntentID: pi.ID, BookingID: pi.Metadata["booking_id"]}
		if pi.LastPaymentError != nil {
			failed.Reason = pi.LastPaymentError.Msg
		}
		return failed, nil

	case eventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		bookingID := cs.Metadata["booking_id"]
		if bookingID == "" {
			bookingID = cs.ClientReferenceID
		}
		return CheckoutCompleted{eventMeta: meta, SessionID: cs.ID, BookingID: bookingID, BusinessID: cs.Metadata["business_id"]}, nil

	default:
		return Ignored{eventMeta: meta}, nil
	}
}
