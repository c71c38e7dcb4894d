package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"bookinghub/models"
	"bookinghub/utils"

	"go.uber.org/zap"
)

// WebhookSource namespaces payment events in the event ledger.
const WebhookSource = "stripe"

// BookingStore is the slice of the booking repository the service writes.
type BookingStore interface {
	ApplyStatus(ctx context.Context, id string, mirror models.StatusMirror) (bool, error)
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
}

// Ledger deduplicates webhook deliveries.
type Ledger interface {
	Claim(ctx context.Context, source, eventID string) (bool, error)
	Release(ctx context.Context, source, eventID string) error
}

// Options carries the service's configuration.
type Options struct {
	WebhookSecret   string
	DefaultCurrency string
	SuccessURL      string
	CancelURL       string
}

// Service creates payment intents and checkout sessions, and mirrors
// webhook outcomes onto bookings.
type Service struct {
	gateway  Gateway
	bookings BookingStore
	ledger   Ledger
	opts     Options
	logger   *zap.Logger
}

// NewService builds the service. A nil gateway means the processor is not
// configured; calls that need it fail with a ConfigError.
func NewService(gateway Gateway, bookings BookingStore, ledger Ledger, opts Options, logger *zap.Logger) *Service {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "usd"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gateway, bookings: bookings, ledger: ledger, opts: opts, logger: logger}
}

// intentIdempotencyKey covers every parameter sent with the intent. The
// customer is resolved best-effort, so a retry that finds one where the first
// call did not gets a fresh key instead of a processor idempotency error.
func intentIdempotencyKey(bookingID string, in IntentInput) string {
	keys := make([]string, 0, len(in.Metadata))
	for k := range in.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s", in.Amount, in.Currency, in.CustomerID, in.ReceiptEmail, in.Description)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, in.Metadata[k])
	}
	return fmt.Sprintf("intent:%s:%s", bookingID, hex.EncodeToString(h.Sum(nil))[:24])
}

// ToMinorUnits converts a decimal amount to integer minor units, rounding.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateIntent validates the request and creates a payment intent for it.
func (s *Service) CreateIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntentResult, error) {
	switch {
	case strings.TrimSpace(req.BookingID) == "":
		return nil, utils.NewValidationError("bookingId", "bookingId is required")
	case req.TotalAmount == nil:
		return nil, utils.NewValidationError("totalAmount", "totalAmount is required")
	case math.IsNaN(*req.TotalAmount) || math.IsInf(*req.TotalAmount, 0) || *req.TotalAmount <= 0:
		return nil, utils.NewValidationError("totalAmount", "totalAmount must be a positive number")
	case strings.TrimSpace(req.CustomerEmail) == "":
		return nil, utils.NewValidationError("customerEmail", "customerEmail is required")
	}
	if s.gateway == nil {
		return nil, utils.NotConfigured("payment processor")
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	// A customer record is nice to have; the intent goes ahead without one.
	customerID, err := s.gateway.FindOrCreateCustomer(ctx, req.CustomerEmail, req.CustomerName)
	if err != nil {
		s.logger.Warn("Customer lookup failed, creating intent without customer",
			zap.String("bookingId", req.BookingID), zap.Error(err))
		customerID = ""
	}

	amount := ToMinorUnits(*req.TotalAmount)
	in := IntentInput{
		Amount:       amount,
		Currency:     currency,
		CustomerID:   customerID,
		ReceiptEmail: req.CustomerEmail,
		Description:  intentDescription(req),
		Metadata: map[string]string{
			"booking_id":     req.BookingID,
			"customer_email": req.CustomerEmail,
			"subtotal":       formatAmount(req.Subtotal),
			"service_fee":    formatAmount(req.ServiceFee),
			"platform_fee":   formatAmount(req.PlatformFee),
			"business_name":  req.BusinessName,
			"service_name":   req.ServiceName,
		},
	}
	in.IdempotencyID = intentIdempotencyKey(req.BookingID, in)

	result, err := s.gateway.CreatePaymentIntent(ctx, in)
	if err != nil {
		return nil, err
	}
	if result.Amount == 0 {
		result.Amount = in.Amount
	}
	if result.Currency == "" {
		result.Currency = currency
	}

	if s.bookings != nil {
		if err := s.bookings.SetPaymentIntent(ctx, req.BookingID, result.PaymentIntentID); err != nil {
			s.logger.Warn("Could not link payment intent to booking",
				zap.String("bookingId", req.BookingID), zap.String("paymentIntentId", result.PaymentIntentID), zap.Error(err))
		}
	}

	s.logger.Info("Payment intent created",
		zap.String("bookingId", req.BookingID), zap.String("paymentIntentId", result.PaymentIntentID), zap.Int64("amount", in.Amount))
	return result, nil
}

func intentDescription(req models.PaymentIntentRequest) string {
	switch {
	case req.ServiceName != "" && req.BusinessName != "":
		return fmt.Sprintf("%s at %s", req.ServiceName, req.BusinessName)
	case req.ServiceName != "":
		return req.ServiceName
	default:
		return "Booking " + req.BookingID
	}
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// CreateCheckoutSession starts a hosted checkout for a price.
func (s *Service) CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (*models.CheckoutSessionResult, error) {
	if strings.TrimSpace(req.PriceID) == "" {
		return nil, utils.NewValidationError("priceId", "priceId is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = "subscription"
	}
	if mode != "subscription" && mode != "payment" {
		return nil, utils.NewValidationError("mode", "mode must be subscription or payment")
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	successURL := firstNonEmpty(req.SuccessURL, s.opts.SuccessURL)
	cancelURL := firstNonEmpty(req.CancelURL, s.opts.CancelURL)
	if successURL == "" || cancelURL == "" {
		return nil, utils.NotConfigured("checkout redirect URLs")
	}
	if s.gateway == nil {
		return nil, utils.NotConfigured("payment processor")
	}

	metadata := map[string]string{}
	if req.BookingID != "" {
		metadata["booking_id"] = req.BookingID
	}
	if req.BusinessID != "" {
		metadata["business_id"] = req.BusinessID
	}

	return s.gateway.CreateCheckoutSession(ctx, CheckoutInput{
		PriceID:       req.PriceID,
		Mode:          mode,
		Quantity:      quantity,
		CustomerEmail: req.CustomerEmail,
		ReferenceID:   firstNonEmpty(req.BookingID, req.BusinessID),
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		Metadata:      metadata,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// WebhookResult is the acknowledgement returned to the processor.
type WebhookResult struct {
	EventID   string `json:"eventId"`
	Type      string `json:"type"`
	BookingID string `json:"bookingId,omitempty"`
	Applied   bool   `json:"applied"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// HandleWebhook verifies and applies one webhook delivery. Nothing is written
// unless the signature verifies.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.opts.WebhookSecret == "" {
		return nil, utils.NotConfigured("payment webhook secret")
	}
	if signature == "" {
		return nil, fmt.Errorf("%w: missing signature header", utils.ErrInvalidSignature)
	}
	event, err := ParseEvent(payload, signature, s.opts.WebhookSecret)
	if err != nil {
		s.logger.Warn("Rejected payment webhook", zap.Error(err))
		return nil, err
	}

	result := &WebhookResult{EventID: event.EventID(), Type: event.Type()}
	if _, ignored := event.(Ignored); ignored {
		return result, nil
	}

	if s.ledger != nil {
		fresh, err := s.ledger.Claim(ctx, WebhookSource, event.EventID())
		if err != nil {
			return nil, err
		}
		if !fresh {
			result.Duplicate = true
			return result, nil
		}
	}

	applied, err := s.apply(ctx, event, result)
	if err != nil {
		if s.ledger != nil {
			if relErr := s.ledger.Release(ctx, WebhookSource, event.EventID()); relErr != nil {
				s.logger.Warn("Could not release webhook claim", zap.String("eventId", event.EventID()), zap.Error(relErr))
			}
		}
		return nil, err
	}
	result.Applied = applied
	return result, nil
}

func (s *Service) apply(ctx context.Context, event Event, result *WebhookResult) (bool, error) {
	mirror := models.StatusMirror{Source: WebhookSource, EventID: event.EventID(), EventAt: event.OccurredAt()}

	switch ev := event.(type) {
	case PaymentSucceeded:
		result.BookingID = ev.BookingID
		mirror.PaymentStatus = models.PaymentStatusPaid
		mirror.BookingStatus = models.BookingStatusConfirmed
	case PaymentFailed:
		result.BookingID = ev.BookingID
		mirror.PaymentStatus = models.PaymentStatusFailed
		mirror.BookingStatus = models.BookingStatusCancelled
		s.logger.Info("Payment failed", zap.String("bookingId", ev.BookingID), zap.String("reason", ev.Reason))
	case CheckoutCompleted:
		result.BookingID = ev.BookingID
		mirror.PaymentStatus = models.PaymentStatusPaid
		mirror.BookingStatus = models.BookingStatusConfirmed
	default:
		return false, nil
	}

	if result.BookingID == "" {
		s.logger.Warn("Payment event carries no booking id", zap.String("eventId", event.EventID()), zap.String("type", event.Type()))
		return false, nil
	}
	if s.bookings == nil {
		return false, utils.NotConfigured("booking store")
	}

	applied, err := s.bookings.ApplyStatus(ctx, result.BookingID, mirror)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logger.Warn("Payment event for unknown booking", zap.String("bookingId", result.BookingID), zap.String("eventId", event.EventID()))
			return false, nil
		}
		return false, err
	}
	if !applied {
		s.logger.Info("Stale payment event skipped", zap.String("bookingId", result.BookingID), zap.String("eventId", event.EventID()))
	}
	return applied, nil
}
