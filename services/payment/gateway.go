package payment

import (
	"context"
	"errors"
	"net/http"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// IntentInput is a fully computed payment intent to create.
type IntentInput struct {
	Amount        int64
	Currency      string
	CustomerID    string
	ReceiptEmail  string
	Description   string
	Metadata      map[string]string
	IdempotencyID string
}

// CheckoutInput is a hosted checkout session to create.
type CheckoutInput struct {
	PriceID       string
	Mode          string
	Quantity      int64
	CustomerEmail string
	ReferenceID   string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Gateway is the payment processor API used by the service.
type Gateway interface {
	FindOrCreateCustomer(ctx context.Context, email, name string) (string, error)
	CreatePaymentIntent(ctx context.Context, in IntentInput) (*models.PaymentIntentResult, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*models.CheckoutSessionResult, error)
}

// StripeGateway implements Gateway with a per-key stripe client.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, utils.NotConfigured("payment processor")
	}
	return &StripeGateway{api: client.New(secretKey, nil)}, nil
}

// API exposes the underlying client for other stripe-backed services.
func (g *StripeGateway) API() *client.API { return g.api }

func (g *StripeGateway) FindOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(email)}
	list.Context = ctx
	list.Limit = stripe.Int64(1)

	iter := g.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", StripeError(err)
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	if name != "" {
		params.Name = stripe.String(name)
	}
	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", StripeError(err)
	}
	return cust.ID, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, in IntentInput) (*models.PaymentIntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	if in.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(in.ReceiptEmail)
	}
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.IdempotencyID != "" {
		params.SetIdempotencyKey(in.IdempotencyID)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, StripeError(err)
	}
	return &models.PaymentIntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          pi.Amount,
		Currency:        string(pi.Currency),
	}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*models.CheckoutSessionResult, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(in.Mode),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(in.Quantity)},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	params.Context = ctx
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if in.ReferenceID != "" {
		params.ClientReferenceID = stripe.String(in.ReferenceID)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, StripeError(err)
	}
	return &models.CheckoutSessionResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// StripeError converts a stripe SDK error into a VendorError carrying the
// processor's HTTP status and message.
func StripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		msg := stripeErr.Msg
		if stripeErr.Code != "" {
			msg = msg + " (" + string(stripeErr.Code) + ")"
		}
		return &utils.VendorError{Vendor: "payment processor", Status: stripeErr.HTTPStatusCode, Message: msg}
	}
	return &utils.VendorError{Vendor: "payment processor", Status: http.StatusBadGateway, Message: err.Error()}
}
