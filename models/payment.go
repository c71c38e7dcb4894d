package models

// PaymentIntentRequest is the checkout payload for a single booking.
type PaymentIntentRequest struct {
	BookingID     string   `json:"bookingId"`
	TotalAmount   *float64 `json:"totalAmount"`
	CustomerEmail string   `json:"customerEmail"`
	CustomerName  string   `json:"customerName"`
	BusinessName  string   `json:"businessName"`
	ServiceName   string   `json:"serviceName"`
	Subtotal      float64  `json:"subtotal"`
	ServiceFee    float64  `json:"serviceFee"`
	PlatformFee   float64  `json:"platformFee"`
	Currency      string   `json:"currency"`
}

// PaymentIntentResult is returned once; the client secret is never stored.
type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// CheckoutSessionRequest starts a hosted checkout (subscription or one-off).
type CheckoutSessionRequest struct {
	PriceID       string `json:"priceId"`
	Mode          string `json:"mode"` // "subscription" or "payment"
	CustomerEmail string `json:"customerEmail"`
	BusinessID    string `json:"businessId"`
	BookingID     string `json:"bookingId"`
	Quantity      int64  `json:"quantity"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
}

// CheckoutSessionResult identifies the hosted checkout page.
type CheckoutSessionResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
