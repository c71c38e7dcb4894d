package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Auth middleware, header-only and header-or-query (websocket).
	RequireSession      gin.HandlerFunc
	RequireSessionQuery gin.HandlerFunc

	// Auth endpoints
	SignInHandler         gin.HandlerFunc
	SignOutHandler        gin.HandlerFunc
	MeHandler             gin.HandlerFunc
	RegisterDeviceHandler gin.HandlerFunc

	// Payment endpoints
	CreateIntentHandler          gin.HandlerFunc
	CreateCheckoutSessionHandler gin.HandlerFunc
	PaymentWebhookHandler        gin.HandlerFunc

	// Identity endpoints
	CreateVerificationSessionHandler gin.HandlerFunc
	IdentityWebhookHandler           gin.HandlerFunc

	// Messaging endpoint
	MessagingHandler gin.HandlerFunc

	// Realtime endpoint
	BookingStreamHandler gin.HandlerFunc

	// Booking endpoints
	RecentBookingsHandler  gin.HandlerFunc
	ReassignBookingHandler gin.HandlerFunc

	// Banking endpoints
	LinkTokenHandler     gin.HandlerFunc
	ExchangeTokenHandler gin.HandlerFunc
	BankLinksHandler     gin.HandlerFunc

	// Contact endpoint
	ContactHandler gin.HandlerFunc

	// Document endpoints
	UploadDocumentHandler gin.HandlerFunc
	DeleteDocumentHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
