package routes

import (
	"time"

	"bookinghub/handlers"
	"bookinghub/middleware"
	"bookinghub/services/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-in, sign-out and session endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signin", hb.SignInHandler)

		// Protected routes (Require Authentication)
		protected := api.Group("", hb.RequireSession)
		protected.POST("/signout", hb.SignOutHandler)
		protected.GET("/me", hb.MeHandler)
		protected.POST("/device", hb.RegisterDeviceHandler)
	}
}

// RegisterPaymentRoutes registers payment intent and checkout endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/intent", hb.CreateIntentHandler)
		api.POST("/checkout-session", hb.CreateCheckoutSessionHandler)
	}
}

// RegisterWebhookRoutes registers vendor webhooks. They authenticate by
// signature, never by session.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/webhooks")
	{
		api.POST("/stripe", hb.PaymentWebhookHandler)
		api.POST("/identity", hb.IdentityWebhookHandler)
	}
}

// RegisterIdentityRoutes registers identity verification endpoints.
func RegisterIdentityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/identity", hb.RequireSession)
	{
		api.POST("/verification-session", hb.CreateVerificationSessionHandler)
	}
}

// RegisterMessagingRoutes registers the messaging bridge.
func RegisterMessagingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/messaging", hb.RequireSession, hb.MessagingHandler)
}

// RegisterRealtimeRoutes registers the booking stream websocket.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/realtime/bookings", hb.RequireSessionQuery, hb.BookingStreamHandler)
}

// RegisterBookingRoutes registers staff booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings", hb.RequireSession)
	{
		api.GET("", middleware.RequirePermission(auth.PermViewBookings), hb.RecentBookingsHandler)
		api.PATCH("/:id/reassign", middleware.RequirePermission(auth.PermReassignBookings), hb.ReassignBookingHandler)
	}
}

// RegisterBankingRoutes registers bank link endpoints.
func RegisterBankingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/banking", hb.RequireSession)
	{
		api.POST("/link-token", hb.LinkTokenHandler)
		api.POST("/exchange", hb.ExchangeTokenHandler)
		api.GET("/links", hb.BankLinksHandler)
	}
}

// RegisterContactRoutes registers the public contact form.
func RegisterContactRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/contact", hb.ContactHandler)
}

// RegisterDocumentRoutes registers document upload endpoints.
func RegisterDocumentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/documents", hb.RequireSession)
	{
		api.POST("", hb.UploadDocumentHandler)
		api.DELETE("", hb.DeleteDocumentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.HandleMethodNotAllowed = true
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	r.NoMethod(methodNotAllowed)
	r.NoRoute(notFound)

	RegisterAuthRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterIdentityRoutes(r, hb)
	RegisterMessagingRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterBankingRoutes(r, hb)
	RegisterContactRoutes(r, hb)
	RegisterDocumentRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
