package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bookinghub/handlers"
	"bookinghub/middleware"
	"bookinghub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func stub(name string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, name) }
}

func newTestRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	session := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(middleware.ContextUserKey, &models.AuthUser{ID: "u1", ProviderRole: role})
		c.Next()
	}
	hb := &handlers.HandlerBundle{
		RequireSession:                   session,
		RequireSessionQuery:              session,
		SignInHandler:                    stub("signin"),
		SignOutHandler:                   stub("signout"),
		MeHandler:                        stub("me"),
		RegisterDeviceHandler:            stub("device"),
		CreateIntentHandler:              stub("intent"),
		CreateCheckoutSessionHandler:     stub("checkout"),
		PaymentWebhookHandler:            stub("stripe"),
		CreateVerificationSessionHandler: stub("identity"),
		IdentityWebhookHandler:           stub("identity-webhook"),
		MessagingHandler:                 stub("messaging"),
		BookingStreamHandler:             stub("stream"),
		RecentBookingsHandler:            stub("recent"),
		ReassignBookingHandler:           stub("reassign"),
		LinkTokenHandler:                 stub("link"),
		ExchangeTokenHandler:             stub("exchange"),
		BankLinksHandler:                 stub("links"),
		ContactHandler:                   stub("contact"),
		UploadDocumentHandler:            stub("upload"),
		DeleteDocumentHandler:            stub("delete"),
		HealthHandler:                    stub("health"),
	}
	r := gin.New()
	RegisterRoutes(r, hb)
	return r
}

func serve(r http.Handler, method, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer t")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	r := newTestRouter("provider")

	assert.Equal(t, "contact", serve(r, http.MethodPost, "/api/contact", false).Body.String())
	assert.Equal(t, "stripe", serve(r, http.MethodPost, "/api/webhooks/stripe", false).Body.String())
	assert.Equal(t, "intent", serve(r, http.MethodPost, "/api/payments/intent", false).Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/messaging", false).Code)
	assert.Equal(t, "messaging", serve(r, http.MethodPost, "/api/messaging", true).Body.String())
	assert.Equal(t, "link", serve(r, http.MethodPost, "/api/banking/link-token", true).Body.String())
}

func TestReassignNeedsPermission(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(newTestRouter("provider"), http.MethodPatch, "/api/bookings/b1/reassign", true).Code)
	assert.Equal(t, "reassign", serve(newTestRouter("dispatcher"), http.MethodPatch, "/api/bookings/b1/reassign", true).Body.String())
}

func TestWrongMethodIs405(t *testing.T) {
	r := newTestRouter("provider")
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodGet, "/api/contact", false).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPut, "/api/payments/intent", false).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/nope", false).Code)
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	r := newTestRouter("provider")
	req := httptest.NewRequest(http.MethodOptions, "/api/payments/intent", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
