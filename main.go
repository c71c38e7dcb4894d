package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookinghub/config"
	"bookinghub/cron"
	"bookinghub/database"
	"bookinghub/database/repository"
	"bookinghub/handlers"
	"bookinghub/middleware"
	"bookinghub/models"
	"bookinghub/routes"
	"bookinghub/services/auth"
	"bookinghub/services/banking"
	"bookinghub/services/booking"
	"bookinghub/services/contact"
	"bookinghub/services/identity"
	"bookinghub/services/messaging"
	"bookinghub/services/notification"
	"bookinghub/services/payment"
	"bookinghub/services/realtime"
	"bookinghub/services/storage"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// repositories.
	bookingRepo := repository.NewMongoBookingRepo()
	providerRepo := repository.NewMongoProviderRepo()
	userRepo := repository.NewMongoUserRepository()
	verificationRepo := repository.NewMongoVerificationRepo()
	recordsRepo := repository.NewMongoRecordRepo()
	bankRepo := repository.NewMongoBankRepo()

	ledger := utils.NewEventLedger(utils.GetCacheClient(), utils.WebhookEventTTL)

	// services.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessions := auth.NewSessionStore(userRepo, providerRepo, utils.GetAuthCacheClient(), sessionTTL, logger.Named("auth"))

	var gateway payment.Gateway
	if g, err := payment.NewStripeGateway(config.AppConfig.StripeSecretKey); err == nil {
		gateway = g
	} else {
		logger.Warn("Payments disabled", zap.Error(err))
	}
	paymentService := payment.NewService(gateway, bookingRepo, ledger, payment.Options{
		WebhookSecret:   config.AppConfig.StripeWebhookSecret,
		DefaultCurrency: config.AppConfig.DefaultCurrency,
		SuccessURL:      config.AppConfig.CheckoutSuccessURL,
		CancelURL:       config.AppConfig.CheckoutCancelURL,
	}, logger.Named("payment"))

	var verifier identity.Verifier
	if v, err := identity.NewStripeVerifier(config.AppConfig.StripeSecretKey, config.AppConfig.IdentityReturnURL); err == nil {
		verifier = v
	} else {
		logger.Warn("Identity verification disabled", zap.Error(err))
	}
	identityService := identity.NewService(verifier, verificationRepo, providerRepo, ledger,
		config.AppConfig.StripeIdentityWebhookSecret, logger.Named("identity"))

	var vendor messaging.Vendor
	if v, err := messaging.NewTwilioVendor(config.AppConfig.TwilioAccountSID, config.AppConfig.TwilioAuthToken); err == nil {
		vendor = v
	} else {
		logger.Warn("Messaging disabled", zap.Error(err))
	}
	markRead, err := messaging.ParseMarkReadMode(config.AppConfig.MessagingMarkReadMode)
	if err != nil {
		logger.Fatal("main: invalid messaging configuration", zap.Error(err))
	}
	bridge := messaging.NewBridge(vendor, markRead, logger.Named("messaging"))

	var linker banking.Linker
	if l, err := banking.NewPlaidLinker(
		config.AppConfig.PlaidClientID, config.AppConfig.PlaidSecret, config.AppConfig.PlaidEnv,
		config.AppConfig.PlaidClientName, config.AppConfig.PlaidCountryCode,
	); err == nil {
		linker = l
	} else {
		logger.Warn("Banking disabled", zap.Error(err))
	}
	bankingService := banking.NewService(linker, bankRepo, config.AppConfig.BankTokenKey, logger.Named("banking"))

	var mailer contact.Mailer
	if config.AppConfig.SMTPHost != "" {
		mailer = contact.NewSMTPMailer(config.AppConfig.SMTPHost, config.AppConfig.SMTPPort,
			config.AppConfig.SMTPUsername, config.AppConfig.SMTPPassword, config.AppConfig.SMTPFrom)
	}
	contactService := contact.NewService(recordsRepo, mailer, config.AppConfig.ContactInbox, logger.Named("contact"))

	var storageService storage.StorageService
	if cld, err := utils.Cloudinary(); err == nil {
		storageService = storage.NewStorageService(cld, logger.Named("storage"))
	} else {
		logger.Warn("Document storage disabled", zap.Error(err))
	}

	bookingService := booking.NewDefaultBookingService(bookingRepo, providerRepo, logger.Named("booking"))

	// Push fan-out: one supervised listener follows every booking and queues a
	// push per party; the worker delivers them over FCM.
	var pushWorker *asynq.Server
	var pushQueue *asynq.Client
	var pushListener *realtime.Listener
	if fcm, err := utils.FirebaseMessaging(rootCtx); err == nil {
		tokens := notification.NewTokenResolver(userRepo, providerRepo)
		notifService := notification.NewDefaultNotificationService(tokens, notification.NewFCMPusher(fcm), logger.Named("push"))
		pushWorker = cron.InitPushWorker(rootCtx, notifService, logger.Named("worker"))

		pushQueue = asynq.NewClient(cron.RedisOpt())
		pushListener = realtime.NewListener(bookingRepo, notification.NewPushEnqueuer(pushQueue, logger.Named("push")), nil, logger.Named("fanout"))
		utils.RegisterHealthCheck("booking_fanout", pushListener.Connected)
		go cron.SuperviseListener(rootCtx, pushListener, models.BookingScope{Role: models.ListenerRoleAny},
			cron.ListenerCheckInterval, logger.Named("fanout"))
	} else {
		logger.Warn("Push notifications disabled", zap.Error(err))
	}

	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	authHandler := handlers.NewAuthHandler(sessions, userRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	identityHandler := handlers.NewIdentityHandler(identityService)
	messagingHandler := handlers.NewMessagingHandler(bridge)
	realtimeHandler := handlers.NewRealtimeHandler(bookingRepo)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	bankingHandler := handlers.NewBankingHandler(bankingService)
	contactHandler := handlers.NewContactHandler(contactService)
	storageHandler := handlers.NewStorageHandler(storageService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		RequireSession:      middleware.SessionAuthMiddleware(sessions, false),
		RequireSessionQuery: middleware.SessionAuthMiddleware(sessions, true),

		// Auth endpoints.
		SignInHandler:         authHandler.SignInHandler,
		SignOutHandler:        authHandler.SignOutHandler,
		MeHandler:             authHandler.MeHandler,
		RegisterDeviceHandler: authHandler.RegisterDeviceHandler,

		// Payment endpoints.
		CreateIntentHandler:          paymentHandler.CreateIntentHandler,
		CreateCheckoutSessionHandler: paymentHandler.CreateCheckoutSessionHandler,
		PaymentWebhookHandler:        paymentHandler.WebhookHandler,

		// Identity endpoints.
		CreateVerificationSessionHandler: identityHandler.CreateSessionHandler,
		IdentityWebhookHandler:           identityHandler.WebhookHandler,

		MessagingHandler:     messagingHandler.DispatchHandler,
		BookingStreamHandler: realtimeHandler.StreamHandler,

		// Booking endpoints.
		RecentBookingsHandler:  bookingHandler.RecentHandler,
		ReassignBookingHandler: bookingHandler.ReassignHandler,

		// Banking endpoints.
		LinkTokenHandler:     bankingHandler.LinkTokenHandler,
		ExchangeTokenHandler: bankingHandler.ExchangeHandler,
		BankLinksHandler:     bankingHandler.LinksHandler,

		ContactHandler: contactHandler.SubmitHandler,

		// Document endpoints.
		UploadDocumentHandler: storageHandler.UploadDocumentHandler,
		DeleteDocumentHandler: storageHandler.DeleteDocumentHandler,

		HealthHandler: handlers.HealthHandler,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	// Cancel first so the supervisor cannot resubscribe after Stop.
	stopBackground()
	if pushListener != nil {
		pushListener.Stop()
	}
	if pushQueue != nil {
		_ = pushQueue.Close()
	}
	if pushWorker != nil {
		pushWorker.Shutdown()
	}
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
