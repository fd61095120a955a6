package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusride/config"
	"campusride/cron"
	"campusride/database"
	auditRepoPkg "campusride/database/repository/audit"
	bookingRepoPkg "campusride/database/repository/booking"
	kycRepoPkg "campusride/database/repository/kyc"
	messageRepoPkg "campusride/database/repository/message"
	notificationRepoPkg "campusride/database/repository/notification"
	quoteRepoPkg "campusride/database/repository/quote"
	reservationRepoPkg "campusride/database/repository/reservation"
	reviewRepoPkg "campusride/database/repository/review"
	rideRepoPkg "campusride/database/repository/ride"
	userRepoPkg "campusride/database/repository/user"
	walletRepoPkg "campusride/database/repository/wallet"
	"campusride/handlers"
	"campusride/routes"
	"campusride/services/booking"
	"campusride/services/kyc"
	"campusride/services/mailer"
	"campusride/services/messaging"
	"campusride/services/notification"
	"campusride/services/quote"
	"campusride/services/realtime"
	"campusride/services/reservation"
	"campusride/services/review"
	"campusride/services/ride"
	"campusride/services/tasks"
	"campusride/services/user"
	"campusride/services/wallet"
	"campusride/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	storageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	rideRepo := rideRepoPkg.NewMongoRideRepo()
	reservationRepo := reservationRepoPkg.NewMongoReservationRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	walletRepo := walletRepoPkg.NewMongoWalletRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()
	messageRepo := messageRepoPkg.NewMongoMessageRepo()
	kycRepo := kycRepoPkg.NewMongoKYCRepo()
	quoteRepo := quoteRepoPkg.NewMongoQuoteRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	// shared infrastructure.
	hub := realtime.NewHub()
	scheduler := tasks.NewAsynqScheduler()
	httpMailer := mailer.NewHTTPMailer()

	// services.
	notificationService := &notification.DefaultNotificationService{
		Repo:      notificationRepo,
		Users:     userRepo,
		Hub:       hub,
		Scheduler: scheduler,
	}

	userService := &user.DefaultUserService{
		Repo:          userRepo,
		Rides:         rideRepo,
		Reservations:  reservationRepo,
		Bookings:      bookingRepo,
		Reviews:       reviewRepo,
		Wallets:       walletRepo,
		Notifications: notificationRepo,
		Messages:      messageRepo,
		KYC:           kycRepo,
		Audit:         auditRepo,
		Storage:       storageService,
		Mailer:        httpMailer,
		Notifier:      notificationService,
		Scheduler:     scheduler,
	}

	rideService := &ride.DefaultRideService{
		Repo:      rideRepo,
		Users:     userRepo,
		Bookings:  bookingRepo,
		Wallets:   walletRepo,
		Notifier:  notificationService,
		Scheduler: scheduler,
	}

	reservationService := &reservation.DefaultReservationService{
		Repo:      reservationRepo,
		Rides:     rideRepo,
		Notifier:  notificationService,
		Scheduler: scheduler,
	}

	bookingService := &booking.DefaultBookingService{
		Repo:         bookingRepo,
		Rides:        rideRepo,
		Reservations: reservationRepo,
		Users:        userRepo,
		Wallets:      walletRepo,
		Notifier:     notificationService,
		Mailer:       httpMailer,
		Scheduler:    scheduler,
	}

	walletService := &wallet.DefaultWalletService{
		Repo: walletRepo,
	}

	reviewService := &review.DefaultReviewService{
		Repo:     reviewRepo,
		Rides:    rideRepo,
		Bookings: bookingRepo,
		Users:    userRepo,
		Notifier: notificationService,
	}

	messagingService := &messaging.DefaultMessagingService{
		Repo:     messageRepo,
		Rides:    rideRepo,
		Hub:      hub,
		Notifier: notificationService,
	}

	kycService := &kyc.DefaultKYCService{
		Repo:     kycRepo,
		Users:    userRepo,
		Storage:  storageService,
		Notifier: notificationService,
		Fetch:    fetchURL,
	}

	quoteService := &quote.DefaultQuoteService{
		Repo:   quoteRepo,
		Mailer: httpMailer,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		// Auth endpoints.
		RegisterUserHandler:     handlers.RegisterUserHandler(userService),
		AuthenticateUserHandler: handlers.AuthenticateUserHandler(userService),
		RevokeAuthTokenHandler:  handlers.RevokeAuthTokenHandler(userService),

		// User endpoints.
		GetProfileHandler:        handlers.GetProfileHandler(userService),
		GetPublicProfileHandler:  handlers.GetPublicProfileHandler(userService),
		UpdateProfileHandler:     handlers.UpdateProfileHandler(userService),
		UpdateFCMTokenHandler:    handlers.UpdateFCMTokenHandler(userService),
		UploadAvatarHandler:      handlers.UploadAvatarHandler(userService),
		SetPushPreferenceHandler: handlers.SetPushPreferenceHandler(notificationService),
		DeleteAccountHandler:     handlers.DeleteAccountHandler(userService),

		// Ride endpoints.
		PublishRideHandler: handlers.PublishRideHandler(rideService),
		GetRideHandler:     handlers.GetRideHandler(rideService),
		SearchRidesHandler: handlers.SearchRidesHandler(rideService),
		ListMyRidesHandler: handlers.ListMyRidesHandler(rideService),
		UpdateRideHandler:  handlers.UpdateRideHandler(rideService),
		CancelRideHandler:  handlers.CancelRideHandler(rideService),

		// Reservation endpoints.
		RequestSeatHandler:          handlers.RequestSeatHandler(reservationService),
		AcceptReservationHandler:    handlers.AcceptReservationHandler(reservationService),
		RejectReservationHandler:    handlers.RejectReservationHandler(reservationService),
		CancelReservationHandler:    handlers.CancelReservationHandler(reservationService),
		ListRideReservationsHandler: handlers.ListRideReservationsHandler(reservationService),
		ListMyReservationsHandler:   handlers.ListMyReservationsHandler(reservationService),

		// Booking endpoints.
		CreateBookingIntentHandler: handlers.CreateBookingIntentHandler(bookingService),
		ConfirmBookingHandler:      handlers.ConfirmBookingHandler(bookingService),
		GetBookingHandler:          handlers.GetBookingHandler(bookingService),
		ListMyBookingsHandler:      handlers.ListMyBookingsHandler(bookingService),
		ListRideBookingsHandler:    handlers.ListRideBookingsHandler(bookingService),
		CancelBookingHandler:       handlers.CancelBookingHandler(bookingService),

		// Wallet endpoints.
		GetWalletHandler:    handlers.GetWalletHandler(walletService),
		ListLedgerHandler:   handlers.ListLedgerHandler(walletService),
		CreateTopupHandler:  handlers.CreateTopupHandler(walletService),
		ConfirmTopupHandler: handlers.ConfirmTopupHandler(walletService),

		// Review endpoints.
		SubmitReviewHandler:      handlers.SubmitReviewHandler(reviewService),
		RespondToReviewHandler:   handlers.RespondToReviewHandler(reviewService),
		MyRideReviewHandler:      handlers.MyRideReviewHandler(reviewService),
		ListDriverReviewsHandler: handlers.ListDriverReviewsHandler(reviewService),

		// Notification endpoints.
		ListNotificationsHandler:        handlers.ListNotificationsHandler(notificationService),
		MarkNotificationReadHandler:     handlers.MarkNotificationReadHandler(notificationService),
		MarkAllNotificationsReadHandler: handlers.MarkAllNotificationsReadHandler(notificationService),
		UnreadCountHandler:              handlers.UnreadCountHandler(notificationService),

		// Messaging endpoints.
		SendMessageHandler:          handlers.SendMessageHandler(messagingService),
		ListConversationsHandler:    handlers.ListConversationsHandler(messagingService),
		ListMessagesHandler:         handlers.ListMessagesHandler(messagingService),
		MarkConversationReadHandler: handlers.MarkConversationReadHandler(messagingService),
		WebsocketHandler:            handlers.WebsocketHandler(hub),

		// KYC endpoints.
		UploadKYCDocumentHandler:   handlers.UploadKYCDocumentHandler(kycService),
		ListOwnKYCDocumentsHandler: handlers.ListOwnKYCDocumentsHandler(kycService),
		ListPendingKYCHandler:      handlers.ListPendingKYCHandler(kycService),
		FetchKYCDocumentHandler:    handlers.FetchKYCDocumentHandler(kycService),
		ReviewKYCDocumentHandler:   handlers.ReviewKYCDocumentHandler(kycService),

		// Quote endpoints.
		SubmitQuoteHandler: handlers.SubmitQuoteHandler(quoteService),
		ListQuotesHandler:  handlers.ListQuotesHandler(quoteService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background work: delayed tasks and the ride archiver.
	cron.InitWorker(reservationService, notificationService)
	cron.InitRideArchiver(rideService, 5*time.Minute)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
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
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// fetchURL downloads a signed storage URL (KYC review path).
func fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
