package routes

import (
	"net/http"
	"time"

	"campusride/handlers"
	"campusride/middleware"
	"campusride/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account and profile endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.RegisterUserHandler)
		api.POST("/login", hb.AuthenticateUserHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/me", hb.GetProfileHandler)
		api.GET("/id/:id", hb.GetPublicProfileHandler)
		api.PATCH("/me", hb.UpdateProfileHandler)
		api.PUT("/me/fcm-token", hb.UpdateFCMTokenHandler)
		api.POST("/me/avatar", hb.UploadAvatarHandler)
		api.PUT("/me/push-preference", hb.SetPushPreferenceHandler)
		api.DELETE("/me", hb.DeleteAccountHandler)
		api.DELETE("/revoke", hb.RevokeAuthTokenHandler)
	}
}

// RegisterRideRoutes registers ride lifecycle endpoints.
func RegisterRideRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/rides")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.PublishRideHandler)
		api.GET("/search", hb.SearchRidesHandler)
		api.GET("/mine", hb.ListMyRidesHandler)
		api.GET("/:id", hb.GetRideHandler)
		api.PATCH("/:id", hb.UpdateRideHandler)
		api.DELETE("/:id", hb.CancelRideHandler)
	}
}

// RegisterReservationRoutes registers seat request endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.RequestSeatHandler)
		api.GET("/mine", hb.ListMyReservationsHandler)
		api.GET("/ride/:rideId", hb.ListRideReservationsHandler)
		api.PUT("/:id/accept", hb.AcceptReservationHandler)
		api.PUT("/:id/reject", hb.RejectReservationHandler)
		api.DELETE("/:id", hb.CancelReservationHandler)
	}
}

// RegisterBookingRoutes registers payment and booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/intent", hb.CreateBookingIntentHandler)
		api.POST("/confirm", hb.ConfirmBookingHandler)
		api.GET("/mine", hb.ListMyBookingsHandler)
		api.GET("/ride/:rideId", hb.ListRideBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.DELETE("/:id", hb.CancelBookingHandler)
	}
}

// RegisterWalletRoutes registers balance and top-up endpoints.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wallet")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.GetWalletHandler)
		api.GET("/ledger", hb.ListLedgerHandler)
		api.POST("/topup", hb.CreateTopupHandler)
		api.POST("/topup/confirm", hb.ConfirmTopupHandler)
	}
}

// RegisterReviewRoutes registers ride review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.SubmitReviewHandler)
		api.PUT("/:id/response", hb.RespondToReviewHandler)
		api.GET("/ride/:rideId/mine", hb.MyRideReviewHandler)
		api.GET("/driver/:driverId", hb.ListDriverReviewsHandler)
	}
}

// RegisterNotificationRoutes registers notification inbox endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.ListNotificationsHandler)
		api.GET("/unread-count", hb.UnreadCountHandler)
		api.PUT("/read-all", hb.MarkAllNotificationsReadHandler)
		api.PUT("/:id/read", hb.MarkNotificationReadHandler)
	}
}

// RegisterMessagingRoutes registers chat endpoints plus the websocket feed.
func RegisterMessagingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/messages")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.SendMessageHandler)
		api.GET("/conversations", hb.ListConversationsHandler)
		api.GET("/conversations/:id", hb.ListMessagesHandler)
		api.PUT("/conversations/:id/read", hb.MarkConversationReadHandler)
	}
	r.GET("/ws", middleware.JWTAuthMiddleware(hb.UserRepo), hb.WebsocketHandler)
}

// RegisterKYCRoutes registers document upload and review endpoints.
func RegisterKYCRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/kyc")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/documents", hb.UploadKYCDocumentHandler)
		api.GET("/documents", hb.ListOwnKYCDocumentsHandler)

		admin := api.Group("")
		admin.Use(middleware.AdminOnlyMiddleware(hb.UserRepo))
		admin.GET("/pending", hb.ListPendingKYCHandler)
		admin.GET("/documents/:id/content", hb.FetchKYCDocumentHandler)
		admin.PUT("/documents/:id/review", hb.ReviewKYCDocumentHandler)
	}
}

// RegisterQuoteRoutes registers the business quote endpoints.
func RegisterQuoteRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/quotes")
	{
		api.POST("", hb.SubmitQuoteHandler)

		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware(hb.UserRepo), middleware.AdminOnlyMiddleware(hb.UserRepo))
		admin.GET("", hb.ListQuotesHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())
	r.Use(utils.ErrorHandler())

	RegisterUserRoutes(r, hb)
	RegisterRideRoutes(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterMessagingRoutes(r, hb)
	RegisterKYCRoutes(r, hb)
	RegisterQuoteRoutes(r, hb)
	RegisterHealthRoute(r)
}
