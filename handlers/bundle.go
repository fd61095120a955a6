package handlers

import (
	userRepoPkg "campusride/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Auth endpoints
	RegisterUserHandler     gin.HandlerFunc
	AuthenticateUserHandler gin.HandlerFunc
	RevokeAuthTokenHandler  gin.HandlerFunc

	// User endpoints
	GetProfileHandler        gin.HandlerFunc
	GetPublicProfileHandler  gin.HandlerFunc
	UpdateProfileHandler     gin.HandlerFunc
	UpdateFCMTokenHandler    gin.HandlerFunc
	UploadAvatarHandler      gin.HandlerFunc
	SetPushPreferenceHandler gin.HandlerFunc
	DeleteAccountHandler     gin.HandlerFunc

	// Ride endpoints
	PublishRideHandler gin.HandlerFunc
	GetRideHandler     gin.HandlerFunc
	SearchRidesHandler gin.HandlerFunc
	ListMyRidesHandler gin.HandlerFunc
	UpdateRideHandler  gin.HandlerFunc
	CancelRideHandler  gin.HandlerFunc

	// Reservation endpoints
	RequestSeatHandler          gin.HandlerFunc
	AcceptReservationHandler    gin.HandlerFunc
	RejectReservationHandler    gin.HandlerFunc
	CancelReservationHandler    gin.HandlerFunc
	ListRideReservationsHandler gin.HandlerFunc
	ListMyReservationsHandler   gin.HandlerFunc

	// Booking endpoints
	CreateBookingIntentHandler gin.HandlerFunc
	ConfirmBookingHandler      gin.HandlerFunc
	GetBookingHandler          gin.HandlerFunc
	ListMyBookingsHandler      gin.HandlerFunc
	ListRideBookingsHandler    gin.HandlerFunc
	CancelBookingHandler       gin.HandlerFunc

	// Wallet endpoints
	GetWalletHandler    gin.HandlerFunc
	ListLedgerHandler   gin.HandlerFunc
	CreateTopupHandler  gin.HandlerFunc
	ConfirmTopupHandler gin.HandlerFunc

	// Review endpoints
	SubmitReviewHandler      gin.HandlerFunc
	RespondToReviewHandler   gin.HandlerFunc
	MyRideReviewHandler      gin.HandlerFunc
	ListDriverReviewsHandler gin.HandlerFunc

	// Notification endpoints
	ListNotificationsHandler        gin.HandlerFunc
	MarkNotificationReadHandler     gin.HandlerFunc
	MarkAllNotificationsReadHandler gin.HandlerFunc
	UnreadCountHandler              gin.HandlerFunc

	// Messaging endpoints
	SendMessageHandler          gin.HandlerFunc
	ListConversationsHandler    gin.HandlerFunc
	ListMessagesHandler         gin.HandlerFunc
	MarkConversationReadHandler gin.HandlerFunc
	WebsocketHandler            gin.HandlerFunc

	// KYC endpoints
	UploadKYCDocumentHandler   gin.HandlerFunc
	ListOwnKYCDocumentsHandler gin.HandlerFunc
	ListPendingKYCHandler      gin.HandlerFunc
	FetchKYCDocumentHandler    gin.HandlerFunc
	ReviewKYCDocumentHandler   gin.HandlerFunc

	// Quote endpoints
	SubmitQuoteHandler gin.HandlerFunc
	ListQuotesHandler  gin.HandlerFunc
}
