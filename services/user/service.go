package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	auditRepo "campusride/database/repository/audit"
	bookingRepo "campusride/database/repository/booking"
	kycRepo "campusride/database/repository/kyc"
	messageRepo "campusride/database/repository/message"
	notificationRepo "campusride/database/repository/notification"
	reservationRepo "campusride/database/repository/reservation"
	reviewRepo "campusride/database/repository/review"
	rideRepo "campusride/database/repository/ride"
	userRepo "campusride/database/repository/user"
	walletRepo "campusride/database/repository/wallet"
	"campusride/models"
	"campusride/services/mailer"
	notification "campusride/services/notification"
	"campusride/services/storage"
	"campusride/services/tasks"
	"campusride/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUserService implements UserService over the Mongo repositories.
type DefaultUserService struct {
	Repo          userRepo.UserRepository
	Rides         rideRepo.RideRepository
	Reservations  reservationRepo.ReservationRepository
	Bookings      bookingRepo.BookingRepository
	Reviews       reviewRepo.ReviewRepository
	Wallets       walletRepo.WalletRepository
	Notifications notificationRepo.NotificationRepository
	Messages      messageRepo.MessageRepository
	KYC           kycRepo.KYCRepository
	Audit         auditRepo.AuditRepository
	Storage       storage.StorageService
	Mailer        mailer.Mailer
	Notifier      notification.NotificationService
	Scheduler     tasks.Scheduler
}

func (s *DefaultUserService) Register(ctx context.Context, req RegistrationRequest) (*models.User, string, error) {
	logger := utils.GetLogger().Sugar()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, "", utils.NewServiceError(utils.CodeInvalidRequest, "an account with this email already exists")
	}
	if !utils.IsKnownCampus(req.Campus) {
		return nil, "", utils.NewServiceError(utils.CodeInvalidRequest, "unknown campus")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	usr := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         strings.TrimSpace(req.Name),
		Campus:       req.Campus,
		Phone:        req.Phone,
		Preferences:  models.NotificationPreferences{PushEnabled: true, EmailEnabled: true},
		KYCStatus:    models.KYCNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	usr.AvatarURL = utils.AvatarURL("", usr.Name)

	if err := s.Repo.Create(usr); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, usr)
	if err != nil {
		return nil, "", err
	}
	logger.Infow("user registered", "uid", usr.ID, "campus", usr.Campus)
	return usr, token, nil
}

func (s *DefaultUserService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	usr, err := s.Repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch user: %w", err)
	}
	if usr == nil {
		return nil, "", utils.NewServiceError(utils.CodeAuthRequired, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, "", utils.NewServiceError(utils.CodeAuthRequired, "invalid credentials")
	}

	token, err := s.issueToken(ctx, usr)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// issueToken mints a JWT, persists its hash, and primes the auth cache.
func (s *DefaultUserService) issueToken(ctx context.Context, usr *models.User) (string, error) {
	role := "user"
	if usr.IsAdmin {
		role = "admin"
	}
	token, err := utils.GenerateToken(usr.ID, usr.Email, role, 30*24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	hash := utils.HashToken(token)
	if err := s.Repo.UpdateSetDocument(usr.ID, bson.M{"token_hash": hash}); err != nil {
		return "", fmt.Errorf("failed to store token hash: %w", err)
	}
	usr.TokenHash = hash

	cache := utils.GetAuthCacheClient()
	if cache != nil {
		if err := cache.Set(ctx, utils.AuthCachePrefix+usr.ID, hash, utils.AuthCacheTTL).Err(); err != nil {
			utils.GetLogger().Warn("failed to prime auth cache", zap.Error(err))
		}
	}
	return token, nil
}

func (s *DefaultUserService) GetUserByID(id string) (*models.User, error) {
	usr, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if usr == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "user not found")
	}
	return usr, nil
}

func (s *DefaultUserService) GetPublicProfile(id string) (*models.PublicProfile, error) {
	usr, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	profile := usr.PublicProfile()
	return &profile, nil
}

func (s *DefaultUserService) UpdateProfile(id string, update ProfileUpdate) (*models.User, error) {
	fields := bson.M{}
	if update.Name != nil {
		fields["name"] = strings.TrimSpace(*update.Name)
	}
	if update.Campus != nil {
		if !utils.IsKnownCampus(*update.Campus) {
			return nil, utils.NewServiceError(utils.CodeInvalidRequest, "unknown campus")
		}
		fields["campus"] = *update.Campus
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.VehicleModel != nil {
		fields["vehicle_model"] = *update.VehicleModel
	}
	if update.Plate != nil {
		fields["plate"] = strings.ToUpper(strings.TrimSpace(*update.Plate))
	}
	if len(fields) == 0 {
		return s.GetUserByID(id)
	}
	fields["updated_at"] = time.Now()
	if err := s.Repo.UpdateSetDocument(id, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetUserByID(id)
}

func (s *DefaultUserService) UpdateFCMToken(id, token string) error {
	if err := s.Repo.UpdateSetDocument(id, bson.M{"fcm_token": token}); err != nil {
		return fmt.Errorf("failed to update fcm token: %w", err)
	}
	return nil
}

func (s *DefaultUserService) RevokeAuthToken(ctx context.Context, id string) error {
	if err := s.Repo.UpdateSetDocument(id, bson.M{"token_hash": ""}); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	cache := utils.GetAuthCacheClient()
	if cache != nil {
		if err := cache.Del(ctx, utils.AuthCachePrefix+id).Err(); err != nil {
			utils.GetLogger().Warn("failed to evict auth cache", zap.Error(err))
		}
	}
	return nil
}
