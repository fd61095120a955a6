package user

import (
	"context"

	"campusride/models"
	"campusride/services/storage"
)

// RegistrationRequest carries the fields needed to open an account.
type RegistrationRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Campus   string `json:"campus" binding:"required"`
	Phone    string `json:"phone"`
}

// ProfileUpdate is the subset of fields a user may edit.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Campus       *string `json:"campus"`
	Phone        *string `json:"phone"`
	VehicleModel *string `json:"vehicleModel"`
	Plate        *string `json:"plate"`
}

// UserService defines account management operations.
type UserService interface {
	Register(ctx context.Context, req RegistrationRequest) (*models.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	GetUserByID(id string) (*models.User, error)
	GetPublicProfile(id string) (*models.PublicProfile, error)
	UpdateProfile(id string, update ProfileUpdate) (*models.User, error)
	UpdateFCMToken(id, token string) error
	// UploadAvatar crops and stores a new profile picture.
	UploadAvatar(ctx context.Context, uid, localFilePath string, crop storage.CropParams) (*models.User, error)
	RevokeAuthToken(ctx context.Context, id string) error
	// DeleteAccount runs the full removal cascade, appending a step-tagged
	// audit entry per step. The first failing step aborts the cascade and its
	// error propagates.
	DeleteAccount(ctx context.Context, uid string) error
}
