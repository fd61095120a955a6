package models

import (
	"time"

	"campusride/utils"
)

// Account-level KYC states. Derived from the user's document reviews.
const (
	KYCNone     = "none"
	KYCPending  = "pending"
	KYCApproved = "approved"
	KYCRejected = "rejected"
)

// NotificationPreferences controls which channels a user receives.
type NotificationPreferences struct {
	PushEnabled  bool `bson:"push_enabled" json:"pushEnabled"`
	EmailEnabled bool `bson:"email_enabled" json:"emailEnabled"`
}

// User represents a CampusRide account, passenger by default and driver once
// the required KYC documents are approved.
type User struct {
	ID           string `bson:"id" json:"id"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password_hash" json:"-"`
	Name         string `bson:"name" json:"name"`
	Campus       string `bson:"campus" json:"campus"`
	Phone        string `bson:"phone" json:"phone,omitempty"`

	AvatarURL      string `bson:"avatar_url" json:"avatarUrl,omitempty"`
	AvatarPublicID string `bson:"avatar_public_id" json:"-"`

	// Driver-side fields.
	IsDriver     bool    `bson:"is_driver" json:"isDriver"`
	KYCStatus    string  `bson:"kyc_status" json:"kycStatus"` // "none", "pending", "approved", "rejected"
	VehicleModel string  `bson:"vehicle_model" json:"vehicleModel,omitempty"`
	Plate        string  `bson:"plate" json:"-"`
	RatingAvg    float64 `bson:"rating_avg" json:"ratingAvg"`
	RatingCount  int     `bson:"rating_count" json:"ratingCount"`

	FCMToken    string                  `bson:"fcm_token" json:"-"`
	Preferences NotificationPreferences `bson:"preferences" json:"preferences"`
	TokenHash   string                  `bson:"token_hash" json:"-"`

	IsAdmin   bool      `bson:"is_admin" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// PublicProfile is the reduced view other users see.
type PublicProfile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Campus      string  `json:"campus"`
	AvatarURL   string  `json:"avatarUrl"`
	IsDriver    bool    `json:"isDriver"`
	MaskedPlate string  `json:"maskedPlate,omitempty"`
	RatingAvg   float64 `json:"ratingAvg"`
	RatingCount int     `json:"ratingCount"`
}

// PublicProfile returns the reduced view of a user exposed to other users.
// The plate is masked; contact details stay private.
func (u *User) PublicProfile() PublicProfile {
	p := PublicProfile{
		ID:          u.ID,
		Name:        u.Name,
		Campus:      u.Campus,
		AvatarURL:   u.AvatarURL,
		IsDriver:    u.IsDriver,
		RatingAvg:   u.RatingAvg,
		RatingCount: u.RatingCount,
	}
	if u.IsDriver && u.Plate != "" {
		p.MaskedPlate = utils.MaskPlate(u.Plate)
	}
	return p
}
