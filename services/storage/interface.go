package storage

import (
	"context"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
)

// StorageService abstracts object storage for avatars, KYC documents and
// vehicle photos. Files live under per-user prefixed folders.
type StorageService interface {
	// UploadFile uploads a file into destFolder and returns its public id.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error)
	// UploadEncrypted envelope-encrypts the file with the admin key before
	// uploading. Used for KYC documents.
	UploadEncrypted(ctx context.Context, localFilePath, destFolder, adminKey string) (string, error)
	// DeleteFile removes a stored file by public id.
	DeleteFile(ctx context.Context, publicID string) error
	// GetDownloadURL returns a public URL for a stored file.
	GetDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error)
	// GetSecureDownloadURL returns a signed, short-lived URL for an
	// authenticated resource (KYC review).
	GetSecureDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error)
}

// StorageServiceImpl is the Cloudinary-backed implementation.
type StorageServiceImpl struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiSecret string
}

// Folder helpers: every user file lives under a per-user prefix.
func AvatarFolder(uid string) string { return "avatars/" + uid }
func KYCFolder(uid string) string    { return "kyc/" + uid }
