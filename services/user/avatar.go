package user

import (
	"context"
	"fmt"
	"os"
	"time"

	"campusride/models"
	"campusride/services/storage"
	"campusride/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// UploadAvatar crops the uploaded image per the client's framing parameters,
// stores the result and swaps it onto the profile. The previous avatar file is
// removed after the profile update succeeds.
func (s *DefaultUserService) UploadAvatar(ctx context.Context, uid, localFilePath string, crop storage.CropParams) (*models.User, error) {
	usr, err := s.GetUserByID(uid)
	if err != nil {
		return nil, err
	}

	croppedPath, err := storage.CropAvatarFile(localFilePath, crop)
	if err != nil {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, fmt.Sprintf("invalid avatar image: %v", err))
	}
	defer os.Remove(croppedPath)

	publicID, err := s.Storage.UploadFile(ctx, croppedPath, storage.AvatarFolder(uid))
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	url, err := s.Storage.GetDownloadURL(ctx, "image", publicID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve avatar url: %w", err)
	}

	oldPublicID := usr.AvatarPublicID
	if err := s.Repo.UpdateSetDocument(uid, bson.M{
		"avatar_url":       url,
		"avatar_public_id": publicID,
		"updated_at":       time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}

	if oldPublicID != "" && oldPublicID != publicID {
		if err := s.Storage.DeleteFile(ctx, oldPublicID); err != nil {
			utils.GetLogger().Warn("failed to delete previous avatar",
				zap.String("uid", uid), zap.String("publicId", oldPublicID), zap.Error(err))
		}
	}

	usr.AvatarURL = url
	usr.AvatarPublicID = publicID
	return usr, nil
}
